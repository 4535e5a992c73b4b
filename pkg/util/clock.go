package util

import (
	"time"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
)

// SlotSource supplies the engine's caller-provided clock snapshots. The
// engine itself never reads a wall clock; the daemon derives slots from
// elapsed wall time, tests fabricate snapshots directly.
type SlotSource interface {
	Now() engine.Clock
}

// SlotClock derives a monotonically increasing slot number from wall
// time at a fixed slot duration.
type SlotClock struct {
	Genesis  time.Time
	SlotTime time.Duration
}

// NewSlotClock starts slot 0 at the current instant.
func NewSlotClock(slotTime time.Duration) *SlotClock {
	return &SlotClock{Genesis: time.Now(), SlotTime: slotTime}
}

func (c *SlotClock) Now() engine.Clock {
	now := time.Now()
	return engine.Clock{
		Slot: uint64(now.Sub(c.Genesis) / c.SlotTime),
		Unix: now.Unix(),
	}
}

// ManualClock is a SlotSource tests advance by hand.
type ManualClock struct {
	Clock engine.Clock
}

func (c *ManualClock) Now() engine.Clock { return c.Clock }

// Advance moves the clock forward by n slots.
func (c *ManualClock) Advance(n uint64) { c.Clock.Slot += n }
