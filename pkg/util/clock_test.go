package util

import (
	"testing"
	"time"
)

func TestManualClockAdvance(t *testing.T) {
	c := &ManualClock{}
	c.Advance(5)
	c.Advance(2)
	if got := c.Now().Slot; got != 7 {
		t.Errorf("slot = %d, want 7", got)
	}
}

func TestSlotClockDerivesSlots(t *testing.T) {
	c := &SlotClock{Genesis: time.Now().Add(-1 * time.Second), SlotTime: 100 * time.Millisecond}
	now := c.Now()
	if now.Slot < 10 {
		t.Errorf("slot = %d, want at least 10 after one second", now.Slot)
	}
	if now.Unix == 0 {
		t.Error("unix time not populated")
	}
}
