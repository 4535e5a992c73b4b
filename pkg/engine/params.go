package engine

import "fmt"

// MaxBps is the fixed-point denominator for basis-point parameters:
// 1_000_000 = 100%.
const MaxBps = 1_000_000

// AuctionParameters is the versioned auction policy. Durations are in
// slots, the chain's native time unit; fee and penalty fractions are in
// parts-per-million.
type AuctionParameters struct {
	// Duration is the bidding window measured from the initial offer.
	Duration uint64
	// GracePeriod is how long after the bidding window the winner may
	// execute without forfeiting any deposit.
	GracePeriod uint64
	// PenaltyPeriod is the window over which the forfeited fraction
	// ramps linearly from InitialPenaltyBps up to the full deposit.
	PenaltyPeriod uint64

	UserPenaltyRewardBps uint32
	InitialPenaltyBps    uint32
	MinOfferDeltaBps     uint32

	// Security deposit = base + amount_in * bps / MaxBps.
	SecurityDepositBase uint64
	SecurityDepositBps  uint32
}

// Validate rejects out-of-range policy values.
func (p AuctionParameters) Validate() error {
	if p.Duration == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidParameters)
	}
	if p.GracePeriod == 0 {
		return fmt.Errorf("%w: grace period must be positive", ErrInvalidParameters)
	}
	if p.UserPenaltyRewardBps > MaxBps {
		return fmt.Errorf("%w: user penalty reward %d bps exceeds %d", ErrInvalidParameters, p.UserPenaltyRewardBps, MaxBps)
	}
	if p.InitialPenaltyBps > MaxBps {
		return fmt.Errorf("%w: initial penalty %d bps exceeds %d", ErrInvalidParameters, p.InitialPenaltyBps, MaxBps)
	}
	if p.MinOfferDeltaBps > MaxBps {
		return fmt.Errorf("%w: min offer delta %d bps exceeds %d", ErrInvalidParameters, p.MinOfferDeltaBps, MaxBps)
	}
	if p.SecurityDepositBps > MaxBps {
		return fmt.Errorf("%w: security deposit %d bps exceeds %d", ErrInvalidParameters, p.SecurityDepositBps, MaxBps)
	}
	return nil
}

// SecurityDeposit computes the collateral a solver must lock alongside
// the fronted amount.
func (p AuctionParameters) SecurityDeposit(amountIn uint64) uint64 {
	return p.SecurityDepositBase + mulBps(amountIn, p.SecurityDepositBps)
}
