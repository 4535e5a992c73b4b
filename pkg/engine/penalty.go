package engine

import "math/bits"

// mulBps multiplies amount by a parts-per-million fraction with a
// 128-bit intermediate and truncating division. With bps <= MaxBps the
// quotient always fits in 64 bits, so the division cannot trap.
func mulBps(amount uint64, bps uint32) uint64 {
	hi, lo := bits.Mul64(amount, uint64(bps))
	q, _ := bits.Div64(hi, lo, MaxBps)
	return q
}

// mulDiv returns a*b/den with a 128-bit intermediate, truncating toward
// zero. Callers must guarantee b < den or a*b/den < 2^64.
func mulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, den)
	return q
}

// checkedAdd returns a+b or ErrArithmeticOverflow.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// checkedSub returns a-b or ErrArithmeticOverflow on underflow.
func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

// ComputeDepositPenalty splits a late executor's security deposit into
// the slice forfeited to whoever executes (penalty) and the slice
// rebated to the user (userReward). Within the grace period both are
// zero; past it the forfeited base ramps linearly from
// InitialPenaltyBps of the deposit up to the full deposit over
// PenaltyPeriod slots. All divisions truncate, so independent
// implementations agree bit for bit.
//
// currentSlot is caller-supplied, never read from a wall clock.
// additionalGrace extends the grace window (zero for the common case).
func ComputeDepositPenalty(p AuctionParameters, securityDeposit, startSlot, currentSlot, additionalGrace uint64) (penalty, userReward uint64) {
	auctionEnd := startSlot + p.Duration
	var elapsed uint64
	if currentSlot > auctionEnd {
		elapsed = currentSlot - auctionEnd
	}

	grace := p.GracePeriod + additionalGrace
	if elapsed <= grace {
		return 0, 0
	}
	penaltyElapsed := elapsed - grace

	var base uint64
	if penaltyElapsed >= p.PenaltyPeriod || p.InitialPenaltyBps == MaxBps {
		base = securityDeposit
	} else {
		basePenalty := mulBps(securityDeposit, p.InitialPenaltyBps)
		scaled := mulDiv(securityDeposit-basePenalty, penaltyElapsed, p.PenaltyPeriod)
		base = basePenalty + scaled
	}

	userReward = mulBps(base, p.UserPenaltyRewardBps)
	return base - userReward, userReward
}
