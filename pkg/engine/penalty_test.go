package engine

import "testing"

func penaltyParams() AuctionParameters {
	return AuctionParameters{
		Duration:             2,
		GracePeriod:          5,
		PenaltyPeriod:        10,
		UserPenaltyRewardBps: 250_000,
		InitialPenaltyBps:    100_000,
		MinOfferDeltaBps:     50_000,
		SecurityDepositBase:  1_000_000,
		SecurityDepositBps:   5_000,
	}
}

func TestPenaltyZeroWithinGrace(t *testing.T) {
	p := penaltyParams()
	const deposit = 10_000_000
	start := uint64(100)

	// Everything up to auction end + grace is penalty-free, including
	// slots before the auction even ends.
	for slot := start; slot <= start+p.Duration+p.GracePeriod; slot++ {
		penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 0)
		if penalty != 0 || reward != 0 {
			t.Fatalf("slot %d: penalty=%d reward=%d, want 0,0", slot, penalty, reward)
		}
	}
}

func TestPenaltyFullAfterPeriod(t *testing.T) {
	p := penaltyParams()
	const deposit = 10_000_000
	start := uint64(100)
	slot := start + p.Duration + p.GracePeriod + p.PenaltyPeriod

	penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 0)
	if penalty != 7_500_000 {
		t.Errorf("penalty = %d, want 7500000", penalty)
	}
	if reward != 2_500_000 {
		t.Errorf("reward = %d, want 2500000", reward)
	}
	if penalty+reward != deposit {
		t.Errorf("penalty+reward = %d, want full deposit %d", penalty+reward, deposit)
	}
}

func TestPenaltyLinearRamp(t *testing.T) {
	p := penaltyParams()
	const deposit = 10_000_000
	start := uint64(0)
	graceEnd := start + p.Duration + p.GracePeriod

	// One slot past grace: base = 10% of deposit + (deposit - 10%)/10.
	penalty, reward := ComputeDepositPenalty(p, deposit, start, graceEnd+1, 0)
	wantBase := uint64(1_000_000 + 900_000)
	wantReward := wantBase / 4
	if reward != wantReward {
		t.Errorf("reward = %d, want %d", reward, wantReward)
	}
	if penalty != wantBase-wantReward {
		t.Errorf("penalty = %d, want %d", penalty, wantBase-wantReward)
	}
}

func TestPenaltyMonotonic(t *testing.T) {
	p := penaltyParams()
	const deposit = 10_000_000
	start := uint64(50)

	var prevTotal uint64
	for slot := start; slot < start+p.Duration+p.GracePeriod+p.PenaltyPeriod+5; slot++ {
		penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 0)
		total := penalty + reward
		if total < prevTotal {
			t.Fatalf("slot %d: total %d decreased from %d", slot, total, prevTotal)
		}
		if total > deposit {
			t.Fatalf("slot %d: total %d exceeds deposit", slot, total)
		}
		prevTotal = total
	}
	if prevTotal != deposit {
		t.Errorf("final total = %d, want full deposit", prevTotal)
	}
}

func TestPenaltyAdditionalGrace(t *testing.T) {
	p := penaltyParams()
	const deposit = 10_000_000
	start := uint64(0)
	slot := start + p.Duration + p.GracePeriod + 3

	withoutGrace, _ := ComputeDepositPenalty(p, deposit, start, slot, 0)
	if withoutGrace == 0 {
		t.Fatal("expected nonzero penalty without extra grace")
	}
	penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 3)
	if penalty != 0 || reward != 0 {
		t.Errorf("extended grace: penalty=%d reward=%d, want 0,0", penalty, reward)
	}
}

func TestPenaltyFullInitialBps(t *testing.T) {
	p := penaltyParams()
	p.InitialPenaltyBps = MaxBps
	const deposit = 7_777_777
	start := uint64(0)
	slot := start + p.Duration + p.GracePeriod + 1

	penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 0)
	if penalty+reward != deposit {
		t.Errorf("full initial bps: total = %d, want %d", penalty+reward, deposit)
	}
}

func TestPenaltyTruncatingDivision(t *testing.T) {
	p := penaltyParams()
	// Deposit chosen so bps math does not divide evenly.
	const deposit = 10_000_001
	start := uint64(0)
	slot := start + p.Duration + p.GracePeriod + p.PenaltyPeriod

	penalty, reward := ComputeDepositPenalty(p, deposit, start, slot, 0)
	// reward = floor(deposit / 4), penalty absorbs the remainder.
	if reward != 2_500_000 {
		t.Errorf("reward = %d, want 2500000 (truncated)", reward)
	}
	if penalty != deposit-2_500_000 {
		t.Errorf("penalty = %d, want %d", penalty, deposit-2_500_000)
	}
}

func TestMulBpsLargeAmount(t *testing.T) {
	// 128-bit intermediate: amount * bps overflows uint64 but the
	// quotient still fits.
	const amount = uint64(1) << 62
	got := mulBps(amount, 500_000)
	if got != amount/2 {
		t.Errorf("mulBps(2^62, 50%%) = %d, want %d", got, amount/2)
	}
}

func TestSecurityDeposit(t *testing.T) {
	p := penaltyParams()
	got := p.SecurityDeposit(69_000_000)
	// base 1_000_000 + 0.5% of amount_in.
	want := uint64(1_000_000 + 345_000)
	if got != want {
		t.Errorf("SecurityDeposit = %d, want %d", got, want)
	}
}
