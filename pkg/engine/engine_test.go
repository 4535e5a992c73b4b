package engine_test

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/ledger"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/storage"
)

const (
	localChain  uint16 = 1
	sourceChain uint16 = 2
	remoteChain uint16 = 23

	amountIn   = uint64(69_000_000)
	maxFee     = uint64(500_000)
	initFee    = uint64(10_000)
	deadline   = uint32(1_700_000_000)
	fastSeq    = uint64(7)
	fastUnix   = int64(1_690_000_000)
	startSlot  = uint64(100)
	solverFund = uint64(200_000_000)
)

func testAddr(last byte) messages.UniversalAddress {
	var a messages.UniversalAddress
	a[31] = last
	return a
}

var (
	emitterAddr  = testAddr(0xE0)
	remoteAddr   = testAddr(0xE1)
	localAddr    = testAddr(0xE2)
	custodyAddr  = testAddr(0xCC)
	feeRecipient = testAddr(0xFE)
	redeemerAddr = testAddr(0xD1)
	senderAddr   = testAddr(0xA1)
	solverA      = testAddr(0x0A)
	solverB      = testAddr(0x0B)
	solverC      = testAddr(0x0C)
)

type fixture struct {
	engine *engine.Engine
	store  *storage.MemStore
	ledger *ledger.TokenLedger
}

func testParams() engine.AuctionParameters {
	return engine.AuctionParameters{
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

func newFixture(t *testing.T) *fixture {
	t.Helper()
	routes := engine.NewEndpointRegistry()
	for _, ep := range []engine.Endpoint{
		{Chain: sourceChain, Address: emitterAddr, Enabled: true},
		{Chain: remoteChain, Address: remoteAddr, Enabled: true},
		{Chain: localChain, Address: localAddr, Enabled: true},
	} {
		if err := routes.Register(ep); err != nil {
			t.Fatalf("register endpoint: %v", err)
		}
	}

	store := storage.NewMemStore()
	lg := ledger.NewTokenLedger()
	for _, solver := range []messages.UniversalAddress{solverA, solverB, solverC} {
		lg.Credit(solver, solverFund)
	}

	eng, err := engine.New(engine.Options{
		Params:       testParams(),
		ConfigID:     1,
		LocalChain:   localChain,
		Custody:      custodyAddr,
		FeeRecipient: feeRecipient,
		Store:        store,
		Ledger:       lg,
		Routes:       routes,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return &fixture{engine: eng, store: store, ledger: lg}
}

func testOrder(target uint16) messages.FastMarketOrder {
	return messages.FastMarketOrder{
		AmountIn:        amountIn,
		MinAmountOut:    amountIn - maxFee,
		TargetChain:     target,
		Redeemer:        redeemerAddr,
		Sender:          senderAddr,
		RefundAddress:   senderAddr,
		MaxFee:          maxFee,
		InitAuctionFee:  initFee,
		Deadline:        deadline,
		RedeemerMessage: []byte("swap"),
	}
}

func fastMessage(order messages.FastMarketOrder) []byte {
	return messages.RawMessage{
		Timestamp:        1_690_000_000,
		Nonce:            1,
		EmitterChain:     sourceChain,
		EmitterAddress:   emitterAddr,
		Sequence:         fastSeq,
		ConsistencyLevel: 1,
		Payload:          order.Encode(),
	}.Encode()
}

func slowMessage(amount, baseFee, seq uint64) []byte {
	deposit := messages.Deposit{
		TokenAddress:  testAddr(0x01),
		Amount:        new(big.Int).SetUint64(amount),
		SourceDomain:  3,
		BurnSource:    senderAddr,
		MintRecipient: custodyAddr,
		Payload:       messages.EncodeDepositSlowOrderResponse(messages.SlowOrderResponse{BaseFee: baseFee}),
	}
	return messages.RawMessage{
		Timestamp:        1_690_000_600,
		Nonce:            1,
		EmitterChain:     sourceChain,
		EmitterAddress:   emitterAddr,
		Sequence:         seq,
		ConsistencyLevel: 32,
		Payload:          deposit.Encode(),
	}.Encode()
}

func digestOf(t *testing.T, rawMsg []byte) messages.Digest {
	t.Helper()
	raw, err := messages.ParseRawMessage(rawMsg)
	if err != nil {
		t.Fatalf("parse raw: %v", err)
	}
	return raw.ComputeDigest()
}

func clockAt(slot uint64) engine.Clock {
	return engine.Clock{Slot: slot, Unix: fastUnix}
}

func TestPlaceInitialOffer(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	auction, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA)
	if err != nil {
		t.Fatalf("place initial offer: %v", err)
	}
	if auction.Status != engine.AuctionActive {
		t.Errorf("status = %s, want active", auction.Status)
	}
	if auction.OfferPrice != maxFee || auction.StartSlot != startSlot || auction.Sequence != fastSeq {
		t.Errorf("auction fields: %+v", auction)
	}
	if auction.BestOfferToken != solverA || auction.InitialOfferToken != solverA {
		t.Error("offer tokens not recorded")
	}

	wantDeposit := testParams().SecurityDeposit(amountIn)
	if auction.SecurityDeposit != wantDeposit {
		t.Errorf("security deposit = %d, want %d", auction.SecurityDeposit, wantDeposit)
	}
	escrow := amountIn + wantDeposit
	if got := fx.ledger.Balance(custodyAddr); got != escrow {
		t.Errorf("custody = %d, want %d", got, escrow)
	}
	if got := fx.ledger.Balance(solverA); got != solverFund-escrow {
		t.Errorf("solver A = %d, want %d", got, solverFund-escrow)
	}
}

func TestPlaceInitialOfferDuplicate(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("first offer: %v", err)
	}
	_, err := fx.engine.PlaceInitialOffer(clockAt(startSlot+1), raw, nil, maxFee-100_000, solverB)
	if !errors.Is(err, engine.ErrDuplicateAuction) {
		t.Fatalf("replay: got %v, want ErrDuplicateAuction", err)
	}
	// The loser's funds never moved.
	if got := fx.ledger.Balance(solverB); got != solverFund {
		t.Errorf("solver B = %d, want untouched %d", got, solverFund)
	}
}

func TestPlaceInitialOfferConcurrentRace(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	bidders := make([]messages.UniversalAddress, 8)
	for i := range bidders {
		bidders[i] = testAddr(byte(0x40 + i))
		fx.ledger.Credit(bidders[i], solverFund)
	}

	var wg sync.WaitGroup
	results := make([]error, len(bidders))
	for i, bidder := range bidders {
		wg.Add(1)
		go func(i int, bidder messages.UniversalAddress) {
			defer wg.Done()
			_, results[i] = fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, bidder)
		}(i, bidder)
	}
	wg.Wait()

	var winners int
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, engine.ErrDuplicateAuction):
			// Loser's escrow must have been left (or put back) intact.
			if got := fx.ledger.Balance(bidders[i]); got != solverFund {
				t.Errorf("loser %d balance = %d, want %d", i, got, solverFund)
			}
		default:
			t.Errorf("bidder %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestPlaceInitialOfferDeadlineExceeded(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	late := engine.Clock{Slot: startSlot, Unix: int64(deadline) + 1}
	_, err := fx.engine.PlaceInitialOffer(late, raw, nil, maxFee, solverA)
	if !errors.Is(err, engine.ErrOrderDeadlineExceeded) {
		t.Fatalf("got %v, want ErrOrderDeadlineExceeded", err)
	}
}

func TestPlaceInitialOfferPriceTooHigh(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	_, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee+1, solverA)
	if !errors.Is(err, engine.ErrOfferPriceTooHigh) {
		t.Fatalf("got %v, want ErrOfferPriceTooHigh", err)
	}
}

func TestPlaceInitialOfferFeesExceedAmountIn(t *testing.T) {
	fx := newFixture(t)
	order := testOrder(remoteChain)
	// Fees leave nothing to fill: every future execution attempt would
	// underflow, so the escrow must never be taken.
	order.AmountIn = order.MaxFee + order.InitAuctionFee - 1
	order.MinAmountOut = 0
	raw := fastMessage(order)

	_, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA)
	if !errors.Is(err, engine.ErrInvalidParameters) {
		t.Fatalf("got %v, want ErrInvalidParameters", err)
	}
	if got := fx.ledger.Balance(solverA); got != solverFund {
		t.Errorf("solver A = %d, want untouched %d", got, solverFund)
	}
	if _, err := fx.store.GetAuction(digestOf(t, raw)); !errors.Is(err, engine.ErrAuctionNotFound) {
		t.Errorf("auction created for unexecutable order: %v", err)
	}
}

func TestPlaceInitialOfferUntrustedEmitter(t *testing.T) {
	fx := newFixture(t)
	order := testOrder(remoteChain)
	raw := messages.RawMessage{
		EmitterChain:   sourceChain,
		EmitterAddress: testAddr(0xBA), // not the registered endpoint
		Sequence:       fastSeq,
		Payload:        order.Encode(),
	}.Encode()

	_, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA)
	if !errors.Is(err, engine.ErrUntrustedEmitter) {
		t.Fatalf("got %v, want ErrUntrustedEmitter", err)
	}
}

func TestPlaceInitialOfferUnregisteredTarget(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(99))

	_, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA)
	if !errors.Is(err, engine.ErrRouteNotRegistered) {
		t.Fatalf("got %v, want ErrRouteNotRegistered", err)
	}
}

func TestImproveOffer(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}

	auction, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 400_000, solverB)
	if err != nil {
		t.Fatalf("improve offer: %v", err)
	}
	if auction.OfferPrice != 400_000 || auction.BestOfferToken != solverB {
		t.Errorf("auction after improve: %+v", auction)
	}
	if auction.InitialOfferToken != solverA {
		t.Error("initial offer token must not change")
	}

	// Escrow swapped hands: A made whole, B locked in.
	escrow := amountIn + testParams().SecurityDeposit(amountIn)
	if got := fx.ledger.Balance(solverA); got != solverFund {
		t.Errorf("outbid solver A = %d, want refunded %d", got, solverFund)
	}
	if got := fx.ledger.Balance(solverB); got != solverFund-escrow {
		t.Errorf("solver B = %d, want %d", got, solverFund-escrow)
	}
	if got := fx.ledger.Balance(custodyAddr); got != escrow {
		t.Errorf("custody = %d, want %d", got, escrow)
	}
}

func TestImproveOfferNotCompetitive(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}

	// min_offer_delta_bps = 5%, so anything above 475_000 is rejected.
	_, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 475_001, solverB)
	if !errors.Is(err, engine.ErrOfferNotCompetitive) {
		t.Fatalf("got %v, want ErrOfferNotCompetitive", err)
	}

	// Rejection leaves the auction and all balances untouched.
	auction, err := fx.engine.GetAuction(digest)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	if auction.OfferPrice != maxFee || auction.BestOfferToken != solverA {
		t.Errorf("auction mutated by rejected offer: %+v", auction)
	}
	if got := fx.ledger.Balance(solverB); got != solverFund {
		t.Errorf("solver B = %d, want untouched", got)
	}

	// Exactly at the floor is accepted.
	if _, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 475_000, solverB); err != nil {
		t.Fatalf("offer at floor: %v", err)
	}
}

func TestImproveOfferSameSolver(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	balBefore := fx.ledger.Balance(solverA)

	auction, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 450_000, solverA)
	if err != nil {
		t.Fatalf("self improve: %v", err)
	}
	if auction.OfferPrice != 450_000 {
		t.Errorf("offer price = %d, want 450000", auction.OfferPrice)
	}
	// Same token keeps its escrow; no transfer happens.
	if got := fx.ledger.Balance(solverA); got != balBefore {
		t.Errorf("solver A = %d, want unchanged %d", got, balBefore)
	}
}

func TestImproveOfferExpired(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	expired := clockAt(startSlot + testParams().Duration + 1)
	_, err := fx.engine.ImproveOffer(expired, digest, 400_000, solverB)
	if !errors.Is(err, engine.ErrAuctionExpired) {
		t.Fatalf("got %v, want ErrAuctionExpired", err)
	}
}

func TestImproveOfferUnknownAuction(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.engine.ImproveOffer(clockAt(startSlot), messages.Digest{0x01}, 400_000, solverB)
	if !errors.Is(err, engine.ErrAuctionNotFound) {
		t.Fatalf("got %v, want ErrAuctionNotFound", err)
	}
}

func TestExecuteFastOrderTooEarly(t *testing.T) {
	fx := newFixture(t)
	raw := fastMessage(testOrder(remoteChain))

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	// The last bidding slot is still too early to execute.
	atEnd := clockAt(startSlot + testParams().Duration)
	_, err := fx.engine.ExecuteFastOrder(atEnd, raw, nil, solverA)
	if !errors.Is(err, engine.ErrAuctionInProgress) {
		t.Fatalf("got %v, want ErrAuctionInProgress", err)
	}
}

func TestExecuteFastOrderWithinGrace(t *testing.T) {
	fx := newFixture(t)
	p := testParams()
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	if _, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 400_000, solverB); err != nil {
		t.Fatalf("improve offer: %v", err)
	}

	// One slot past the bidding window, well inside the grace period,
	// executed by the winner.
	res, err := fx.engine.ExecuteFastOrder(clockAt(startSlot+p.Duration+1), raw, nil, solverB)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Penalty != 0 || res.UserReward != 0 {
		t.Errorf("penalty=%d reward=%d, want 0,0 inside grace", res.Penalty, res.UserReward)
	}
	wantFill := amountIn - 400_000 - initFee
	if res.FillAmount != wantFill {
		t.Errorf("fill amount = %d, want %d", res.FillAmount, wantFill)
	}
	if res.Auction.Status != engine.AuctionCompleted {
		t.Errorf("status = %s, want completed", res.Auction.Status)
	}

	// Remote target: the fill amount left custody via burn.
	if got := fx.ledger.Burned(); got != wantFill {
		t.Errorf("burned = %d, want %d", got, wantFill)
	}
	if got := fx.ledger.Balance(custodyAddr); got != 0 {
		t.Errorf("custody = %d, want drained", got)
	}
	// Winner recoups escrow plus offer; opener collects the init fee.
	deposit := p.SecurityDeposit(amountIn)
	if got := fx.ledger.Balance(solverB); got != solverFund-(amountIn+deposit)+400_000+deposit {
		t.Errorf("winner balance = %d", got)
	}
	if got := fx.ledger.Balance(solverA); got != solverFund+initFee {
		t.Errorf("opener balance = %d, want +init fee", got)
	}

	// The outbound message decodes as a deposit fill payload.
	if res.FillMessage[0] != messages.DepositPayloadFill {
		t.Errorf("fill message subtype = %d, want deposit fill", res.FillMessage[0])
	}

	// Execution is one-shot.
	_, err = fx.engine.ExecuteFastOrder(clockAt(startSlot+p.Duration+2), raw, nil, solverC)
	if !errors.Is(err, engine.ErrAuctionNotActive) {
		t.Fatalf("re-execute: got %v, want ErrAuctionNotActive", err)
	}
}

func TestExecuteFastOrderPenalized(t *testing.T) {
	fx := newFixture(t)
	p := testParams()
	raw := fastMessage(testOrder(remoteChain))
	digest := digestOf(t, raw)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	if _, err := fx.engine.ImproveOffer(clockAt(startSlot+1), digest, 400_000, solverB); err != nil {
		t.Fatalf("improve offer: %v", err)
	}

	// Two slots past grace, executed by a third party.
	execSlot := startSlot + p.Duration + p.GracePeriod + 2
	res, err := fx.engine.ExecuteFastOrder(clockAt(execSlot), raw, nil, solverC)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	deposit := p.SecurityDeposit(amountIn)
	wantPenalty, wantReward := engine.ComputeDepositPenalty(p, deposit, startSlot, execSlot, 0)
	if res.Penalty != wantPenalty || res.UserReward != wantReward {
		t.Errorf("penalty=%d reward=%d, want %d,%d", res.Penalty, res.UserReward, wantPenalty, wantReward)
	}
	if res.Penalty == 0 {
		t.Fatal("expected nonzero penalty past grace")
	}

	// The user's rebate rides the fill.
	wantFill := amountIn - 400_000 - initFee + wantReward
	if res.FillAmount != wantFill {
		t.Errorf("fill amount = %d, want %d", res.FillAmount, wantFill)
	}
	// The executor pockets the forfeited slice.
	if got := fx.ledger.Balance(solverC); got != solverFund+wantPenalty {
		t.Errorf("executor = %d, want +penalty %d", got, wantPenalty)
	}
	// The late winner eats the penalty and the reward.
	if got := fx.ledger.Balance(solverB); got != solverFund-(amountIn+deposit)+400_000+deposit-wantPenalty-wantReward {
		t.Errorf("winner balance = %d", got)
	}
	// Custody fully disbursed.
	if got := fx.ledger.Balance(custodyAddr); got != 0 {
		t.Errorf("custody = %d, want drained", got)
	}
	if !res.Auction.WasPenalized() {
		t.Error("auction should record the penalty")
	}
}

func TestExecuteFastOrderLocalDelivery(t *testing.T) {
	fx := newFixture(t)
	p := testParams()
	raw := fastMessage(testOrder(localChain))

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), raw, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	res, err := fx.engine.ExecuteFastOrder(clockAt(startSlot+p.Duration+1), raw, nil, solverA)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	// Local target: the redeemer is credited directly, nothing burned.
	if got := fx.ledger.Balance(redeemerAddr); got != res.FillAmount {
		t.Errorf("redeemer = %d, want %d", got, res.FillAmount)
	}
	if got := fx.ledger.Burned(); got != 0 {
		t.Errorf("burned = %d, want 0", got)
	}
	ff, err := messages.ParseFastFill(res.FillMessage)
	if err != nil {
		t.Fatalf("parse fast fill: %v", err)
	}
	if ff.Amount != res.FillAmount || ff.Fill.Redeemer != redeemerAddr {
		t.Errorf("fast fill mismatch: %+v", ff)
	}
}

func TestPrepareOrderResponse(t *testing.T) {
	fx := newFixture(t)
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	custodyBefore := fx.ledger.Balance(custodyAddr)
	prepared, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if prepared.Digest != digest || prepared.BaseFee != 100_000 || prepared.Amount != amountIn {
		t.Errorf("prepared: %+v", prepared)
	}
	if got := fx.ledger.Balance(custodyAddr); got != custodyBefore+amountIn {
		t.Errorf("custody = %d, want minted +%d", got, amountIn)
	}
	if got := fx.ledger.Minted(); got != amountIn {
		t.Errorf("minted = %d, want %d", got, amountIn)
	}

	// Preparing twice is rejected.
	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); !errors.Is(err, engine.ErrAlreadyPrepared) {
		t.Fatalf("re-prepare: got %v, want ErrAlreadyPrepared", err)
	}
}

func TestPrepareOrderResponseProvenance(t *testing.T) {
	fx := newFixture(t)
	fast := fastMessage(testOrder(remoteChain))

	// Wrong sequence: slow must be fast+1.
	if _, err := fx.engine.PrepareOrderResponse(fast, slowMessage(amountIn, 100_000, fastSeq+2), nil, solverC); !errors.Is(err, engine.ErrProvenanceMismatch) {
		t.Fatalf("wrong sequence: got %v, want ErrProvenanceMismatch", err)
	}
	// Wrong amount: deposit must match the order.
	if _, err := fx.engine.PrepareOrderResponse(fast, slowMessage(amountIn+1, 100_000, fastSeq+1), nil, solverC); !errors.Is(err, engine.ErrProvenanceMismatch) {
		t.Fatalf("wrong amount: got %v, want ErrProvenanceMismatch", err)
	}
	// Base fee exceeding the whole amount is nonsense.
	if _, err := fx.engine.PrepareOrderResponse(fast, slowMessage(amountIn, amountIn+1, fastSeq+1), nil, solverC); !errors.Is(err, engine.ErrProvenanceMismatch) {
		t.Fatalf("oversized base fee: got %v, want ErrProvenanceMismatch", err)
	}

	// Nothing was minted along the way.
	if got := fx.ledger.Minted(); got != 0 {
		t.Errorf("minted = %d, want 0", got)
	}
}

func TestSettleComplete(t *testing.T) {
	fx := newFixture(t)
	p := testParams()
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), fast, nil, 400_000, solverB); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	if _, err := fx.engine.ExecuteFastOrder(clockAt(startSlot+p.Duration+1), fast, nil, solverB); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	winnerBefore := fx.ledger.Balance(solverB)
	auction, err := fx.engine.SettleComplete(digest, solverB)
	if err != nil {
		t.Fatalf("settle complete: %v", err)
	}
	if auction.Status != engine.AuctionSettled || auction.SettledPath != engine.SettledComplete {
		t.Errorf("auction after settle: %+v", auction)
	}
	// Timely winner is reimbursed in full, base fee included.
	if got := fx.ledger.Balance(solverB); got != winnerBefore+amountIn {
		t.Errorf("winner = %d, want +%d", got, amountIn)
	}
	// Over the whole round the winner nets exactly the offer price
	// plus the init fee they kept as opener.
	if got := fx.ledger.Balance(solverB); got != solverFund+400_000+initFee {
		t.Errorf("winner end-to-end = %d, want %d", got, solverFund+400_000+initFee)
	}

	// Terminal: every further settlement attempt is locked out.
	if _, err := fx.engine.SettleComplete(digest, solverB); !errors.Is(err, engine.ErrAlreadySettled) {
		t.Fatalf("re-settle: got %v, want ErrAlreadySettled", err)
	}
	if _, _, err := fx.engine.SettleNone(digest); !errors.Is(err, engine.ErrAlreadySettled) {
		t.Fatalf("settle none after settle: got %v, want ErrAlreadySettled", err)
	}
	if _, err := fx.engine.ExecuteFastOrder(clockAt(startSlot+50), fast, nil, solverC); !errors.Is(err, engine.ErrAlreadySettled) {
		t.Fatalf("execute after settle: got %v, want ErrAlreadySettled", err)
	}
}

func TestSettleCompletePenalized(t *testing.T) {
	fx := newFixture(t)
	p := testParams()
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), fast, nil, 400_000, solverB); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	lateSlot := startSlot + p.Duration + p.GracePeriod + 3
	if _, err := fx.engine.ExecuteFastOrder(clockAt(lateSlot), fast, nil, solverC); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	callerBefore := fx.ledger.Balance(solverC)
	winnerBefore := fx.ledger.Balance(solverB)
	if _, err := fx.engine.SettleComplete(digest, solverC); err != nil {
		t.Fatalf("settle complete: %v", err)
	}
	// Penalized winner forfeits the base fee to the closeout caller.
	if got := fx.ledger.Balance(solverC); got != callerBefore+100_000 {
		t.Errorf("caller = %d, want +base fee", got)
	}
	if got := fx.ledger.Balance(solverB); got != winnerBefore+amountIn-100_000 {
		t.Errorf("winner = %d, want +%d", got, amountIn-100_000)
	}
}

func TestSettleCompleteRequiresExecution(t *testing.T) {
	fx := newFixture(t)
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), fast, nil, 400_000, solverB); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	_, err := fx.engine.SettleComplete(digest, solverB)
	if !errors.Is(err, engine.ErrAuctionNotCompleted) {
		t.Fatalf("got %v, want ErrAuctionNotCompleted", err)
	}
}

func TestSettleNone(t *testing.T) {
	fx := newFixture(t)
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	auction, fillMsg, err := fx.engine.SettleNone(digest)
	if err != nil {
		t.Fatalf("settle none: %v", err)
	}
	if auction.Status != engine.AuctionSettled || auction.SettledPath != engine.SettledNone {
		t.Errorf("auction: %+v", auction)
	}
	// Base fee to the protocol, remainder burned for the remote fill.
	if got := fx.ledger.Balance(feeRecipient); got != 100_000 {
		t.Errorf("fee recipient = %d, want 100000", got)
	}
	if got := fx.ledger.Burned(); got != amountIn-100_000 {
		t.Errorf("burned = %d, want %d", got, amountIn-100_000)
	}
	if fillMsg[0] != messages.DepositPayloadFill {
		t.Errorf("fill message subtype = %d, want deposit fill", fillMsg[0])
	}
	// The fill must carry the order through intact, redeemer message
	// included: the destination contract acts on that payload.
	fill, err := (messages.Deposit{Payload: fillMsg}).Fill()
	if err != nil {
		t.Fatalf("decode fill: %v", err)
	}
	if fill.SourceChain != sourceChain || fill.Redeemer != redeemerAddr || fill.OrderSender != senderAddr {
		t.Errorf("fill routing fields: %+v", fill)
	}
	if string(fill.RedeemerMessage) != "swap" {
		t.Errorf("fill redeemer message = %q, want %q", fill.RedeemerMessage, "swap")
	}

	// The digest is claimed; a late bid can never open an auction.
	_, err = fx.engine.PlaceInitialOffer(clockAt(startSlot), fast, nil, maxFee, solverA)
	if !errors.Is(err, engine.ErrDuplicateAuction) {
		t.Fatalf("late bid: got %v, want ErrDuplicateAuction", err)
	}
	// And settling again fails terminally.
	if _, _, err := fx.engine.SettleNone(digest); !errors.Is(err, engine.ErrAlreadySettled) {
		t.Fatalf("re-settle: got %v, want ErrAlreadySettled", err)
	}
}

func TestSettleNoneRejectsLiveAuction(t *testing.T) {
	fx := newFixture(t)
	fast := fastMessage(testOrder(remoteChain))
	slow := slowMessage(amountIn, 100_000, fastSeq+1)
	digest := digestOf(t, fast)

	if _, err := fx.engine.PlaceInitialOffer(clockAt(startSlot), fast, nil, maxFee, solverA); err != nil {
		t.Fatalf("initial offer: %v", err)
	}
	if _, err := fx.engine.PrepareOrderResponse(fast, slow, nil, solverC); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	_, _, err := fx.engine.SettleNone(digest)
	if !errors.Is(err, engine.ErrDuplicateAuction) {
		t.Fatalf("got %v, want ErrDuplicateAuction", err)
	}
}

func TestSettleNoneWithoutPrepared(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.engine.SettleNone(messages.Digest{0x02})
	if !errors.Is(err, engine.ErrPreparedResponseNotFound) {
		t.Fatalf("got %v, want ErrPreparedResponseNotFound", err)
	}
}
