package engine

import (
	"fmt"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// ExecuteResult reports the fund split of an execution: the fill bound
// for the destination chain plus the penalty accounting.
type ExecuteResult struct {
	Auction    *Auction
	Fill       messages.Fill
	FillAmount uint64
	Penalty    uint64
	UserReward uint64

	// FillMessage is the encoded outbound payload: a tagged FastFill
	// for local delivery, or a deposit fill payload for the bridge to
	// wrap when the target is remote.
	FillMessage []byte
}

// ExecuteFastOrder closes an expired bidding period. Anyone may call
// it; a caller other than the winner collects the late penalty, which
// is what makes timely execution self-enforcing. The winner is paid
// their offer plus whatever survives of the security deposit, the
// initial bidder collects init_auction_fee, and a Fill for
// amount_in - offer_price - init_auction_fee + reward is produced for
// the redeemer.
func (e *Engine) ExecuteFastOrder(clock Clock, rawMsg []byte, signers []messages.UniversalAddress, executorToken messages.UniversalAddress) (*ExecuteResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, digest, order, err := e.verifyOrder(rawMsg, signers)
	if err != nil {
		return nil, err
	}
	auction, err := e.store.GetAuction(digest)
	if err != nil {
		return nil, err
	}
	switch auction.Status {
	case AuctionActive:
	case AuctionSettled:
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, digest.Hex())
	default:
		return nil, fmt.Errorf("%w: status %s", ErrAuctionNotActive, auction.Status)
	}
	if clock.Slot <= auction.EndSlot(e.params) {
		return nil, fmt.Errorf("%w: ends at slot %d, now %d", ErrAuctionInProgress, auction.EndSlot(e.params), clock.Slot)
	}

	penalty, reward := ComputeDepositPenalty(e.params, auction.SecurityDeposit, auction.StartSlot, clock.Slot, 0)

	fillAmount, err := fillAmountFor(auction.AmountIn, auction.OfferPrice, order.InitAuctionFee, reward)
	if err != nil {
		return nil, err
	}

	// Remainder owed to the winner out of custody. Fold the penalty
	// back in when the executor is the winner, and the init fee when
	// the opener is the winner, to avoid zero-sum transfers.
	remainder := auction.OfferPrice + auction.SecurityDeposit - penalty - reward
	executorPayout := penalty
	if executorToken == auction.BestOfferToken {
		remainder += penalty
		executorPayout = 0
	}
	initFee := order.InitAuctionFee
	if auction.InitialOfferToken == auction.BestOfferToken {
		remainder += initFee
		initFee = 0
	}

	if executorPayout > 0 {
		if err := e.ledger.Move(e.custody, executorToken, executorPayout); err != nil {
			return nil, fmt.Errorf("pay executor: %w", err)
		}
	}
	if initFee > 0 {
		if err := e.ledger.Move(e.custody, auction.InitialOfferToken, initFee); err != nil {
			return nil, fmt.Errorf("pay initial bidder: %w", err)
		}
	}
	if err := e.ledger.Move(e.custody, auction.BestOfferToken, remainder); err != nil {
		return nil, fmt.Errorf("pay winning bidder: %w", err)
	}

	fill := messages.Fill{
		SourceChain:     auction.SourceChain,
		OrderSender:     order.Sender,
		Redeemer:        order.Redeemer,
		RedeemerMessage: order.RedeemerMessage,
	}
	var fillMsg []byte
	if order.TargetChain == e.localChain {
		if err := e.ledger.Move(e.custody, order.Redeemer, fillAmount); err != nil {
			return nil, fmt.Errorf("deliver local fill: %w", err)
		}
		fillMsg = messages.FastFill{Fill: fill, Amount: fillAmount}.Encode()
	} else {
		if err := e.ledger.BurnForRemoteMint(e.custody, fillAmount); err != nil {
			return nil, fmt.Errorf("burn for remote fill: %w", err)
		}
		fillMsg = messages.EncodeDepositFill(fill)
	}

	auction.Status = AuctionCompleted
	auction.ExecutedSlot = clock.Slot
	auction.ExecutePenalty = penalty
	auction.ExecuteReward = reward
	if err := e.store.UpdateAuction(auction); err != nil {
		return nil, err
	}

	e.log.Infow("fast_order_executed",
		"digest", digest.Hex(),
		"fill_amount", fillAmount,
		"penalty", penalty,
		"user_reward", reward,
		"executed_slot", clock.Slot,
	)
	e.sink.OrderSettled(OrderSettledEvent{
		Digest:         digest,
		Status:         auction.Status.String(),
		Path:           "execute",
		FillAmount:     fillAmount,
		Penalty:        penalty,
		UserReward:     reward,
		BestOfferToken: auction.BestOfferToken,
		Executor:       executorToken,
	})
	return &ExecuteResult{
		Auction:     auction,
		Fill:        fill,
		FillAmount:  fillAmount,
		Penalty:     penalty,
		UserReward:  reward,
		FillMessage: fillMsg,
	}, nil
}

func fillAmountFor(amountIn, offerPrice, initAuctionFee, reward uint64) (uint64, error) {
	out, err := checkedSub(amountIn, offerPrice)
	if err == nil {
		out, err = checkedSub(out, initAuctionFee)
	}
	if err == nil {
		out, err = checkedAdd(out, reward)
	}
	if err != nil {
		return 0, fmt.Errorf("fill amount: %w", err)
	}
	return out, nil
}

// PrepareOrderResponse reconciles the slow confirmation against the
// fast order and mints the finalized funds into custody, producing the
// transient record that either settlement path consumes. The slow
// message must come from the same emitter with sequence fast+1.
func (e *Engine) PrepareOrderResponse(fastMsg, slowMsg []byte, signers []messages.UniversalAddress, preparedBy messages.UniversalAddress) (*PreparedOrderResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fastRaw, digest, order, err := e.verifyOrder(fastMsg, signers)
	if err != nil {
		return nil, err
	}
	slowRaw, err := messages.ParseRawMessage(slowMsg)
	if err != nil {
		return nil, err
	}
	if !e.verifier.Verify(slowRaw.ComputeDigest(), signers) {
		return nil, fmt.Errorf("%w: slow message", ErrAttestationRejected)
	}

	if slowRaw.EmitterChain != fastRaw.EmitterChain {
		return nil, fmt.Errorf("%w: emitter chain %d vs %d", ErrProvenanceMismatch, slowRaw.EmitterChain, fastRaw.EmitterChain)
	}
	if slowRaw.EmitterAddress != fastRaw.EmitterAddress {
		return nil, fmt.Errorf("%w: emitter address %s vs %s", ErrProvenanceMismatch, slowRaw.EmitterAddress.Hex(), fastRaw.EmitterAddress.Hex())
	}
	if slowRaw.Sequence != fastRaw.Sequence+1 {
		return nil, fmt.Errorf("%w: slow sequence %d, want %d", ErrProvenanceMismatch, slowRaw.Sequence, fastRaw.Sequence+1)
	}
	if slowRaw.Timestamp < fastRaw.Timestamp {
		return nil, fmt.Errorf("%w: slow timestamp %d precedes fast %d", ErrProvenanceMismatch, slowRaw.Timestamp, fastRaw.Timestamp)
	}

	deposit, err := messages.ParseDeposit(slowRaw.Payload)
	if err != nil {
		return nil, err
	}
	response, err := deposit.SlowOrderResponse()
	if err != nil {
		return nil, err
	}
	if !deposit.Amount.IsUint64() || deposit.Amount.Uint64() != order.AmountIn {
		return nil, fmt.Errorf("%w: deposit amount %s, order amount %d", ErrProvenanceMismatch, deposit.Amount, order.AmountIn)
	}
	if response.BaseFee > order.AmountIn {
		return nil, fmt.Errorf("%w: base fee %d exceeds amount %d", ErrProvenanceMismatch, response.BaseFee, order.AmountIn)
	}

	if auction, err := e.store.GetAuction(digest); err == nil && auction.Status == AuctionSettled {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, digest.Hex())
	}

	prepared := &PreparedOrderResponse{
		Digest:          digest,
		SourceChain:     fastRaw.EmitterChain,
		TargetChain:     order.TargetChain,
		BaseFee:         response.BaseFee,
		Amount:          order.AmountIn,
		Redeemer:        order.Redeemer,
		Sender:          order.Sender,
		PreparedBy:      preparedBy,
		RedeemerMessage: append([]byte(nil), order.RedeemerMessage...),
	}
	if err := e.store.CreatePreparedResponse(prepared); err != nil {
		return nil, err
	}
	if err := e.ledger.MintViaRemoteBurn(e.custody, order.AmountIn); err != nil {
		if rerr := e.store.ConsumePreparedResponse(digest); rerr != nil {
			e.log.Errorw("prepared_rollback_failed", "digest", digest.Hex(), "err", rerr)
		}
		return nil, fmt.Errorf("mint finalized funds: %w", err)
	}

	e.log.Infow("order_response_prepared",
		"digest", digest.Hex(),
		"base_fee", response.BaseFee,
		"amount", order.AmountIn,
	)
	return prepared, nil
}

// SettleComplete closes out an executed auction with the prepared
// finalized funds. A winner who executed inside the grace period is
// reimbursed in full; a penalized winner forfeits the base fee to
// whoever triggers the closeout. The custody record is consumed and the
// auction becomes terminally Settled.
func (e *Engine) SettleComplete(digest messages.Digest, callerToken messages.UniversalAddress) (*Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	auction, err := e.store.GetAuction(digest)
	if err != nil {
		return nil, err
	}
	switch auction.Status {
	case AuctionCompleted:
	case AuctionSettled:
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, digest.Hex())
	default:
		return nil, fmt.Errorf("%w: status %s", ErrAuctionNotCompleted, auction.Status)
	}

	prepared, err := e.store.GetPreparedResponse(digest)
	if err != nil {
		return nil, err
	}
	if prepared.SourceChain != auction.SourceChain {
		return nil, fmt.Errorf("%w: prepared source chain %d, auction %d", ErrProvenanceMismatch, prepared.SourceChain, auction.SourceChain)
	}

	if auction.WasPenalized() && callerToken != auction.BestOfferToken {
		if err := e.ledger.Move(e.custody, callerToken, prepared.BaseFee); err != nil {
			return nil, fmt.Errorf("pay closeout caller: %w", err)
		}
		if err := e.ledger.Move(e.custody, auction.BestOfferToken, prepared.Amount-prepared.BaseFee); err != nil {
			return nil, fmt.Errorf("reimburse winning bidder: %w", err)
		}
	} else {
		if err := e.ledger.Move(e.custody, auction.BestOfferToken, prepared.Amount); err != nil {
			return nil, fmt.Errorf("reimburse winning bidder: %w", err)
		}
	}
	if err := e.store.ConsumePreparedResponse(digest); err != nil {
		return nil, err
	}

	auction.Status = AuctionSettled
	auction.SettledPath = SettledComplete
	auction.SettledBaseFee = prepared.BaseFee
	if err := e.store.UpdateAuction(auction); err != nil {
		return nil, err
	}

	e.log.Infow("auction_settled",
		"digest", digest.Hex(),
		"path", "settle_complete",
		"base_fee", prepared.BaseFee,
	)
	e.sink.OrderSettled(OrderSettledEvent{
		Digest:         digest,
		Status:         auction.Status.String(),
		Path:           "settle_complete",
		BaseFee:        prepared.BaseFee,
		Penalty:        auction.ExecutePenalty,
		UserReward:     auction.ExecuteReward,
		BestOfferToken: auction.BestOfferToken,
		Executor:       callerToken,
	})
	return auction, nil
}

// SettleNone handles the fallback where the finalized confirmation
// arrived before anyone ever bid: there is no bidder to reward, so the
// base fee routes to the designated fee recipient and the remainder is
// filled through to the order's redeemer. The digest is claimed with a
// directly-Settled auction record so late bids are permanently locked
// out.
func (e *Engine) SettleNone(digest messages.Digest) (*Auction, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, err := e.store.GetAuction(digest); err == nil {
		if existing.Status == AuctionSettled {
			return nil, nil, fmt.Errorf("%w: %s", ErrAlreadySettled, digest.Hex())
		}
		return nil, nil, fmt.Errorf("%w: auction in progress, settle via execution", ErrDuplicateAuction)
	}
	prepared, err := e.store.GetPreparedResponse(digest)
	if err != nil {
		return nil, nil, err
	}

	fillAmount := prepared.Amount - prepared.BaseFee
	if prepared.BaseFee > 0 {
		if err := e.ledger.Move(e.custody, e.feeRecipient, prepared.BaseFee); err != nil {
			return nil, nil, fmt.Errorf("pay base fee: %w", err)
		}
	}

	fill := messages.Fill{
		SourceChain:     prepared.SourceChain,
		OrderSender:     prepared.Sender,
		Redeemer:        prepared.Redeemer,
		RedeemerMessage: prepared.RedeemerMessage,
	}
	var fillMsg []byte
	if prepared.TargetChain == e.localChain {
		if err := e.ledger.Move(e.custody, prepared.Redeemer, fillAmount); err != nil {
			return nil, nil, fmt.Errorf("deliver local fill: %w", err)
		}
		fillMsg = messages.FastFill{Fill: fill, Amount: fillAmount}.Encode()
	} else {
		if err := e.ledger.BurnForRemoteMint(e.custody, fillAmount); err != nil {
			return nil, nil, fmt.Errorf("burn for remote fill: %w", err)
		}
		fillMsg = messages.EncodeDepositFill(fill)
	}
	if err := e.store.ConsumePreparedResponse(digest); err != nil {
		return nil, nil, err
	}

	auction := &Auction{
		Digest:         digest,
		Status:         AuctionSettled,
		ConfigID:       e.configID,
		SourceChain:    prepared.SourceChain,
		TargetChain:    prepared.TargetChain,
		AmountIn:       prepared.Amount,
		SettledPath:    SettledNone,
		SettledBaseFee: prepared.BaseFee,
	}
	if err := e.store.CreateAuction(auction); err != nil {
		return nil, nil, err
	}

	e.log.Infow("auction_settled",
		"digest", digest.Hex(),
		"path", "settle_none",
		"base_fee", prepared.BaseFee,
		"fill_amount", fillAmount,
	)
	e.sink.OrderSettled(OrderSettledEvent{
		Digest:     digest,
		Status:     auction.Status.String(),
		Path:       "settle_none",
		FillAmount: fillAmount,
		BaseFee:    prepared.BaseFee,
	})
	return auction, fillMsg, nil
}
