package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// Engine is the fast-transfer auction engine. Each exported operation
// is one atomic unit of work against a single auction record: the
// internal mutex serializes invocations so a later caller always
// observes the previous caller's committed state, and a failed
// operation leaves persistent state untouched.
type Engine struct {
	mu sync.Mutex

	params   AuctionParameters
	configID uint32

	// localChain is the chain the engine itself runs on; orders
	// targeting it are delivered as fast fills without a remote burn.
	localChain uint16

	custody      messages.UniversalAddress
	feeRecipient messages.UniversalAddress

	store    Store
	ledger   Ledger
	routes   *EndpointRegistry
	verifier messages.Verifier
	sink     EventSink
	log      *zap.SugaredLogger
}

// Options wires an Engine. Store and Ledger are required; Routes,
// Verifier, Sink and Logger default to an empty registry, the
// accept-all gate, a no-op sink and a no-op logger.
type Options struct {
	Params       AuctionParameters
	ConfigID     uint32
	LocalChain   uint16
	Custody      messages.UniversalAddress
	FeeRecipient messages.UniversalAddress

	Store    Store
	Ledger   Ledger
	Routes   *EndpointRegistry
	Verifier messages.Verifier
	Sink     EventSink
	Logger   *zap.SugaredLogger
}

// New validates the auction parameters and assembles an engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("engine requires a ledger")
	}
	e := &Engine{
		params:       opts.Params,
		configID:     opts.ConfigID,
		localChain:   opts.LocalChain,
		custody:      opts.Custody,
		feeRecipient: opts.FeeRecipient,
		store:        opts.Store,
		ledger:       opts.Ledger,
		routes:       opts.Routes,
		verifier:     opts.Verifier,
		sink:         opts.Sink,
		log:          opts.Logger,
	}
	if e.routes == nil {
		e.routes = NewEndpointRegistry()
	}
	if e.verifier == nil {
		e.verifier = messages.AcceptAll{}
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	return e, nil
}

// Params returns the active auction policy.
func (e *Engine) Params() AuctionParameters { return e.params }

// Routes returns the endpoint registry.
func (e *Engine) Routes() *EndpointRegistry { return e.routes }

// GetAuction is a side-effect-free query for one auction record.
func (e *Engine) GetAuction(digest messages.Digest) (*Auction, error) {
	return e.store.GetAuction(digest)
}

// verifyOrder parses and gates an attested fast-market-order message.
func (e *Engine) verifyOrder(rawMsg []byte, signers []messages.UniversalAddress) (messages.RawMessage, messages.Digest, messages.FastMarketOrder, error) {
	raw, err := messages.ParseRawMessage(rawMsg)
	if err != nil {
		return messages.RawMessage{}, messages.Digest{}, messages.FastMarketOrder{}, err
	}
	digest := raw.ComputeDigest()
	if !e.verifier.Verify(digest, signers) {
		return messages.RawMessage{}, messages.Digest{}, messages.FastMarketOrder{}, fmt.Errorf("%w: digest %s", ErrAttestationRejected, digest.Hex())
	}
	order, err := messages.ParseFastMarketOrder(raw.Payload)
	if err != nil {
		return messages.RawMessage{}, messages.Digest{}, messages.FastMarketOrder{}, err
	}
	return raw, digest, order, nil
}

// PlaceInitialOffer opens the auction for an attested order: it locks
// amount_in plus the security deposit from the bidder into custody and
// records the bidder as both initial and best offer. An auction already
// keyed by the digest rejects the replay with ErrDuplicateAuction.
func (e *Engine) PlaceInitialOffer(clock Clock, rawMsg []byte, signers []messages.UniversalAddress, offerPrice uint64, offerToken messages.UniversalAddress) (*Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, digest, order, err := e.verifyOrder(rawMsg, signers)
	if err != nil {
		return nil, err
	}
	if order.Deadline != 0 && clock.Unix > int64(order.Deadline) {
		return nil, fmt.Errorf("%w: deadline %d, now %d", ErrOrderDeadlineExceeded, order.Deadline, clock.Unix)
	}
	if offerPrice > order.MaxFee {
		return nil, fmt.Errorf("%w: offered %d, max %d", ErrOfferPriceTooHigh, offerPrice, order.MaxFee)
	}
	// An order whose fees cannot be carved out of amount_in could never
	// execute: fill amount = amount_in - offer - init fee would underflow
	// on every attempt, stranding the escrow in an Active auction.
	if fees, err := checkedAdd(order.MaxFee, order.InitAuctionFee); err != nil || fees > order.AmountIn {
		return nil, fmt.Errorf("%w: max fee %d plus init auction fee %d exceeds amount in %d",
			ErrInvalidParameters, order.MaxFee, order.InitAuctionFee, order.AmountIn)
	}
	if err := e.routes.checkRoute(raw.EmitterChain, raw.EmitterAddress, order.TargetChain); err != nil {
		return nil, err
	}
	if _, err := e.store.GetAuction(digest); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAuction, digest.Hex())
	}

	securityDeposit := e.params.SecurityDeposit(order.AmountIn)
	total, err := checkedAdd(order.AmountIn, securityDeposit)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Move(offerToken, e.custody, total); err != nil {
		return nil, fmt.Errorf("escrow initial offer: %w", err)
	}

	auction := &Auction{
		Digest:            digest,
		Status:            AuctionActive,
		ConfigID:          e.configID,
		SourceChain:       raw.EmitterChain,
		Sequence:          raw.Sequence,
		TargetChain:       order.TargetChain,
		StartSlot:         clock.Slot,
		AmountIn:          order.AmountIn,
		SecurityDeposit:   securityDeposit,
		OfferPrice:        offerPrice,
		BestOfferToken:    offerToken,
		InitialOfferToken: offerToken,
	}
	if err := e.store.CreateAuction(auction); err != nil {
		// Undo the escrow; the lock makes a duplicate here unreachable
		// in practice but the store contract is the source of truth.
		if rerr := e.ledger.Move(e.custody, offerToken, total); rerr != nil {
			e.log.Errorw("escrow_refund_failed", "digest", digest.Hex(), "err", rerr)
		}
		return nil, err
	}

	e.log.Infow("auction_started",
		"digest", digest.Hex(),
		"source_chain", raw.EmitterChain,
		"target_chain", order.TargetChain,
		"amount_in", order.AmountIn,
		"offer_price", offerPrice,
		"start_slot", clock.Slot,
	)
	e.sink.AuctionUpdated(e.auctionEvent(auction))
	return auction, nil
}

// ImproveOffer replaces the best offer with a strictly better one. The
// new price must undercut the recorded best by at least
// MinOfferDeltaBps of it; the outbid solver's escrow is refunded and
// the new solver's locked in the same unit of work.
func (e *Engine) ImproveOffer(clock Clock, digest messages.Digest, offerPrice uint64, offerToken messages.UniversalAddress) (*Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	auction, err := e.store.GetAuction(digest)
	if err != nil {
		return nil, err
	}
	if auction.Status != AuctionActive {
		return nil, fmt.Errorf("%w: status %s", ErrAuctionNotActive, auction.Status)
	}
	if clock.Slot > auction.EndSlot(e.params) {
		return nil, fmt.Errorf("%w: ended at slot %d, now %d", ErrAuctionExpired, auction.EndSlot(e.params), clock.Slot)
	}

	maxAllowed := auction.OfferPrice - mulBps(auction.OfferPrice, e.params.MinOfferDeltaBps)
	if offerPrice > maxAllowed {
		return nil, fmt.Errorf("%w: offered %d, must not exceed %d", ErrOfferNotCompetitive, offerPrice, maxAllowed)
	}

	total, err := auction.TotalDeposit()
	if err != nil {
		return nil, err
	}
	if offerToken != auction.BestOfferToken {
		if err := e.ledger.Move(offerToken, e.custody, total); err != nil {
			return nil, fmt.Errorf("escrow improved offer: %w", err)
		}
		if err := e.ledger.Move(e.custody, auction.BestOfferToken, total); err != nil {
			if rerr := e.ledger.Move(e.custody, offerToken, total); rerr != nil {
				e.log.Errorw("escrow_refund_failed", "digest", digest.Hex(), "err", rerr)
			}
			return nil, fmt.Errorf("refund outbid offer: %w", err)
		}
	}

	auction.OfferPrice = offerPrice
	auction.BestOfferToken = offerToken
	if err := e.store.UpdateAuction(auction); err != nil {
		return nil, err
	}

	e.log.Infow("offer_improved",
		"digest", digest.Hex(),
		"offer_price", offerPrice,
		"best_offer_token", offerToken.Hex(),
	)
	e.sink.AuctionUpdated(e.auctionEvent(auction))
	return auction, nil
}

func (e *Engine) auctionEvent(a *Auction) AuctionUpdatedEvent {
	return AuctionUpdatedEvent{
		Digest:         a.Digest,
		Status:         a.Status.String(),
		SourceChain:    a.SourceChain,
		TargetChain:    a.TargetChain,
		OfferPrice:     a.OfferPrice,
		BestOfferToken: a.BestOfferToken,
		StartSlot:      a.StartSlot,
		EndSlot:        a.EndSlot(e.params),
	}
}
