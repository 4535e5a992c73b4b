package engine

import "errors"

// Business-rule and idempotency errors. Every operation either commits
// fully or returns one of these with persistent state untouched; the
// engine never retries internally.
var (
	// ErrInvalidParameters: auction policy values out of range at
	// configuration time.
	ErrInvalidParameters = errors.New("invalid auction parameters")

	// ErrDuplicateAuction: an auction already exists for the digest.
	// Replays are rejected, never merged.
	ErrDuplicateAuction = errors.New("auction already exists for digest")

	// ErrAuctionNotFound: no auction recorded for the digest.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionNotActive: the operation requires an active auction.
	ErrAuctionNotActive = errors.New("auction not active")

	// ErrAuctionExpired: bidding is closed; only execution may act.
	ErrAuctionExpired = errors.New("auction period expired")

	// ErrAuctionInProgress: execution attempted before the bidding
	// period ended.
	ErrAuctionInProgress = errors.New("auction period not yet expired")

	// ErrOfferNotCompetitive: the proposed price does not beat the
	// recorded best offer by the required delta.
	ErrOfferNotCompetitive = errors.New("offer not competitive")

	// ErrOfferPriceTooHigh: the proposed fee exceeds the order's max.
	ErrOfferPriceTooHigh = errors.New("offer price exceeds order max fee")

	// ErrOrderDeadlineExceeded: the order's absolute deadline passed
	// before an initial offer arrived.
	ErrOrderDeadlineExceeded = errors.New("order deadline exceeded")

	// ErrRouteNotRegistered: the source or target chain has no enabled
	// endpoint in the registry.
	ErrRouteNotRegistered = errors.New("route not registered or disabled")

	// ErrUntrustedEmitter: the message's emitter address does not match
	// the registered endpoint for its chain.
	ErrUntrustedEmitter = errors.New("emitter does not match registered endpoint")

	// ErrAttestationRejected: the attestation gate refused the message.
	ErrAttestationRejected = errors.New("attestation rejected")

	// ErrAuctionNotCompleted: closeout attempted before the auction
	// was executed.
	ErrAuctionNotCompleted = errors.New("auction not completed")

	// ErrProvenanceMismatch: the slow message does not correspond to
	// the fast order (chain, emitter, sequence, or timestamp). Fatal;
	// never coerced into a soft warning.
	ErrProvenanceMismatch = errors.New("fast/slow provenance mismatch")

	// ErrAlreadySettled: the auction reached a terminal state; any
	// further settlement attempt is rejected with amounts unchanged.
	ErrAlreadySettled = errors.New("auction already settled")

	// ErrAlreadyPrepared: a prepared order response exists for the
	// digest.
	ErrAlreadyPrepared = errors.New("order response already prepared")

	// ErrPreparedResponseNotFound: settlement requires a prepared
	// order response that does not exist (or was already consumed).
	ErrPreparedResponseNotFound = errors.New("prepared order response not found")

	// ErrArithmeticOverflow: a fund computation exceeded 64 bits.
	// Impossible by construction with validated parameters; fatal if
	// it ever triggers.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)
