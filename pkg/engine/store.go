package engine

import "github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"

// Store is the digest-keyed persistence contract the engine requires:
// create-if-absent, read, and whole-record update. Implementations must
// make CreateAuction fail (never overwrite) when the digest is already
// present, and must apply each call atomically. pkg/storage provides a
// pebble-backed implementation and an in-memory one.
type Store interface {
	// CreateAuction persists a new auction. Returns ErrDuplicateAuction
	// if one already exists for the digest.
	CreateAuction(a *Auction) error

	// GetAuction loads the auction for a digest, or ErrAuctionNotFound.
	GetAuction(digest messages.Digest) (*Auction, error)

	// UpdateAuction overwrites an existing auction record. Returns
	// ErrAuctionNotFound if it was never created.
	UpdateAuction(a *Auction) error

	// CreatePreparedResponse persists a custody record. Returns
	// ErrAlreadyPrepared if one already exists for the digest.
	CreatePreparedResponse(p *PreparedOrderResponse) error

	// GetPreparedResponse loads the custody record, or
	// ErrPreparedResponseNotFound.
	GetPreparedResponse(digest messages.Digest) (*PreparedOrderResponse, error)

	// ConsumePreparedResponse deletes the custody record. Returns
	// ErrPreparedResponseNotFound if absent.
	ConsumePreparedResponse(digest messages.Digest) error
}
