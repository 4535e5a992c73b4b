package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// PebbleStore persists auction and custody records in Pebble. The
// mutex serializes create-if-absent and update sequences so the
// engine's atomicity contract holds; records are JSON-encoded and
// written with pebble.Sync.
type PebbleStore struct {
	mu sync.Mutex
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the underlying database.
func (s *PebbleStore) Close() error { return s.db.Close() }

func (s *PebbleStore) get(key []byte, out any) (bool, error) {
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}
	return true, nil
}

func (s *PebbleStore) set(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

// CreateAuction persists a new auction, failing if the digest is
// already claimed. Never overwrites.
func (s *PebbleStore) CreateAuction(a *engine.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing engine.Auction
	found, err := s.get(auctionKey(a.Digest), &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s", engine.ErrDuplicateAuction, a.Digest.Hex())
	}
	return s.set(auctionKey(a.Digest), a)
}

// GetAuction loads one auction record.
func (s *PebbleStore) GetAuction(digest messages.Digest) (*engine.Auction, error) {
	var a engine.Auction
	found, err := s.get(auctionKey(digest), &a)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", engine.ErrAuctionNotFound, digest.Hex())
	}
	return &a, nil
}

// UpdateAuction overwrites an existing auction record.
func (s *PebbleStore) UpdateAuction(a *engine.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing engine.Auction
	found, err := s.get(auctionKey(a.Digest), &existing)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", engine.ErrAuctionNotFound, a.Digest.Hex())
	}
	return s.set(auctionKey(a.Digest), a)
}

// CreatePreparedResponse persists a custody record, create-if-absent.
func (s *PebbleStore) CreatePreparedResponse(p *engine.PreparedOrderResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing engine.PreparedOrderResponse
	found, err := s.get(preparedKey(p.Digest), &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s", engine.ErrAlreadyPrepared, p.Digest.Hex())
	}
	return s.set(preparedKey(p.Digest), p)
}

// GetPreparedResponse loads one custody record.
func (s *PebbleStore) GetPreparedResponse(digest messages.Digest) (*engine.PreparedOrderResponse, error) {
	var p engine.PreparedOrderResponse
	found, err := s.get(preparedKey(digest), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", engine.ErrPreparedResponseNotFound, digest.Hex())
	}
	return &p, nil
}

// ConsumePreparedResponse deletes the custody record.
func (s *PebbleStore) ConsumePreparedResponse(digest messages.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p engine.PreparedOrderResponse
	found, err := s.get(preparedKey(digest), &p)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", engine.ErrPreparedResponseNotFound, digest.Hex())
	}
	if err := s.db.Delete(preparedKey(digest), pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete: %w", err)
	}
	return nil
}

var _ engine.Store = (*PebbleStore)(nil)
