package storage

import (
	"fmt"
	"sync"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// MemStore is the in-memory engine.Store used by tests and single
// process devnets. Records are copied on the way in and out so callers
// never share mutable state with the store.
type MemStore struct {
	mu       sync.Mutex
	auctions map[messages.Digest]engine.Auction
	prepared map[messages.Digest]engine.PreparedOrderResponse
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		auctions: make(map[messages.Digest]engine.Auction),
		prepared: make(map[messages.Digest]engine.PreparedOrderResponse),
	}
}

func (s *MemStore) CreateAuction(a *engine.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.auctions[a.Digest]; exists {
		return fmt.Errorf("%w: %s", engine.ErrDuplicateAuction, a.Digest.Hex())
	}
	s.auctions[a.Digest] = *a
	return nil
}

func (s *MemStore) GetAuction(digest messages.Digest) (*engine.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[digest]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrAuctionNotFound, digest.Hex())
	}
	cp := a
	return &cp, nil
}

func (s *MemStore) UpdateAuction(a *engine.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[a.Digest]; !ok {
		return fmt.Errorf("%w: %s", engine.ErrAuctionNotFound, a.Digest.Hex())
	}
	s.auctions[a.Digest] = *a
	return nil
}

func (s *MemStore) CreatePreparedResponse(p *engine.PreparedOrderResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.prepared[p.Digest]; exists {
		return fmt.Errorf("%w: %s", engine.ErrAlreadyPrepared, p.Digest.Hex())
	}
	s.prepared[p.Digest] = *p
	return nil
}

func (s *MemStore) GetPreparedResponse(digest messages.Digest) (*engine.PreparedOrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prepared[digest]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrPreparedResponseNotFound, digest.Hex())
	}
	cp := p
	return &cp, nil
}

func (s *MemStore) ConsumePreparedResponse(digest messages.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prepared[digest]; !ok {
		return fmt.Errorf("%w: %s", engine.ErrPreparedResponseNotFound, digest.Hex())
	}
	delete(s.prepared, digest)
	return nil
}

var _ engine.Store = (*MemStore)(nil)
