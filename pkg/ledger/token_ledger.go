package ledger

import (
	"fmt"
	"sync"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// TokenLedger is an in-memory implementation of the engine's fund
// movement primitive, used by the devnet daemon and tests. Each call is
// atomic: balances are checked before any mutation, so a failed call
// leaves every account unchanged.
type TokenLedger struct {
	mu       sync.Mutex
	balances map[messages.UniversalAddress]uint64

	// Cumulative bridge flow, for inspection.
	minted uint64
	burned uint64
}

// NewTokenLedger creates an empty ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{balances: make(map[messages.UniversalAddress]uint64)}
}

// Credit seeds an account with funds (test/devnet faucet).
func (l *TokenLedger) Credit(addr messages.UniversalAddress, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] += amount
}

// Balance returns an account's current balance.
func (l *TokenLedger) Balance(addr messages.UniversalAddress) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Move transfers amount between accounts, failing without mutation if
// the source is short.
func (l *TokenLedger) Move(from, to messages.UniversalAddress, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("insufficient funds in %s: have %d, need %d", from.Hex(), l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// MintViaRemoteBurn credits an account against a finalized burn on a
// remote chain.
func (l *TokenLedger) MintViaRemoteBurn(to messages.UniversalAddress, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	l.minted += amount
	return nil
}

// BurnForRemoteMint debits an account so the destination chain can mint
// the same amount to the fill's redeemer.
func (l *TokenLedger) BurnForRemoteMint(from messages.UniversalAddress, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("insufficient funds in %s: have %d, need %d", from.Hex(), l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.burned += amount
	return nil
}

// Minted reports the cumulative amount minted via remote burns.
func (l *TokenLedger) Minted() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minted
}

// Burned reports the cumulative amount burned for remote mints.
func (l *TokenLedger) Burned() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.burned
}

var _ engine.Ledger = (*TokenLedger)(nil)
