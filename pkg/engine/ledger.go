package engine

import "github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"

// Ledger is the external fund-movement primitive. Every call is assumed
// atomic: it either fully applies or returns an error with no partial
// movement, in which case the whole engine operation aborts. The
// ledger's internal bookkeeping is outside the engine's consistency
// domain.
type Ledger interface {
	// Move transfers amount between token accounts.
	Move(from, to messages.UniversalAddress, amount uint64) error

	// MintViaRemoteBurn credits a local account against tokens burned
	// on a remote chain (the slow deposit arriving).
	MintViaRemoteBurn(to messages.UniversalAddress, amount uint64) error

	// BurnForRemoteMint burns local tokens so the destination chain can
	// mint them to the fill's redeemer (the fast transfer leaving).
	BurnForRemoteMint(from messages.UniversalAddress, amount uint64) error
}
