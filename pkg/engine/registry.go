package engine

import (
	"fmt"
	"sync"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

// Endpoint is the trusted order emitter for one chain. A route is only
// biddable when both its source endpoint matches the message emitter
// and its target endpoint is enabled.
type Endpoint struct {
	Chain   uint16
	Address messages.UniversalAddress
	Enabled bool
}

// EndpointRegistry manages registered cross-chain routes in a
// thread-safe manner.
type EndpointRegistry struct {
	mu        sync.RWMutex
	endpoints map[uint16]*Endpoint // chain -> endpoint
}

// NewEndpointRegistry creates an empty registry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{endpoints: make(map[uint16]*Endpoint)}
}

// Register adds an endpoint for a chain. Returns an error if the chain
// is already registered.
func (r *EndpointRegistry) Register(ep Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[ep.Chain]; exists {
		return fmt.Errorf("chain %d already registered", ep.Chain)
	}
	cp := ep
	r.endpoints[ep.Chain] = &cp
	return nil
}

// Get retrieves the endpoint for a chain.
func (r *EndpointRegistry) Get(chain uint16) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[chain]
	if !ok {
		return Endpoint{}, false
	}
	return *ep, true
}

// SetEnabled pauses or resumes a route.
func (r *EndpointRegistry) SetEnabled(chain uint16, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, ok := r.endpoints[chain]
	if !ok {
		return fmt.Errorf("chain %d not registered", chain)
	}
	ep.Enabled = enabled
	return nil
}

// List returns all registered endpoints.
func (r *EndpointRegistry) List() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, *ep)
	}
	return out
}

// checkRoute validates the source emitter and target chain for an
// inbound order.
func (r *EndpointRegistry) checkRoute(sourceChain uint16, emitter messages.UniversalAddress, targetChain uint16) error {
	src, ok := r.Get(sourceChain)
	if !ok || !src.Enabled {
		return fmt.Errorf("%w: source chain %d", ErrRouteNotRegistered, sourceChain)
	}
	if src.Address != emitter {
		return fmt.Errorf("%w: chain %d emitter %s", ErrUntrustedEmitter, sourceChain, emitter.Hex())
	}
	dst, ok := r.Get(targetChain)
	if !ok || !dst.Enabled {
		return fmt.Errorf("%w: target chain %d", ErrRouteNotRegistered, targetChain)
	}
	return nil
}
