package engine

import "github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"

// AuctionUpdatedEvent is emitted on every accepted bid.
type AuctionUpdatedEvent struct {
	Digest         messages.Digest           `json:"digest"`
	Status         string                    `json:"status"`
	SourceChain    uint16                    `json:"source_chain"`
	TargetChain    uint16                    `json:"target_chain"`
	OfferPrice     uint64                    `json:"offer_price"`
	BestOfferToken messages.UniversalAddress `json:"best_offer_token"`
	StartSlot      uint64                    `json:"start_slot"`
	EndSlot        uint64                    `json:"end_slot"`
}

// OrderSettledEvent is emitted on execution and on each terminal
// settlement path, for off-chain indexing and audit.
type OrderSettledEvent struct {
	Digest         messages.Digest           `json:"digest"`
	Status         string                    `json:"status"`
	Path           string                    `json:"path"` // "execute", "settle_none", "settle_complete"
	FillAmount     uint64                    `json:"fill_amount,omitempty"`
	BaseFee        uint64                    `json:"base_fee,omitempty"`
	Penalty        uint64                    `json:"penalty,omitempty"`
	UserReward     uint64                    `json:"user_reward,omitempty"`
	BestOfferToken messages.UniversalAddress `json:"best_offer_token,omitempty"`
	Executor       messages.UniversalAddress `json:"executor,omitempty"`
}

// EventSink receives structured engine events. Implementations fan out
// to WebSocket subscribers, Kafka, or an audit log; failures there must
// not affect engine state, so the sink interface returns nothing.
type EventSink interface {
	AuctionUpdated(ev AuctionUpdatedEvent)
	OrderSettled(ev OrderSettledEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) AuctionUpdated(AuctionUpdatedEvent) {}
func (NopSink) OrderSettled(OrderSettledEvent)     {}

var _ EventSink = NopSink{}
