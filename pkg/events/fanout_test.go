package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"
)

func TestFanoutDeliversToAllTransports(t *testing.T) {
	type delivery struct {
		key   []byte
		value []byte
	}
	var first, second []delivery
	f := NewFanout(nil,
		TransportFunc(func(k, v []byte) { first = append(first, delivery{k, v}) }),
	)
	f.Add(TransportFunc(func(k, v []byte) { second = append(second, delivery{k, v}) }))

	digest := messages.Digest{0x01, 0x02}
	f.AuctionUpdated(engine.AuctionUpdatedEvent{
		Digest:     digest,
		Status:     "active",
		OfferPrice: 400_000,
	})
	f.OrderSettled(engine.OrderSettledEvent{
		Digest: digest,
		Path:   "execute",
	})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("deliveries: first %d, second %d, want 2 each", len(first), len(second))
	}
	if !bytes.Equal(first[0].key, digest[:]) {
		t.Error("event key must be the digest")
	}
	// Both transports see the same serialized payload.
	if !bytes.Equal(first[0].value, second[0].value) {
		t.Error("transports received different payloads")
	}

	var env Envelope
	if err := json.Unmarshal(first[0].value, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != "auction_updated" {
		t.Errorf("type = %q, want auction_updated", env.Type)
	}
	var ev engine.AuctionUpdatedEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.OfferPrice != 400_000 || ev.Status != "active" {
		t.Errorf("decoded event: %+v", ev)
	}

	var settled Envelope
	if err := json.Unmarshal(first[1].value, &settled); err != nil {
		t.Fatalf("decode settled envelope: %v", err)
	}
	if settled.Type != "order_settled" {
		t.Errorf("type = %q, want order_settled", settled.Type)
	}
}

func TestFanoutNoTransports(t *testing.T) {
	// A fanout with nothing attached silently discards.
	f := NewFanout(nil)
	f.AuctionUpdated(engine.AuctionUpdatedEvent{})
	f.OrderSettled(engine.OrderSettledEvent{})
}
