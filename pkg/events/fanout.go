package events

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/engine"
)

// Envelope wraps every published event with its type tag so consumers
// can demultiplex a single stream.
type Envelope struct {
	Type string          `json:"type"` // "auction_updated" | "order_settled"
	Data json.RawMessage `json:"data"`
}

// Transport delivers one serialized event. Key is the auction digest;
// transports must not block the engine for long and must swallow their
// own delivery failures.
type Transport interface {
	Publish(key, value []byte)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(key, value []byte)

func (f TransportFunc) Publish(key, value []byte) { f(key, value) }

// Fanout serializes engine events once and hands them to every
// registered transport (WebSocket hub, Kafka, audit log).
type Fanout struct {
	transports []Transport
	log        *zap.SugaredLogger
}

// NewFanout creates a sink over the given transports.
func NewFanout(log *zap.SugaredLogger, transports ...Transport) *Fanout {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fanout{transports: transports, log: log}
}

// Add registers another transport.
func (f *Fanout) Add(t Transport) { f.transports = append(f.transports, t) }

func (f *Fanout) publish(typ string, key []byte, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		f.log.Errorw("event_encode_failed", "type", typ, "err", err)
		return
	}
	value, err := json.Marshal(Envelope{Type: typ, Data: raw})
	if err != nil {
		f.log.Errorw("event_encode_failed", "type", typ, "err", err)
		return
	}
	for _, t := range f.transports {
		t.Publish(key, value)
	}
}

// AuctionUpdated implements engine.EventSink.
func (f *Fanout) AuctionUpdated(ev engine.AuctionUpdatedEvent) {
	f.publish("auction_updated", ev.Digest[:], ev)
}

// OrderSettled implements engine.EventSink.
func (f *Fanout) OrderSettled(ev engine.OrderSettledEvent) {
	f.publish("order_settled", ev.Digest[:], ev)
}

var _ engine.EventSink = (*Fanout)(nil)
