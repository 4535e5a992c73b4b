package messages

import (
	"encoding/binary"
	"fmt"
)

// Payload tags. The first payload byte selects the variant; anything
// else is a decode failure.
const (
	TagDeposit           uint8 = 1
	TagFastMarketOrder   uint8 = 11
	TagFastFill          uint8 = 12
	TagSlowOrderResponse uint8 = 14
)

// MaxRedeemerMessageLen bounds the variable tail of a fast market order.
const MaxRedeemerMessageLen = 512

// fastMarketOrderFixedLen is tag byte plus all fixed-width fields plus
// the u16 redeemer-message length prefix.
const fastMarketOrderFixedLen = 1 + 8 + 8 + 2 + 32 + 32 + 32 + 8 + 8 + 4 + 2

// FastMarketOrder is the fast-path order a user signed on the source
// chain: the amount they locked, the worst price they accept, and the
// fee ceiling solvers bid underneath. Parsed views borrow the input
// buffer for the redeemer message; they are never mutated.
type FastMarketOrder struct {
	AmountIn       uint64
	MinAmountOut   uint64
	TargetChain    uint16
	Redeemer       UniversalAddress
	Sender         UniversalAddress
	RefundAddress  UniversalAddress
	MaxFee         uint64
	InitAuctionFee uint64

	// Deadline is an absolute unix timestamp; zero means no deadline.
	Deadline uint32

	// RedeemerMessage aliases the input buffer.
	RedeemerMessage []byte
}

// ParseFastMarketOrder decodes a tagged fast-market-order payload. The
// declared redeemer-message length must account for every remaining
// byte; trailing or missing bytes are a decode failure.
func ParseFastMarketOrder(payload []byte) (FastMarketOrder, error) {
	if len(payload) < fastMarketOrderFixedLen {
		return FastMarketOrder{}, malformed("fast market order too short: %d bytes, need at least %d", len(payload), fastMarketOrderFixedLen)
	}
	if payload[0] != TagFastMarketOrder {
		return FastMarketOrder{}, malformed("unexpected tag %d, want fast market order (%d)", payload[0], TagFastMarketOrder)
	}
	var o FastMarketOrder
	o.AmountIn = binary.BigEndian.Uint64(payload[1:9])
	o.MinAmountOut = binary.BigEndian.Uint64(payload[9:17])
	o.TargetChain = binary.BigEndian.Uint16(payload[17:19])
	copy(o.Redeemer[:], payload[19:51])
	copy(o.Sender[:], payload[51:83])
	copy(o.RefundAddress[:], payload[83:115])
	o.MaxFee = binary.BigEndian.Uint64(payload[115:123])
	o.InitAuctionFee = binary.BigEndian.Uint64(payload[123:131])
	o.Deadline = binary.BigEndian.Uint32(payload[131:135])

	msgLen := int(binary.BigEndian.Uint16(payload[135:137]))
	if msgLen > MaxRedeemerMessageLen {
		return FastMarketOrder{}, malformed("redeemer message length %d exceeds maximum %d", msgLen, MaxRedeemerMessageLen)
	}
	if len(payload) != fastMarketOrderFixedLen+msgLen {
		return FastMarketOrder{}, malformed("fast market order length mismatch: declared message %d bytes, buffer holds %d", msgLen, len(payload)-fastMarketOrderFixedLen)
	}
	o.RedeemerMessage = payload[fastMarketOrderFixedLen:]
	return o, nil
}

// Encode serializes the order into its tagged canonical byte form. It
// panics if the redeemer message exceeds MaxRedeemerMessageLen: the u16
// length prefix would otherwise truncate silently and produce bytes the
// parser rejects.
func (o FastMarketOrder) Encode() []byte {
	if len(o.RedeemerMessage) > MaxRedeemerMessageLen {
		panic(fmt.Sprintf("messages: redeemer message %d bytes exceeds maximum %d", len(o.RedeemerMessage), MaxRedeemerMessageLen))
	}
	out := make([]byte, fastMarketOrderFixedLen+len(o.RedeemerMessage))
	out[0] = TagFastMarketOrder
	binary.BigEndian.PutUint64(out[1:9], o.AmountIn)
	binary.BigEndian.PutUint64(out[9:17], o.MinAmountOut)
	binary.BigEndian.PutUint16(out[17:19], o.TargetChain)
	copy(out[19:51], o.Redeemer[:])
	copy(out[51:83], o.Sender[:])
	copy(out[83:115], o.RefundAddress[:])
	binary.BigEndian.PutUint64(out[115:123], o.MaxFee)
	binary.BigEndian.PutUint64(out[123:131], o.InitAuctionFee)
	binary.BigEndian.PutUint32(out[131:135], o.Deadline)
	binary.BigEndian.PutUint16(out[135:137], uint16(len(o.RedeemerMessage)))
	copy(out[fastMarketOrderFixedLen:], o.RedeemerMessage)
	return out
}
