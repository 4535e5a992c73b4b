package messages

import (
	"encoding/binary"
	"fmt"
)

// fillFixedLen is the untagged Fill body before the variable message:
// source_chain u16 + order_sender + redeemer + u32 length prefix.
const fillFixedLen = 2 + 32 + 32 + 4

// Fill instructs the destination chain to credit the redeemer with the
// fronted funds. It is emitted by the engine at execution time and also
// appears nested inside Deposit and FastFill payloads.
type Fill struct {
	SourceChain     uint16
	OrderSender     UniversalAddress
	Redeemer        UniversalAddress
	RedeemerMessage []byte // aliases the input buffer when parsed
}

// FastFill is the same-chain delivery variant: a Fill plus the amount
// already netted of fees, skipping the remote burn round trip.
type FastFill struct {
	Fill   Fill
	Amount uint64
}

// SlowOrderResponse is the finalized confirmation of the original
// transfer; base fee is the protocol cut taken before reimbursement.
type SlowOrderResponse struct {
	BaseFee uint64
}

// parseFillBody decodes an untagged Fill starting at buf[0] and returns
// the number of bytes consumed. The nested length prefix is validated
// against the remaining buffer before any slicing so an oversized
// declared length can never read out of bounds.
func parseFillBody(buf []byte) (Fill, int, error) {
	if len(buf) < fillFixedLen {
		return Fill{}, 0, malformed("fill too short: %d bytes, need at least %d", len(buf), fillFixedLen)
	}
	var f Fill
	f.SourceChain = binary.BigEndian.Uint16(buf[0:2])
	copy(f.OrderSender[:], buf[2:34])
	copy(f.Redeemer[:], buf[34:66])

	msgLen := int(binary.BigEndian.Uint32(buf[66:70]))
	if msgLen > MaxRedeemerMessageLen {
		return Fill{}, 0, malformed("fill message length %d exceeds maximum %d", msgLen, MaxRedeemerMessageLen)
	}
	if msgLen > len(buf)-fillFixedLen {
		return Fill{}, 0, malformed("fill message length %d exceeds remaining %d bytes", msgLen, len(buf)-fillFixedLen)
	}
	f.RedeemerMessage = buf[fillFixedLen : fillFixedLen+msgLen]
	return f, fillFixedLen + msgLen, nil
}

func (f Fill) encodedLen() int { return fillFixedLen + len(f.RedeemerMessage) }

// encodeBody panics past MaxRedeemerMessageLen, mirroring the parse-side
// bound so encoded fills always decode.
func (f Fill) encodeBody(out []byte) {
	if len(f.RedeemerMessage) > MaxRedeemerMessageLen {
		panic(fmt.Sprintf("messages: fill redeemer message %d bytes exceeds maximum %d", len(f.RedeemerMessage), MaxRedeemerMessageLen))
	}
	binary.BigEndian.PutUint16(out[0:2], f.SourceChain)
	copy(out[2:34], f.OrderSender[:])
	copy(out[34:66], f.Redeemer[:])
	binary.BigEndian.PutUint32(out[66:70], uint32(len(f.RedeemerMessage)))
	copy(out[fillFixedLen:], f.RedeemerMessage)
}

// ParseFastFill decodes a tagged fast-fill payload: embedded Fill
// followed by the u64 amount. The Fill's own length field locates the
// amount, so the nested bounds are validated first.
func ParseFastFill(payload []byte) (FastFill, error) {
	if len(payload) < 1 {
		return FastFill{}, malformed("empty fast fill payload")
	}
	if payload[0] != TagFastFill {
		return FastFill{}, malformed("unexpected tag %d, want fast fill (%d)", payload[0], TagFastFill)
	}
	fill, n, err := parseFillBody(payload[1:])
	if err != nil {
		return FastFill{}, err
	}
	rest := payload[1+n:]
	if len(rest) != 8 {
		return FastFill{}, malformed("fast fill length mismatch: %d trailing bytes after fill, want 8", len(rest))
	}
	return FastFill{Fill: fill, Amount: binary.BigEndian.Uint64(rest)}, nil
}

// Encode serializes the fast fill into its tagged canonical byte form.
func (f FastFill) Encode() []byte {
	out := make([]byte, 1+f.Fill.encodedLen()+8)
	out[0] = TagFastFill
	f.Fill.encodeBody(out[1:])
	binary.BigEndian.PutUint64(out[1+f.Fill.encodedLen():], f.Amount)
	return out
}

// ParseSlowOrderResponse decodes a tagged slow-order-response payload.
func ParseSlowOrderResponse(payload []byte) (SlowOrderResponse, error) {
	if len(payload) < 1 {
		return SlowOrderResponse{}, malformed("empty slow order response payload")
	}
	if payload[0] != TagSlowOrderResponse {
		return SlowOrderResponse{}, malformed("unexpected tag %d, want slow order response (%d)", payload[0], TagSlowOrderResponse)
	}
	if len(payload) != 9 {
		return SlowOrderResponse{}, malformed("slow order response length mismatch: %d bytes, want 9", len(payload))
	}
	return SlowOrderResponse{BaseFee: binary.BigEndian.Uint64(payload[1:9])}, nil
}

// Encode serializes the response into its tagged canonical byte form.
func (r SlowOrderResponse) Encode() []byte {
	out := make([]byte, 9)
	out[0] = TagSlowOrderResponse
	binary.BigEndian.PutUint64(out[1:9], r.BaseFee)
	return out
}
