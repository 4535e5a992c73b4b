package messages

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

// Deposit payload subtypes. The first byte of a deposit's nested
// payload selects the variant.
const (
	DepositPayloadFill              uint8 = 1
	DepositPayloadSlowOrderResponse uint8 = 2
)

// depositFixedLen is tag byte plus fixed fields plus the u16 nested
// payload length prefix.
const depositFixedLen = 1 + 32 + 32 + 4 + 4 + 8 + 32 + 32 + 2

// Deposit is the finalized token-bridge transfer that accompanies the
// slow path: the burned amount, the bridge routing domains, and a
// nested tagged payload (a Fill or a SlowOrderResponse).
type Deposit struct {
	TokenAddress      UniversalAddress
	Amount            *big.Int
	SourceDomain      uint32
	DestinationDomain uint32
	DepositNonce      uint64
	BurnSource        UniversalAddress
	MintRecipient     UniversalAddress

	// Payload aliases the input buffer; decode it with Fill or
	// SlowOrderResponse depending on the subtype byte.
	Payload []byte
}

// ParseDeposit decodes a tagged deposit payload. The declared nested
// payload length must account for every remaining byte.
func ParseDeposit(payload []byte) (Deposit, error) {
	if len(payload) < depositFixedLen {
		return Deposit{}, malformed("deposit too short: %d bytes, need at least %d", len(payload), depositFixedLen)
	}
	if payload[0] != TagDeposit {
		return Deposit{}, malformed("unexpected tag %d, want deposit (%d)", payload[0], TagDeposit)
	}
	var d Deposit
	copy(d.TokenAddress[:], payload[1:33])
	d.Amount = new(big.Int).SetBytes(payload[33:65])
	d.SourceDomain = binary.BigEndian.Uint32(payload[65:69])
	d.DestinationDomain = binary.BigEndian.Uint32(payload[69:73])
	d.DepositNonce = binary.BigEndian.Uint64(payload[73:81])
	copy(d.BurnSource[:], payload[81:113])
	copy(d.MintRecipient[:], payload[113:145])

	nestedLen := int(binary.BigEndian.Uint16(payload[145:147]))
	if len(payload) != depositFixedLen+nestedLen {
		return Deposit{}, malformed("deposit length mismatch: declared payload %d bytes, buffer holds %d", nestedLen, len(payload)-depositFixedLen)
	}
	d.Payload = payload[depositFixedLen:]
	return d, nil
}

// Fill decodes the nested payload as a Fill subtype.
func (d Deposit) Fill() (Fill, error) {
	if len(d.Payload) < 1 {
		return Fill{}, malformed("empty deposit payload")
	}
	if d.Payload[0] != DepositPayloadFill {
		return Fill{}, malformed("unexpected deposit payload subtype %d, want fill (%d)", d.Payload[0], DepositPayloadFill)
	}
	fill, n, err := parseFillBody(d.Payload[1:])
	if err != nil {
		return Fill{}, err
	}
	if 1+n != len(d.Payload) {
		return Fill{}, malformed("deposit fill length mismatch: %d trailing bytes", len(d.Payload)-1-n)
	}
	return fill, nil
}

// SlowOrderResponse decodes the nested payload as a slow-order-response
// subtype.
func (d Deposit) SlowOrderResponse() (SlowOrderResponse, error) {
	if len(d.Payload) < 1 {
		return SlowOrderResponse{}, malformed("empty deposit payload")
	}
	if d.Payload[0] != DepositPayloadSlowOrderResponse {
		return SlowOrderResponse{}, malformed("unexpected deposit payload subtype %d, want slow order response (%d)", d.Payload[0], DepositPayloadSlowOrderResponse)
	}
	if len(d.Payload) != 9 {
		return SlowOrderResponse{}, malformed("deposit slow order response length mismatch: %d bytes, want 9", len(d.Payload))
	}
	return SlowOrderResponse{BaseFee: binary.BigEndian.Uint64(d.Payload[1:9])}, nil
}

// Encode serializes the deposit into its tagged canonical byte form.
// Amount must fit in 32 bytes, and the nested payload in the u16 length
// prefix; it panics otherwise rather than truncate.
func (d Deposit) Encode() []byte {
	if len(d.Payload) > math.MaxUint16 {
		panic(fmt.Sprintf("messages: deposit payload %d bytes exceeds u16 length prefix", len(d.Payload)))
	}
	out := make([]byte, depositFixedLen+len(d.Payload))
	out[0] = TagDeposit
	copy(out[1:33], d.TokenAddress[:])
	if d.Amount != nil {
		d.Amount.FillBytes(out[33:65])
	}
	binary.BigEndian.PutUint32(out[65:69], d.SourceDomain)
	binary.BigEndian.PutUint32(out[69:73], d.DestinationDomain)
	binary.BigEndian.PutUint64(out[73:81], d.DepositNonce)
	copy(out[81:113], d.BurnSource[:])
	copy(out[113:145], d.MintRecipient[:])
	binary.BigEndian.PutUint16(out[145:147], uint16(len(d.Payload)))
	copy(out[depositFixedLen:], d.Payload)
	return out
}

// EncodeDepositFill builds the nested deposit payload bytes for a fill.
func EncodeDepositFill(f Fill) []byte {
	out := make([]byte, 1+f.encodedLen())
	out[0] = DepositPayloadFill
	f.encodeBody(out[1:])
	return out
}

// EncodeDepositSlowOrderResponse builds the nested deposit payload
// bytes for a slow order response.
func EncodeDepositSlowOrderResponse(r SlowOrderResponse) []byte {
	out := make([]byte, 9)
	out[0] = DepositPayloadSlowOrderResponse
	binary.BigEndian.PutUint64(out[1:9], r.BaseFee)
	return out
}
