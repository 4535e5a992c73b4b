package messages

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// rawHeaderLen is the fixed size of the provenance envelope before the
// tagged payload begins.
const rawHeaderLen = 4 + 4 + 2 + 32 + 8 + 1

// RawMessage is the provenance envelope of an attested cross-chain
// message: who emitted it, in what order, and the tagged payload the
// auction engine interprets. Signature material is stripped by the
// attestation transport before the engine ever sees the bytes; the
// engine only trusts a RawMessage after the attestation gate passed
// for its digest.
type RawMessage struct {
	Timestamp        uint32
	Nonce            uint32
	EmitterChain     uint16
	EmitterAddress   UniversalAddress
	Sequence         uint64
	ConsistencyLevel uint8

	// Payload borrows the caller's buffer; it is not copied.
	Payload []byte
}

// ParseRawMessage decodes the provenance envelope. The payload slice
// aliases buf.
func ParseRawMessage(buf []byte) (RawMessage, error) {
	if len(buf) < rawHeaderLen {
		return RawMessage{}, malformed("envelope too short: %d bytes, need at least %d", len(buf), rawHeaderLen)
	}
	var m RawMessage
	m.Timestamp = binary.BigEndian.Uint32(buf[0:4])
	m.Nonce = binary.BigEndian.Uint32(buf[4:8])
	m.EmitterChain = binary.BigEndian.Uint16(buf[8:10])
	copy(m.EmitterAddress[:], buf[10:42])
	m.Sequence = binary.BigEndian.Uint64(buf[42:50])
	m.ConsistencyLevel = buf[50]
	m.Payload = buf[rawHeaderLen:]
	return m, nil
}

// Encode serializes the envelope into its canonical byte form.
func (m RawMessage) Encode() []byte {
	out := make([]byte, rawHeaderLen+len(m.Payload))
	binary.BigEndian.PutUint32(out[0:4], m.Timestamp)
	binary.BigEndian.PutUint32(out[4:8], m.Nonce)
	binary.BigEndian.PutUint16(out[8:10], m.EmitterChain)
	copy(out[10:42], m.EmitterAddress[:])
	binary.BigEndian.PutUint64(out[42:50], m.Sequence)
	out[50] = m.ConsistencyLevel
	copy(out[rawHeaderLen:], m.Payload)
	return out
}

// ComputeDigest returns the double-keccak digest over the canonical
// encoding. Every party (solver, engine, auditor) must derive the same
// value, so the encoding here is the single source of truth.
func (m RawMessage) ComputeDigest() Digest {
	var d Digest
	copy(d[:], crypto.Keccak256(crypto.Keccak256(m.Encode())))
	return d
}
