package messages

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UniversalAddress is the 32-byte address form carried in cross-chain
// payloads. EVM addresses are left-padded with zeros; other chains use
// the full 32 bytes.
type UniversalAddress [32]byte

// Digest is the double-keccak digest of an attested message. It is the
// primary key for auctions and custody records.
type Digest [32]byte

func (a UniversalAddress) Hex() string { return hexutil.Encode(a[:]) }
func (a UniversalAddress) IsZero() bool {
	return a == UniversalAddress{}
}

func (d Digest) Hex() string { return hexutil.Encode(d[:]) }

// AddressFromHex parses a 0x-prefixed hex string into a UniversalAddress.
// Shorter inputs are left-padded (EVM convention).
func AddressFromHex(s string) (UniversalAddress, error) {
	var out UniversalAddress
	raw, err := hexutil.Decode(s)
	if err != nil {
		return out, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) > 32 {
		return out, fmt.Errorf("address %q longer than 32 bytes", s)
	}
	copy(out[32-len(raw):], raw)
	return out, nil
}

// DigestFromHex parses a 0x-prefixed 32-byte hex string.
func DigestFromHex(s string) (Digest, error) {
	var out Digest
	raw, err := hexutil.Decode(s)
	if err != nil {
		return out, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("digest %q must be 32 bytes, got %d", s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
