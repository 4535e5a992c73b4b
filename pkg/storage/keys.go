package storage

import "github.com/wormhole-foundation/example-liquidity-layer-sub001/pkg/messages"

// Pebble key schema. Digest-keyed records use distinct prefixes to
// avoid collisions:
//
//	auc:<32-byte digest> → Auction
//	por:<32-byte digest> → PreparedOrderResponse
//	evt:<20-digit seq>   → settlement event (audit ring)
const (
	prefixAuction  = "auc:"
	prefixPrepared = "por:"
	prefixEvent    = "evt:"
)

func auctionKey(digest messages.Digest) []byte {
	return append([]byte(prefixAuction), digest[:]...)
}

func preparedKey(digest messages.Digest) []byte {
	return append([]byte(prefixPrepared), digest[:]...)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
