package storage

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
)

// Event audit trail: settlement events are appended under
// lexicographically sorted keys so the most recent N can be scanned
// backwards for the API's recent-events endpoint.

var eventCounter uint64

func eventKey() []byte {
	n := atomic.AddUint64(&eventCounter, 1)
	// Both parts zero-padded so same-nanosecond writes still sort in
	// append order.
	return []byte(fmt.Sprintf("%s%020d:%010d", prefixEvent, time.Now().UnixNano(), n))
}

// AppendEvent records one serialized event. Audit writes use NoSync;
// losing the tail on crash is acceptable for an index feed.
func (s *PebbleStore) AppendEvent(payload []byte) error {
	if err := s.db.Set(eventKey(), payload, pebble.NoSync); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit serialized events, newest first.
func (s *PebbleStore) RecentEvents(limit int) ([][]byte, error) {
	prefix := []byte(prefixEvent)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	defer iter.Close()

	var out [][]byte
	for iter.Last(); iter.Valid() && len(out) < limit; iter.Prev() {
		val := make([]byte, len(iter.Value()))
		copy(val, iter.Value())
		out = append(out, val)
	}
	return out, nil
}
