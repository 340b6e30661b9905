package store

import (
	"sync"

	"chatlog-insights-go/internal/dataset"
	"chatlog-insights-go/internal/logger"
	"chatlog-insights-go/internal/types"
)

// Store holds the current normalized record collection. Uploads replace
// the collection wholesale; concurrent uploads serialize on the mutex so
// readers only ever observe a complete collection, never an interleaved
// one.
type Store struct {
	mu      sync.RWMutex
	records []types.LogRecord
}

func New() *Store {
	return &Store{}
}

// Ingest parses the uploaded bytes and, only on success, swaps in the
// new collection. A *dataset.ParseError leaves the previous snapshot
// untouched. Returns the size of the new collection.
func (s *Store) Ingest(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := dataset.Ingest(data)
	if err != nil {
		return 0, err
	}
	s.records = records
	logger.New().WithField("component", "store").WithField("records", len(records)).Info("collection replaced")
	return len(records), nil
}

// Snapshot returns the current collection. Callers must treat the slice
// as read-only; it is shared with every other reader of this snapshot.
func (s *Store) Snapshot() []types.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}
