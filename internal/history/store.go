package history

import (
	"context"
	"sync"
	"time"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// Lister fetches the full history sequence from the service
type Lister interface {
	ListHistory(ctx context.Context) ([]api.HistoryRecord, error)
}

// Store holds the last successfully fetched history. The sequence is only
// ever replaced wholesale by Refresh.
type Store struct {
	mu        sync.RWMutex
	lister    Lister
	records   []api.HistoryRecord
	fetchedAt time.Time
	loaded    bool
}

// NewStore creates an empty store backed by lister
func NewStore(lister Lister) *Store {
	return &Store{
		lister:  lister,
		records: []api.HistoryRecord{},
	}
}

// Refresh replaces the stored sequence with the lister's result. On error
// the stored sequence is left as it was.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.lister.ListHistory(ctx)
	if err != nil {
		return err
	}

	next := cloneRecords(records)

	s.mu.Lock()
	s.records = next
	s.fetchedAt = time.Now()
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Records returns a copy of the stored sequence in server order
func (s *Store) Records() []api.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRecords(s.records)
}

func cloneRecords(records []api.HistoryRecord) []api.HistoryRecord {
	out := make([]api.HistoryRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FetchedAt returns the time of the last successful refresh and whether one happened
func (s *Store) FetchedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt, s.loaded
}
