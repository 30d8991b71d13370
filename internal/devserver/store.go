package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Analysis is one stored result
type Analysis struct {
	ID         string
	Filename   string
	UploadedAt time.Time
	Total      float64
	Average    float64
	UsedColumn string
	DateColumn string
	Chart      []byte
}

// Store keeps analyses in memory
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*Analysis
	now     func() time.Time
	nextSeq uint64
	seq     map[string]uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Analysis),
		seq:  make(map[string]uint64),
		now:  time.Now,
	}
}

// Add stores a copy of a, assigning its ID and upload time
func (s *Store) Add(a Analysis) *Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.NewString()
	a.UploadedAt = s.now()
	s.nextSeq++
	s.byID[a.ID] = &a
	s.seq[a.ID] = s.nextSeq

	stored := a
	return &stored
}

// List returns up to limit analyses, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) []Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Analysis, 0, len(s.byID))
	for _, a := range s.byID {
		items = append(items, *a)
	}
	// Insertion order breaks ties between equal timestamps
	sort.Slice(items, func(i, j int) bool {
		if !items[i].UploadedAt.Equal(items[j].UploadedAt) {
			return items[i].UploadedAt.After(items[j].UploadedAt)
		}
		return s.seq[items[i].ID] > s.seq[items[j].ID]
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Get returns a copy of the analysis with the given ID
func (s *Store) Get(id string) (*Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	found := *a
	return &found, true
}

// Delete removes an analysis and reports whether it existed
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.seq, id)
	return true
}

// Len returns the number of stored analyses
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
