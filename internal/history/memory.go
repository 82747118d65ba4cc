package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node runs
// without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[string][]Record{}}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.LearnerID] = append(s.recs[rec.LearnerID], rec)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, learnerID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := append([]Record(nil), s.recs[learnerID]...)
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
