package turnlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps a bounded window of recent turns in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []TurnRecord
	max     int
}

func NewInMemoryStore(max int) *InMemoryStore {
	if max <= 0 {
		max = 200
	}
	return &InMemoryStore{max: max}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	if len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

// RecentTurns returns up to limit records, newest first.
func (s *InMemoryStore) RecentTurns(_ context.Context, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.records)
	if limit > n {
		limit = n
	}
	out := make([]TurnRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
