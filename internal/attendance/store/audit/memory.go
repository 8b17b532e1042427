package audit

import (
	"context"
	"sort"
	"sync"

	"timeclock/internal/attendance/models"
)

// InMemory is an append-only audit store for unit tests and single-node use.
// Rows are never mutated or deleted; they survive entry deletion.
type InMemory struct {
	mu      sync.RWMutex
	entries map[int64][]*models.AuditEntry
	nextID  int64
}

// NewInMemory constructs an empty in-memory audit store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[int64][]*models.AuditEntry)}
}

func (s *InMemory) Append(_ context.Context, a *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	a.ID = s.nextID
	stored := *a
	s.entries[a.TimeEntryID] = append(s.entries[a.TimeEntryID], &stored)
	return nil
}

// ListByEntry returns all audit rows for an entry, most recent first.
func (s *InMemory) ListByEntry(_ context.Context, timeEntryID int64) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.entries[timeEntryID]
	out := make([]*models.AuditEntry, 0, len(rows))
	for _, a := range rows {
		copied := *a
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
