package entry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	"timeclock/pkg/platform/sentinel"
)

// InMemory is a process-local entry store for unit tests and single-node use.
// It mirrors the PostgreSQL store's guarantees, including the partial-unique
// guards on active rows, so services behave identically against either.
type InMemory struct {
	mu          sync.RWMutex
	entries     map[int64]*models.TimeEntry
	breaks      map[int64]*models.BreakPeriod
	nextEntryID int64
	nextBreakID int64
}

// NewInMemory constructs an empty in-memory entry store.
func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[int64]*models.TimeEntry),
		breaks:  make(map[int64]*models.BreakPeriod),
	}
}

func (s *InMemory) Create(_ context.Context, e *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Status == models.EntryStatusActive {
		for _, existing := range s.entries {
			if existing.UserID == e.UserID && existing.Status == models.EntryStatusActive {
				return fmt.Errorf("create entry: active entry exists for user: %w", sentinel.ErrConflict)
			}
		}
	}

	s.nextEntryID++
	e.ID = s.nextEntryID
	s.entries[e.ID] = copyEntry(e)
	return nil
}

func (s *InMemory) Update(_ context.Context, e *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; !ok {
		return fmt.Errorf("update entry: %w", sentinel.ErrNotFound)
	}
	s.entries[e.ID] = copyEntry(e)
	return nil
}

// Delete removes the entry and, by ownership, its breaks. Audit rows live in
// a separate store and are untouched.
func (s *InMemory) Delete(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entryID]; !ok {
		return fmt.Errorf("delete entry: %w", sentinel.ErrNotFound)
	}
	delete(s.entries, entryID)
	for breakID, b := range s.breaks {
		if b.TimeEntryID == entryID {
			delete(s.breaks, breakID)
		}
	}
	return nil
}

func (s *InMemory) FindActiveByUser(_ context.Context, userID id.UserID) (*models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.UserID == userID && e.Status == models.EntryStatusActive {
			return s.hydrate(e), nil
		}
	}
	return nil, fmt.Errorf("find active entry: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByUUID(_ context.Context, entryID id.EntryID) (*models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.UUID == entryID {
			return s.hydrate(e), nil
		}
	}
	return nil, fmt.Errorf("find entry by uuid: %w", sentinel.ErrNotFound)
}

func (s *InMemory) CreateBreak(_ context.Context, b *models.BreakPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[b.TimeEntryID]; !ok {
		return fmt.Errorf("create break: entry missing: %w", sentinel.ErrNotFound)
	}
	if b.Status == models.BreakStatusActive {
		for _, existing := range s.breaks {
			if existing.TimeEntryID == b.TimeEntryID && existing.Status == models.BreakStatusActive {
				return fmt.Errorf("create break: active break exists for entry: %w", sentinel.ErrConflict)
			}
		}
	}

	s.nextBreakID++
	b.ID = s.nextBreakID
	s.breaks[b.ID] = copyBreak(b)
	return nil
}

func (s *InMemory) UpdateBreak(_ context.Context, b *models.BreakPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.breaks[b.ID]; !ok {
		return fmt.Errorf("update break: %w", sentinel.ErrNotFound)
	}
	s.breaks[b.ID] = copyBreak(b)
	return nil
}

// List returns entries matching the filter ordered by clock-in time
// descending, plus the unpaginated total.
func (s *InMemory) List(_ context.Context, filter models.EntryFilter) ([]*models.TimeEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.TimeEntry
	for _, e := range s.entries {
		if !s.matches(e, filter) {
			continue
		}
		matched = append(matched, s.hydrate(e))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ClockInTime.After(matched[j].ClockInTime)
	})

	total := len(matched)
	if filter.Limit > 0 {
		if filter.Offset >= total {
			return []*models.TimeEntry{}, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > total {
			end = total
		}
		matched = matched[filter.Offset:end]
	}
	return matched, total, nil
}

func (s *InMemory) matches(e *models.TimeEntry, filter models.EntryFilter) bool {
	if filter.UserID != nil && e.UserID != *filter.UserID {
		return false
	}
	if !filter.Start.IsZero() && e.ClockInTime.Before(filter.Start) {
		return false
	}
	if !filter.End.IsZero() && !e.ClockInTime.Before(filter.End) {
		return false
	}
	return true
}

// hydrate returns a deep copy with breaks attached, ordered by start time.
func (s *InMemory) hydrate(e *models.TimeEntry) *models.TimeEntry {
	out := copyEntry(e)
	for _, b := range s.breaks {
		if b.TimeEntryID == e.ID {
			out.Breaks = append(out.Breaks, copyBreak(b))
		}
	}
	sort.Slice(out.Breaks, func(i, j int) bool {
		return out.Breaks[i].StartTime.Before(out.Breaks[j].StartTime)
	})
	return out
}

func copyEntry(e *models.TimeEntry) *models.TimeEntry {
	out := *e
	out.Breaks = nil
	if e.ClockOutTime != nil {
		t := *e.ClockOutTime
		out.ClockOutTime = &t
	}
	return &out
}

func copyBreak(b *models.BreakPeriod) *models.BreakPeriod {
	out := *b
	if b.EndTime != nil {
		t := *b.EndTime
		out.EndTime = &t
	}
	return &out
}
