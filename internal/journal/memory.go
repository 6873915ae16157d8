package journal

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is a Repository kept in process memory. It backs the board when
// the sqlite journal is disabled.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	ids     map[string]bool
	orders  map[int][]int
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{ids: map[string]bool{}, orders: map[int][]int{}}
}

func (m *Memory) Append(_ context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids[entry.ID] {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidEntry, entry.ID)
	}
	m.ids[entry.ID] = true
	entry.Labels = slices.Clone(entry.Labels)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) Recent(_ context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if filter.ProjectID != 0 && e.ProjectID != filter.ProjectID {
			continue
		}
		if filter.IID != 0 && e.IID != filter.IID {
			continue
		}
		e.Labels = slices.Clone(e.Labels)
		out = append(out, e)
	}
	// Appends arrive in time order; a stable sort keeps ties newest first.
	slices.SortStableFunc(out, func(a, b Entry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) SaveOrder(_ context.Context, projectID int, iids []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[projectID] = slices.Clone(iids)
	return nil
}

func (m *Memory) LoadOrder(_ context.Context, projectID int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.orders[projectID]), nil
}
