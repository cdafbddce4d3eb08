// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	calcs []generic.Calculation // ordered by CreatedAt
	byID  map[string]int
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

// Save adds a calculation. Append-only.
func (m *Memory) Save(_ context.Context, c generic.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[c.ID]; ok {
		return fmt.Errorf("calculation %s already exists", c.ID)
	}

	// Binary search for insertion point
	i := sort.Search(len(m.calcs), func(i int) bool {
		return m.calcs[i].CreatedAt.After(c.CreatedAt)
	})
	m.calcs = append(m.calcs, generic.Calculation{})
	copy(m.calcs[i+1:], m.calcs[i:])
	m.calcs[i] = c
	m.reindexLocked()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (generic.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return generic.Calculation{}, generic.ErrCalculationNotFound
	}
	return m.calcs[i], nil
}

func (m *Memory) List(_ context.Context, limit int) ([]generic.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Calculation
	for i := len(m.calcs) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		result = append(result, m.calcs[i])
	}
	return result, nil
}

func (m *Memory) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cut := sort.Search(len(m.calcs), func(i int) bool {
		return !m.calcs[i].CreatedAt.Before(t)
	})
	m.calcs = append([]generic.Calculation(nil), m.calcs[cut:]...)
	m.reindexLocked()
	return int64(cut), nil
}

func (m *Memory) reindexLocked() {
	m.byID = make(map[string]int, len(m.calcs))
	for i, c := range m.calcs {
		m.byID[c.ID] = i
	}
}

var _ generic.Store = (*Memory)(nil)
