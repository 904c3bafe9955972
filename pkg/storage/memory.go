package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// Memory is an in-process Store, the default for tests and embedding.
type Memory struct {
	mu      sync.RWMutex
	reports map[string]*core.AnalysisReport
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{reports: make(map[string]*core.AnalysisReport)}
}

func (m *Memory) Set(_ context.Context, gameID string, report *core.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[gameID] = report
	return nil
}

func (m *Memory) Get(_ context.Context, gameID string) (*core.AnalysisReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.reports[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return report, nil
}

func (m *Memory) Has(_ context.Context, gameID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.reports[gameID]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, gameID)
	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.reports))
	for id := range m.reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
