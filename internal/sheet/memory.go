package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Table used by tests and local development.
type Memory struct {
	mu     sync.RWMutex
	header []string
	rows   [][]string

	// FailWith, when set, makes every operation return this error.
	FailWith error
}

// NewMemory creates a Memory table with the given header and no data rows.
func NewMemory(header ...string) *Memory {
	return &Memory{header: append([]string(nil), header...)}
}

// Seed appends a data row without error handling, for test fixtures.
func (m *Memory) Seed(row ...string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append([]string(nil), row...))
	return m
}

func (m *Memory) Records(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]Record, 0, len(m.rows))
	for _, row := range m.rows {
		rec := make(Record, len(m.header))
		for i, key := range m.header {
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) Values(ctx context.Context) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([][]string, 0, len(m.rows)+1)
	out = append(out, append([]string(nil), m.header...))
	for _, row := range m.rows {
		out = append(out, append([]string(nil), row...))
	}
	return out, nil
}

func (m *Memory) Header(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return append([]string(nil), m.header...), nil
}

func (m *Memory) Append(ctx context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.rows = append(m.rows, append([]string(nil), row...))
	return nil
}

func (m *Memory) UpdateCell(ctx context.Context, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if row < 2 || row-2 >= len(m.rows) {
		return fmt.Errorf("sheet: row %d out of range", row)
	}
	target := m.rows[row-2]
	if col < 1 || col > len(target) {
		return fmt.Errorf("sheet: column %d out of range", col)
	}
	target[col-1] = value
	return nil
}
