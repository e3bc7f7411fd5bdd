package storage

import (
	"context"
	"sync"

	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It keeps records in insertion order, making tests fast and isolated.
type MockRepository struct {
	mu      sync.Mutex
	records []exceptions.Record

	// Hooks for test assertions
	PutManyCalled       bool
	LastPut             []exceptions.Record
	UpdatePartialCalled bool
	DeleteCalled        bool
	ClearCalled         bool

	// Error injection for testing error paths
	GetAllErr        error
	PutManyErr       error
	UpdatePartialErr error
	DeleteErr        error
	ClearErr         error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository(seed ...exceptions.Record) *MockRepository {
	m := &MockRepository{}
	m.records = append(m.records, seed...)
	return m
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// GetAll returns a copy of every record, newest first
func (m *MockRepository) GetAll(ctx context.Context) ([]exceptions.Record, error) {
	return m.List(ctx, exceptions.Filter{})
}

// List filters the in-memory records
func (m *MockRepository) List(_ context.Context, filter exceptions.Filter) ([]exceptions.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}

	out := filter.Apply(m.records)
	exceptions.SortNewestFirst(out)
	return out, nil
}

// Get returns one record
func (m *MockRepository) Get(_ context.Context, id string) (*exceptions.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		r := m.records[i]
		return &r, nil
	}
	return nil, ErrNotFound
}

// PutMany upserts records by ID
func (m *MockRepository) PutMany(_ context.Context, records []exceptions.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutManyCalled = true
	m.LastPut = records
	if m.PutManyErr != nil {
		return m.PutManyErr
	}

	for _, r := range records {
		if i := m.indexOf(r.ID); i >= 0 {
			m.records[i] = r
			continue
		}
		m.records = append(m.records, r)
	}
	return nil
}

// UpdatePartial patches one record
func (m *MockRepository) UpdatePartial(_ context.Context, id string, patch exceptions.Patch) (*exceptions.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePartialCalled = true
	if m.UpdatePartialErr != nil {
		return nil, m.UpdatePartialErr
	}

	i := m.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	patch.Apply(&m.records[i])
	r := m.records[i]
	return &r, nil
}

// Delete removes one record
func (m *MockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalled = true
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return nil
}

// Clear removes every record
func (m *MockRepository) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalled = true
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.records = nil
	return nil
}

// Len returns the number of stored records
func (m *MockRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MockRepository) indexOf(id string) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
