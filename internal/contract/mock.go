package contract

import (
	"context"

	"github.com/huangsam/assetload/schema"
	"github.com/stretchr/testify/mock"
)

// MockPrefetchAdapter is a mock implementation of PrefetchAdapter for testing.
type MockPrefetchAdapter struct {
	mock.Mock
}

var _ PrefetchAdapter = &MockPrefetchAdapter{} // Compile-time check

// Prefetch implements the PrefetchAdapter interface.
func (m *MockPrefetchAdapter) Prefetch(ctx context.Context, uri string) error {
	ret := m.Called(ctx, uri)
	return ret.Error(0)
}

// MockJournalStore is a mock implementation of JournalStore for testing.
type MockJournalStore struct {
	mock.Mock
}

var _ JournalStore = &MockJournalStore{} // Compile-time check

// Record implements the JournalStore interface.
func (m *MockJournalStore) Record(rec schema.JournalRecord) error {
	ret := m.Called(rec)
	return ret.Error(0)
}

// GetAllRecords implements the JournalStore interface.
func (m *MockJournalStore) GetAllRecords() ([]schema.JournalRecord, error) {
	ret := m.Called()
	records, _ := ret.Get(0).([]schema.JournalRecord)
	return records, ret.Error(1)
}

// GetStatus implements the JournalStore interface.
func (m *MockJournalStore) GetStatus() (schema.JournalStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.JournalStatus), ret.Error(1)
}

// Close implements the JournalStore interface.
func (m *MockJournalStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
