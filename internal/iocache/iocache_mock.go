package iocache

import (
	"github.com/huangsam/assetload/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetJournalStore implements the StoreManager interface.
func (m *MockStoreManager) GetJournalStore() contract.JournalStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.JournalStore)
	return store
}
