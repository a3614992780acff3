// Package iocache persists load outcomes for diagnostics.
package iocache

import (
	"sync"

	"github.com/huangsam/assetload/internal/contract"
)

// JournalStoreManager owns the process-wide journal store.
type JournalStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	journal      contract.JournalStore
}

var _ contract.StoreManager = &JournalStoreManager{} // Compile-time check

// GetJournalStore returns the journal store, or nil before InitStores.
func (mgr *JournalStoreManager) GetJournalStore() contract.JournalStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.journal
}
