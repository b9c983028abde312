// Package iocache is for durable storage: daily records, profiles and the
// optional SQL scan history.
package iocache

import (
	"sync"

	"github.com/huangsam/dailyxp/internal/contract"
)

// StoreManager manages the record, profile and history stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	records      contract.RecordStore
	profiles     contract.ProfileStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wires explicit stores, mainly for tests and embedding.
func NewStoreManager(records contract.RecordStore, profiles contract.ProfileStore, history contract.HistoryStore) *StoreManager {
	return &StoreManager{records: records, profiles: profiles, history: history}
}

// GetRecordStore returns the daily record store.
func (mgr *StoreManager) GetRecordStore() contract.RecordStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.records
}

// GetProfileStore returns the profile store.
func (mgr *StoreManager) GetProfileStore() contract.ProfileStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.profiles
}

// GetHistoryStore returns the scan history store.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
