// Package iostore is for persisting test records, outcomes and fail records.
package iostore

import (
	"sync"

	"github.com/mfglab/yieldline/internal/contract"
)

// StoreManagerImpl manages the three persistence stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	records      contract.RecordStore
	outcomes     contract.OutcomeStore
	fails        contract.FailStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetRecordStore returns the raw test-record store.
func (mgr *StoreManagerImpl) GetRecordStore() contract.RecordStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.records
}

// GetOutcomeStore returns the derived outcome store.
func (mgr *StoreManagerImpl) GetOutcomeStore() contract.OutcomeStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.outcomes
}

// GetFailStore returns the categorized fail-record store.
func (mgr *StoreManagerImpl) GetFailStore() contract.FailStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.fails
}
