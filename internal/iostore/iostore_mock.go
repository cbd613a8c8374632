package iostore

import (
	"github.com/stretchr/testify/mock"

	"github.com/mfglab/yieldline/internal/contract"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRecordStore implements the StoreManager interface.
func (m *MockStoreManager) GetRecordStore() contract.RecordStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecordStore)
	return store
}

// GetOutcomeStore implements the StoreManager interface.
func (m *MockStoreManager) GetOutcomeStore() contract.OutcomeStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.OutcomeStore)
	return store
}

// GetFailStore implements the StoreManager interface.
func (m *MockStoreManager) GetFailStore() contract.FailStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.FailStore)
	return store
}
