package iostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/schema"
)

func testFailRecord(serial string, endTime time.Time) schema.FailRecord {
	return schema.FailRecord{
		SerialNumber:     serial,
		Status:           "FAIL",
		EndTime:          endTime,
		SWVersion:        "2.0.1",
		FailingTests:     "leak test;voltage check",
		CarrierSerial:    "CAR-9",
		FixtureID:        "FX-01",
		CarrierTotalTest: 12,
		CarrierUnitFail:  2,
		Category:         "Sealing",
		SubCategory:      "Gasket",
		SubSubCategory:   "Upper",
	}
}

func TestFailStore_AppendAndDedup(t *testing.T) {
	store, err := NewFailStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	endTime := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	rec := testFailRecord("SN1", endTime)

	inserted, err := store.AppendFailRecord(rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.AppendFailRecord(rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Same serial at a different end time is a distinct categorization
	later := testFailRecord("SN1", endTime.Add(time.Hour))
	inserted, err = store.AppendFailRecord(later)
	require.NoError(t, err)
	assert.True(t, inserted)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TableSizes[failsTable])
}

func TestFailStore_RecordsInWindow(t *testing.T) {
	store, err := NewFailStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	_, err = store.AppendFailRecord(testFailRecord("SN1", base.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = store.AppendFailRecord(testFailRecord("SN2", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = store.AppendFailRecord(testFailRecord("SN3", base.Add(48*time.Hour)))
	require.NoError(t, err)

	records, err := store.RecordsInWindow(base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// End time ascending
	assert.Equal(t, "SN2", records[0].SerialNumber)
	assert.Equal(t, "SN1", records[1].SerialNumber)
	assert.Equal(t, "Sealing", records[0].Category)
	assert.Equal(t, 12, records[0].CarrierTotalTest)

	all, err := store.AllFailRecords()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Clear())
	all, err = store.AllFailRecords()
	require.NoError(t, err)
	assert.Empty(t, all)
}
