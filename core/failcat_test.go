package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
	"github.com/mfglab/yieldline/schema"
)

func newTestFailStore(t *testing.T) contract.FailStore {
	t.Helper()
	store, err := iostore.NewFailStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCategoryKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FS Probe Cal;Digital OS Test", "FS^^Probe^^Cal"},
		{"DisplayPowerOn", "DisplayPowerOn"},
		{" Leak Test ", "Leak^^Test"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, categoryKey(tc.input))
	}
}

func TestLoadCategoryLookup(t *testing.T) {
	path := writeCSVFile(t, "config.csv", [][]string{
		{"Key", "Category", "Sub Category", "Sub Sub Category"},
		{"FS^^Probe^^Cal", "Probe", "FSProbe Cal", "Calibration"},
		{"DisplayPowerOn", "Display", "DisplayPowerOn", "Power"},
		{"", "Ignored", "Ignored", "Ignored"},
	})

	lookup, err := LoadCategoryLookup(path)
	require.NoError(t, err)
	require.Len(t, lookup, 2)
	assert.Equal(t, "FSProbe Cal", lookup["FS^^Probe^^Cal"].SubCategory)
	assert.Equal(t, "Display", lookup["DisplayPowerOn"].Category)
}

func TestLoadCategoryLookup_MissingKeyColumn(t *testing.T) {
	path := writeCSVFile(t, "config.csv", [][]string{{"Category"}, {"Probe"}})

	_, err := LoadCategoryLookup(path)
	assert.Error(t, err)
}

func failExportRows() [][]string {
	return [][]string{
		{"SerialNumber", "Test Pass/Fail Status", "EndTime", "Version", "List of Failing Tests",
			"CARRIER_PN", "FIXTURE_ID", "CARRIER_TOTAL_TEST", "CARRIER_UNIT_FAIL"},
		{"SN1", "FAIL", "2026-05-10 08:30:00", "2.0.1", "FS Probe Cal;Digital OS Test", "CAR-1", "100101", "12", "2"},
		{"SN2", "PASS", "2026-05-10 09:00:00", "2.0.1", "", "CAR-1", "100102", "12", "0"},
		{"SN3", "FAIL", "2026-05-10 09:30:00", "2.0.1", "UnmappedTest", "CAR-2", "100103", "", ""},
	}
}

func TestIngestFailFile(t *testing.T) {
	store := newTestFailStore(t)
	lookup := CategoryLookup{
		"FS^^Probe^^Cal": {Category: "Probe", SubCategory: "FSProbe Cal", SubSubCategory: "Calibration"},
	}
	path := writeCSVFile(t, "fail_export.csv", failExportRows())

	report, err := IngestFailFile(store, path, lookup)
	require.NoError(t, err)

	// PASS rows are filtered before categorization
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Dropped)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	all, err := store.AllFailRecords()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FSProbe Cal", all[0].SubCategory)
	assert.Equal(t, 12, all[0].CarrierTotalTest)

	// Unmapped key leaves the taxonomy empty
	assert.Equal(t, "", all[1].Category)
	assert.Equal(t, 0, all[1].CarrierTotalTest)
}

func TestIngestFailFile_Reingest(t *testing.T) {
	store := newTestFailStore(t)
	lookup := CategoryLookup{}

	path := writeCSVFile(t, "fail_export.csv", failExportRows())
	_, err := IngestFailFile(store, path, lookup)
	require.NoError(t, err)

	path = writeCSVFile(t, "fail_export.csv", failExportRows())
	report, err := IngestFailFile(store, path, lookup)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 2, report.Duplicate)
}

func seedFailRow(t *testing.T, store contract.FailStore, serial, subCategory, fixture, carrier string, endTime time.Time) {
	t.Helper()
	_, err := store.AppendFailRecord(schema.FailRecord{
		SerialNumber:  serial,
		Status:        "FAIL",
		EndTime:       endTime,
		FailingTests:  "x",
		CarrierSerial: carrier,
		FixtureID:     fixture,
		SubCategory:   subCategory,
	})
	require.NoError(t, err)
}

func TestTopFailCategories(t *testing.T) {
	records := newTestRecordStore(t)
	fails := newTestFailStore(t)
	base := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	// Ten attempts in the canonical table; SN9 is a confirmed failure
	for i := range 10 {
		serial := "SN" + string(rune('0'+i))
		result := "PASS"
		if serial == "SN9" {
			result = "FAIL"
		}
		_, err := records.AppendRecord(schema.TestRecord{
			SerialNumber: serial,
			Result:       result,
			StopTime:     base.Add(time.Duration(i) * time.Minute),
			TestStation:  "TSP-E",
			FixtureID:    "FX-01",
		})
		require.NoError(t, err)
	}

	seedFailRow(t, fails, "SN1", "FSProbe Cal", "100101", "CAR-1", base.Add(time.Hour))
	seedFailRow(t, fails, "SN2", "FSProbe Cal", "100101", "CAR-2", base.Add(2*time.Hour))
	seedFailRow(t, fails, "SN2", "DisplayPowerOn", "100102", "CAR-2", base.Add(3*time.Hour)) // dup serial, ignored
	seedFailRow(t, fails, "SN3", "DisplayPowerOn", "100102", "CAR-1", base.Add(4*time.Hour))
	seedFailRow(t, fails, "SN9", "FSProbe Cal", "100103", "CAR-3", base.Add(5*time.Hour)) // confirmed fail, excluded

	counts, err := TopFailCategories(records, fails, base, base.Add(24*time.Hour), 6)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, "FSProbe Cal", counts[0].Value)
	assert.Equal(t, 2, counts[0].Count)
	assert.InDelta(t, 20.0, counts[0].Rate, 1e-9) // 2 of 10 attempts
	assert.Equal(t, "DisplayPowerOn", counts[1].Value)
	assert.Equal(t, 1, counts[1].Count)

	fixtures, err := CountsForCategory(records, fails, schema.DimFixture, "FSProbe Cal", base, base.Add(24*time.Hour), 6)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, schema.RankedCount{Value: "100101", Count: 2}, fixtures[0])

	carriers, err := CountsForCategory(records, fails, schema.DimCarrier, "FSProbe Cal", base, base.Add(24*time.Hour), 6)
	require.NoError(t, err)
	require.Len(t, carriers, 2)

	_, err = CountsForCategory(records, fails, schema.DimFailure, "FSProbe Cal", base, base.Add(24*time.Hour), 6)
	assert.Error(t, err)
}
