package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/internal/iostore"
	"github.com/mfglab/yieldline/schema"
)

// TestIngestClassifyPipeline follows one unit from a raw export through
// classification: four attempts ending in a PASS make a recovered unit a PASS
// on its final allowed attempt, and a later fifth attempt never reopens the
// snapshot.
func TestIngestClassifyPipeline(t *testing.T) {
	records := newTestRecordStore(t)
	outcomes, err := iostore.NewOutcomeStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = outcomes.Close() }()

	payload := func(result string, hour int) []string {
		doc := fmt.Sprintf(
			`{"fixture_id":"FX-01","stop_time":"2026-05-10 %02d:00:00","result":"%s","serial_number":"SN001","sw_version":"1.0.0","failure_message":"","Carrier_sn":"CAR-1","test_station":"TSP-E"}`,
			hour, result)
		return []string{doc}
	}

	rows := [][]string{
		{"数据信息"},
		payload("FAIL", 8),
		payload("FAIL", 9),
		payload("FAIL", 10),
		payload("PASS", 11),
	}
	path := writeCSVFile(t, "tsp_export.csv", rows)

	report, err := IngestFile(records, path, "")
	require.NoError(t, err)
	require.Equal(t, 4, report.Inserted)

	classifyReport, err := ClassifyOutcomes(records, outcomes, "TSP-E")
	require.NoError(t, err)
	assert.Equal(t, 1, classifyReport.Classified)

	all, err := outcomes.AllOutcomes()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "SN001", all[0].SerialNumber)
	assert.Equal(t, schema.OutcomePass, all[0].Outcome)
	assert.Equal(t, time.Date(2026, 5, 10, 11, 0, 0, 0, time.UTC), all[0].LastStopTime)

	// A straggler fifth attempt arrives later; the snapshot stands
	path = writeCSVFile(t, "tsp_export.csv", [][]string{{"数据信息"}, payload("FAIL", 12)})
	_, err = IngestFile(records, path, "")
	require.NoError(t, err)

	classifyReport, err = ClassifyOutcomes(records, outcomes, "TSP-E")
	require.NoError(t, err)
	assert.Equal(t, 0, classifyReport.Classified)
	assert.Equal(t, 1, classifyReport.Skipped)

	summary, err := GetYieldSummary(outcomes, "TSP-E",
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.InputCount)
	assert.Equal(t, 1, summary.PassCount)
	assert.InDelta(t, 1.0, summary.PassRate, 1e-9)
}
