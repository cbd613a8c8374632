package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/internal/iostore"
	"github.com/mfglab/yieldline/schema"
)

// historyOf builds a newest-first history where the first result is the
// latest attempt.
func historyOf(results ...string) []schema.TestRecord {
	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	history := make([]schema.TestRecord, len(results))
	for i, result := range results {
		history[i] = schema.TestRecord{
			SerialNumber: "SN1",
			Result:       result,
			StopTime:     base.Add(-time.Duration(i) * time.Hour),
			TestStation:  "TSP-E",
		}
	}
	return history
}

func TestClassifyHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []schema.TestRecord
		want    schema.OutcomeState
	}{
		{"single pass", historyOf("PASS"), schema.OutcomePass},
		{"single fail", historyOf("FAIL"), schema.OutcomeTesting},
		{"single retest", historyOf("RETEST"), schema.OutcomeTesting},
		{"second attempt passed", historyOf("PASS", "FAIL"), schema.OutcomeRetest},
		{"third attempt passed", historyOf("PASS", "FAIL", "FAIL"), schema.OutcomeRetest},
		{"third attempt failed", historyOf("FAIL", "FAIL", "FAIL"), schema.OutcomeTesting},
		{"fourth attempt passed", historyOf("PASS", "FAIL", "FAIL", "FAIL"), schema.OutcomePass},
		{"fourth attempt failed", historyOf("FAIL", "FAIL", "FAIL", "FAIL"), schema.OutcomeFail},
		{"exhausted even with late pass", historyOf("PASS", "FAIL", "FAIL", "FAIL", "FAIL"), schema.OutcomeFail},
		{"empty history", nil, schema.OutcomeTesting},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyHistory(tc.history))
		})
	}
}

func TestClassifyOutcomes(t *testing.T) {
	records, err := iostore.NewRecordStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = records.Close() }()
	outcomes, err := iostore.NewOutcomeStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = outcomes.Close() }()

	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	attempts := []struct {
		serial string
		result string
		offset time.Duration
	}{
		{"SN1", "PASS", 0},
		{"SN2", "FAIL", 0},
		{"SN2", "PASS", time.Hour},
		{"SN3", "FAIL", 0},
	}
	for _, a := range attempts {
		_, err := records.AppendRecord(schema.TestRecord{
			SerialNumber: a.serial,
			Result:       a.result,
			StopTime:     base.Add(a.offset),
			TestStation:  "TSP-E",
			FixtureID:    "FX-01",
		})
		require.NoError(t, err)
	}

	report, err := ClassifyOutcomes(records, outcomes, "TSP-E")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Classified)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Counts[schema.OutcomePass])
	assert.Equal(t, 1, report.Counts[schema.OutcomeRetest])
	assert.Equal(t, 1, report.Counts[schema.OutcomeTesting])

	// The snapshot carries the most recent attempt's timestamp
	all, err := outcomes.AllOutcomes()
	require.NoError(t, err)
	for _, rec := range all {
		if rec.SerialNumber == "SN2" {
			assert.Equal(t, base.Add(time.Hour), rec.LastStopTime)
			assert.Equal(t, schema.OutcomeRetest, rec.Outcome)
		}
	}

	// A second run is a no-op: every serial already holds a snapshot
	report, err = ClassifyOutcomes(records, outcomes, "TSP-E")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Classified)
	assert.Equal(t, 3, report.Skipped)

	// Later attempts never rewrite an existing snapshot
	_, err = records.AppendRecord(schema.TestRecord{
		SerialNumber: "SN3",
		Result:       "PASS",
		StopTime:     base.Add(2 * time.Hour),
		TestStation:  "TSP-E",
		FixtureID:    "FX-01",
	})
	require.NoError(t, err)

	report, err = ClassifyOutcomes(records, outcomes, "TSP-E")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Classified)

	counts, err := outcomes.CountByOutcome("TSP-E", base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Input)
	assert.Equal(t, 1, counts.Testing)
}
