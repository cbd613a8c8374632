package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
	"github.com/mfglab/yieldline/schema"
)

func newTestOutcomeStore(t *testing.T) contract.OutcomeStore {
	t.Helper()
	store, err := iostore.NewOutcomeStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedOutcomes(t *testing.T, store contract.OutcomeStore, base time.Time, states []schema.OutcomeState) {
	t.Helper()
	for i, state := range states {
		err := store.AppendOutcome(schema.OutcomeRecord{
			SerialNumber: "SN" + string(rune('A'+i)),
			LastStopTime: base.Add(time.Duration(i) * time.Minute),
			Outcome:      state,
			TestStation:  "TSP-E",
		})
		require.NoError(t, err)
	}
}

func TestGetYieldSummary(t *testing.T) {
	store := newTestOutcomeStore(t)
	base := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	seedOutcomes(t, store, base, []schema.OutcomeState{
		schema.OutcomePass, schema.OutcomePass, schema.OutcomePass,
		schema.OutcomeFail,
		schema.OutcomeRetest,
		schema.OutcomeTesting,
	})

	summary, err := GetYieldSummary(store, "TSP-E", base, base.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 6, summary.InputCount)
	assert.Equal(t, 3, summary.PassCount)
	assert.InDelta(t, 0.5, summary.PassRate, 1e-9)
	assert.Equal(t, 1, summary.FailCount)
	assert.InDelta(t, 1.0/6.0, summary.FailRate, 1e-9)
	assert.Equal(t, 1, summary.RetestCount)
	assert.InDelta(t, 1.0/6.0, summary.RetestRate, 1e-9)
	assert.Equal(t, 1, summary.TestingCount)
}

func TestGetYieldSummary_EmptyWindow(t *testing.T) {
	store := newTestOutcomeStore(t)

	summary, err := GetYieldSummary(store, "TSP-E", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, schema.YieldSummary{}, summary)
}

func TestGetDailyTrend(t *testing.T) {
	store := newTestOutcomeStore(t)
	base := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)

	// Day one: two passes. Day two: one fail.
	require.NoError(t, store.AppendOutcome(schema.OutcomeRecord{
		SerialNumber: "SN1", LastStopTime: base.Add(time.Hour), Outcome: schema.OutcomePass, TestStation: "TSP-E",
	}))
	require.NoError(t, store.AppendOutcome(schema.OutcomeRecord{
		SerialNumber: "SN2", LastStopTime: base.Add(2 * time.Hour), Outcome: schema.OutcomePass, TestStation: "TSP-E",
	}))
	require.NoError(t, store.AppendOutcome(schema.OutcomeRecord{
		SerialNumber: "SN3", LastStopTime: base.Add(26 * time.Hour), Outcome: schema.OutcomeFail, TestStation: "TSP-E",
	}))

	trend, err := GetDailyTrend(store, "TSP-E", base, base.Add(48*time.Hour))
	require.NoError(t, err)

	// Inclusive loop: 48h window emits three buckets
	require.Len(t, trend, 3)
	assert.Equal(t, base, trend[0].Start)
	assert.Equal(t, base.Add(24*time.Hour), trend[0].End)
	assert.Equal(t, 2, trend[0].InputCount)
	assert.InDelta(t, 1.0, trend[0].PassRate, 1e-9)
	assert.Equal(t, 1, trend[1].FailCount)
	assert.Equal(t, schema.YieldSummary{}, trend[2].YieldSummary)
}

func TestGetDailyTrend_SingleInstant(t *testing.T) {
	store := newTestOutcomeStore(t)
	at := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	trend, err := GetDailyTrend(store, "", at, at)
	require.NoError(t, err)
	assert.Len(t, trend, 1)
}
