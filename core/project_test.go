package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/schema"
)

func TestProjectAttempt(t *testing.T) {
	raw := rawAttempt{
		FixtureID:      " FX-01 ",
		StopTime:       "2026-05-10 08:30:00",
		Result:         " pass ",
		SerialNumber:   " SN1 ",
		SWVersion:      "1.2.3",
		FailureMessage: "",
		CarrierSerial:  "CAR-9",
		TestStation:    "TSP-E",
	}

	rec, err := projectAttempt(raw)
	require.NoError(t, err)

	assert.Equal(t, "SN1", rec.SerialNumber)
	assert.Equal(t, "PASS", rec.Result)
	assert.Equal(t, "FX-01", rec.FixtureID)
	assert.Equal(t, time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC), rec.StopTime)
}

func TestProjectAttempt_EmptyResultIsUnknown(t *testing.T) {
	raw := rawAttempt{
		StopTime:     "2026-05-10 08:30:00",
		SerialNumber: "SN1",
	}

	rec, err := projectAttempt(raw)
	require.NoError(t, err)
	assert.Equal(t, string(schema.ResultUnknown), rec.Result)
}

func TestProjectAttempt_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  rawAttempt
	}{
		{"blank serial", rawAttempt{SerialNumber: "  ", StopTime: "2026-05-10 08:30:00", Result: "PASS"}},
		{"bad stop time", rawAttempt{SerialNumber: "SN1", StopTime: "yesterday", Result: "PASS"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := projectAttempt(tc.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseStopTime_RFC3339Fallback(t *testing.T) {
	parsed, err := parseStopTime("2026-05-10T08:30:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 30, 0, 0, time.UTC), parsed)
}
