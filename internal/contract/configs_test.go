package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/schema"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:        DefaultResultLimit,
		Workers:      DefaultWorkers,
		Dimension:    string(schema.DimFailure),
		Output:       "text",
		StoreBackend: string(schema.SQLiteBackend),
		Color:        "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:        "valid minimal config",
			mutate:      func(in *ConfigRawInput) {},
			expectError: false,
		},
		{
			name:        "invalid dimension",
			mutate:      func(in *ConfigRawInput) { in.Dimension = "serial" },
			expectError: true,
		},
		{
			name:        "invalid limit (zero)",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "invalid limit (too large)",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: true,
		},
		{
			name:        "invalid workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = -1 },
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "invalid backend",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "oracle" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "mysql" },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "mysql"
				in.StoreDBConnect = "user:pass@tcp(localhost:3306)/yieldline"
			},
			expectError: false,
		},
		{
			name: "postgresql backend missing dbname",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "postgresql"
				in.StoreDBConnect = "host=localhost user=tester"
			},
			expectError: true,
		},
		{
			name:        "invalid color value",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid start date",
			mutate:      func(in *ConfigRawInput) { in.Start = "not-a-date" },
			expectError: true,
		},
		{
			name: "start after end",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-02-01T00:00:00Z"
				in.End = "2026-01-01T00:00:00Z"
			},
			expectError: true,
		},
		{
			name: "relative start time",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2 weeks ago"
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultResultLimit, cfg.ResultLimit)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.True(t, cfg.UseColors)

	// Default window is the trailing lookback period, ending now.
	assert.WithinDuration(t, time.Now(), cfg.EndTime, time.Minute)
	assert.WithinDuration(t, cfg.EndTime.Add(-DefaultLookbackDays*24*time.Hour), cfg.StartTime, time.Minute)
}

func TestProcessAndValidateAbsoluteWindow(t *testing.T) {
	input := validInput()
	input.Start = "2026-01-01T00:00:00Z"
	input.End = "2026-01-31T00:00:00Z"
	input.Station = " TSP-E "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), cfg.EndTime)
	assert.Equal(t, "TSP-E", cfg.Station)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		InputPaths: []string{"a.csv", "b.csv"},
		Station:    "TSP-E",
	}

	clone := cfg.Clone()
	clone.InputPaths[0] = "changed.csv"
	clone.Station = "DVA-1"

	assert.Equal(t, "a.csv", cfg.InputPaths[0])
	assert.Equal(t, "TSP-E", cfg.Station)
}

func TestCloneWithTimeWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	cfg := &Config{Station: "TSP-E"}
	clone := cfg.CloneWithTimeWindow(start, end)

	assert.Equal(t, start, clone.StartTime)
	assert.Equal(t, end, clone.EndTime)
	assert.Equal(t, "TSP-E", clone.Station)
	assert.True(t, cfg.StartTime.IsZero())
}
