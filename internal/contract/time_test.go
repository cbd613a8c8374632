package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	fixedNow := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input       string
		expected    time.Time
		expectError bool
	}{
		{"2 years ago", fixedNow.AddDate(-2, 0, 0), false},
		{"3 months ago", fixedNow.AddDate(0, -3, 0), false},
		{"1 week ago", fixedNow.Add(-7 * 24 * time.Hour), false},
		{"10 days ago", fixedNow.Add(-10 * 24 * time.Hour), false},
		{"6 hours ago", fixedNow.Add(-6 * time.Hour), false},
		{"30 minutes ago", fixedNow.Add(-30 * time.Minute), false},
		{"  1 Day Ago  ", fixedNow.Add(-24 * time.Hour), false},
		{"yesterday", time.Time{}, true},
		{"2 fortnights ago", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
