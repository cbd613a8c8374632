package iostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/schema"
)

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "\"yieldline_test_records\"", quoteTableName(recordsTable, schema.SQLiteBackend))
	assert.Equal(t, "`yieldline_test_records`", quoteTableName(recordsTable, schema.MySQLBackend))
	assert.Equal(t, "\"yieldline_test_records\"", quoteTableName(recordsTable, schema.PostgreSQLBackend))
}

func TestBindQuery(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"

	assert.Equal(t, query, bindQuery(query, schema.SQLiteBackend))
	assert.Equal(t, query, bindQuery(query, schema.MySQLBackend))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", bindQuery(query, schema.PostgreSQLBackend))
}

func TestFormatTimeRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 5, 10, 8, 30, 0, 0, time.FixedZone("CST", 8*3600))

	formatted, ok := formatTime(stamp, schema.SQLiteBackend).(string)
	require.True(t, ok)

	parsed, err := parseStoredTime(formatted)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(parsed))
	assert.Equal(t, time.UTC, parsed.Location())

	// Native backends keep the time.Time value
	_, ok = formatTime(stamp, schema.MySQLBackend).(time.Time)
	assert.True(t, ok)
}

func TestParseStoredTimeInvalid(t *testing.T) {
	_, err := parseStoredTime("not-a-time")
	assert.Error(t, err)
}

func TestOpenDBUnsupportedBackend(t *testing.T) {
	_, _, err := openDB(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}
