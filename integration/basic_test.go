//go:build basic

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestYieldlineWithSQLite drives the full pipeline against a throwaway SQLite file.
func TestYieldlineWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "yieldline.db")

	_ = os.Setenv("YIELDLINE_STORE_BACKEND", "sqlite")
	_ = os.Setenv("YIELDLINE_STORE_DB_CONNECT", dbPath)
	defer func() { _ = os.Unsetenv("YIELDLINE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("YIELDLINE_STORE_DB_CONNECT") }()

	export := `Serial Number,Test Result,Test End Time,Fixture ID,Test Software Version,Fail Message
SN100,PASS,2026-05-10 08:00:00,100101,1.2.3,
SN200,FAIL,2026-05-10 08:05:00,100101,1.2.3,OS Test Failed
SN200,PASS,2026-05-10 09:05:00,100101,1.2.3,
`
	exportFile := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(exportFile, []byte(export), 0o644))

	_, err := runBasicCommand(t, "ingest", "--station", "TSP-E", exportFile)
	require.NoError(t, err)

	// Ingestion consumes its input files
	_, statErr := os.Stat(exportFile)
	assert.True(t, os.IsNotExist(statErr), "Export file should be removed after ingestion")

	_, err = runBasicCommand(t, "classify")
	require.NoError(t, err)

	out, err := runBasicCommand(t, "fpy",
		"--start", "2026-05-01T00:00:00Z", "--end", "2026-06-01T00:00:00Z", "--output", "csv", "--color", "no")
	require.NoError(t, err)

	// One first-pass unit and one retested unit out of two
	assert.True(t, strings.Contains(out, "2,1,0.5000,0,0.0000,1,0.5000,0"), "Unexpected fpy output: %s", out)
}

func runBasicCommand(t *testing.T, args ...string) (string, error) {
	binaryPath := getYieldlineBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}
