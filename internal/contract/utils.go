package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/mfglab/yieldline/schema"
)

// Color variables for console output.
var (
	PassColor    = color.New(color.FgGreen, color.Bold) // passColor represents a healthy first-pass unit.
	FailColor    = color.New(color.FgRed, color.Bold)   // failColor represents a unit scrapped after four attempts.
	RetestColor  = color.New(color.FgYellow)            // retestColor represents a unit recovered on retest.
	TestingColor = color.New(color.FgCyan)              // testingColor represents a unit still mid-flow.
)

// GetPlainOutcomeLabel returns the plain text label for an outcome state.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainOutcomeLabel(state schema.OutcomeState) string {
	return string(state)
}

// GetColorOutcomeLabel returns a colored text label for console output (table).
// It uses GetPlainOutcomeLabel to determine the string, and then applies the appropriate color.
func GetColorOutcomeLabel(state schema.OutcomeState) string {
	text := GetPlainOutcomeLabel(state)

	switch state {
	case schema.OutcomePass:
		return PassColor.Sprint(text)
	case schema.OutcomeFail:
		return FailColor.Sprint(text)
	case schema.OutcomeRetest:
		return RetestColor.Sprint(text)
	default: // "TO_BE_TESTING"
		return TestingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path and format type. It falls back to os.Stdout on error.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for the default store.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".yieldline.db"
	}
	return filepath.Join(homeDir, ".yieldline.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
