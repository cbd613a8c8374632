package schema

import "strings"

// Custom string types for type safety.
type (
	// ResultCode represents a raw per-attempt test result.
	ResultCode string

	// OutcomeState represents the derived yield classification of a unit.
	OutcomeState string

	// StationFamily represents the upstream test-equipment product line
	// whose export format a decoder must recognize.
	StationFamily string

	// Dimension represents a top-N breakdown axis.
	Dimension string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// Raw result codes seen in station exports.
const (
	ResultPass    ResultCode = "PASS"
	ResultFail    ResultCode = "FAIL"
	ResultRetest  ResultCode = "RETEST"
	ResultUnknown ResultCode = "UNKNOWN" // Sentinel for payloads that omit the result field
)

// All outcome states a unit history can classify into.
const (
	OutcomePass    OutcomeState = "PASS"
	OutcomeFail    OutcomeState = "FAIL"
	OutcomeRetest  OutcomeState = "RETEST"
	OutcomeTesting OutcomeState = "TO_BE_TESTING"
)

// All known station families.
const (
	FamilyRES StationFamily = "RES"
	FamilyDVA StationFamily = "DVA"
	FamilyTSP StationFamily = "TSP"
)

// All top-N breakdown dimensions.
const (
	DimCarrier Dimension = "carrier"
	DimFixture Dimension = "fixture"
	DimFailure Dimension = "failure"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDimensions lists all valid top-N dimensions.
var ValidDimensions = map[Dimension]struct{}{
	DimCarrier: {},
	DimFixture: {},
	DimFailure: {},
}

// ValidBackends lists all valid store backends.
var ValidBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FamilyFromFilename resolves the station family from a source filename by
// case-insensitive substring match, resolved once per file. The second return
// is false when no family tag is present.
func FamilyFromFilename(name string) (StationFamily, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "res"):
		return FamilyRES, true
	case strings.Contains(lower, "dva"):
		return FamilyDVA, true
	case strings.Contains(lower, "tsp"):
		return FamilyTSP, true
	}
	return "", false
}
