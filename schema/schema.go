// Package schema has models, enums and query shapes for all parts of yieldline.
package schema

import "time"

// TestRecord is one test attempt on one physical unit, in canonical column
// order. Rows are append-only and unique over the full tuple; an exact
// duplicate is silently suppressed at insert time.
type TestRecord struct {
	FixtureID      string    // Tester/station identifier
	StopTime       time.Time // Test completion time
	Result         string    // Raw result code (PASS, FAIL, RETEST, ...)
	SerialNumber   string    // Unit identity
	SWVersion      string    // Test software/firmware version
	FailureMessage string    // First failing test name; empty when the unit passed
	CarrierSerial  string    // Carrier/tray identifier; empty when not reported
	TestStation    string    // Station name (e.g. TSP-E)
}

// OutcomeRecord is the derived yield classification for one unit. At most one
// row exists per serial number; it is never recomputed after later attempts
// arrive (snapshot semantics).
type OutcomeRecord struct {
	SerialNumber string
	LastStopTime time.Time // Timestamp of the most recent attempt considered
	Outcome      OutcomeState
	TestStation  string
}

// FailRecord is a failure-categorized record from the secondary CSV ingestion
// path. Categories come from the external Key->Category lookup table; they are
// left empty when the failing-test key has no mapping.
type FailRecord struct {
	SerialNumber     string
	Status           string // Test Pass/Fail Status from the export
	EndTime          time.Time
	SWVersion        string
	FailingTests     string // Raw ';'-separated failing test list
	CarrierSerial    string
	FixtureID        string
	CarrierTotalTest int
	CarrierUnitFail  int
	Category         string
	SubCategory      string
	SubSubCategory   string
}

// YieldSummary holds windowed first-pass-yield aggregates computed from
// outcome rows. A window with no rows yields the zero value (all counts and
// rates zero) rather than an error.
type YieldSummary struct {
	InputCount   int     `json:"input_count"`
	PassCount    int     `json:"pass_count"`
	PassRate     float64 `json:"pass_rate"`
	FailCount    int     `json:"fail_count"`
	FailRate     float64 `json:"fail_rate"`
	RetestCount  int     `json:"retest_count"`
	RetestRate   float64 `json:"retest_rate"`
	TestingCount int     `json:"testing_count"`
}

// DailyYield is one 1-day bucket of a yield trend.
type DailyYield struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	YieldSummary
}

// OutcomeCounts holds raw per-state counts for one window, before rates are
// derived.
type OutcomeCounts struct {
	Input   int
	Pass    int
	Fail    int
	Retest  int
	Testing int
}

// RankedCount is one (value, count) pair of a top-N breakdown, ordered by
// descending count.
type RankedCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoryCount is a RankedCount with the window-relative rate attached, used
// by the fail-record reporting path.
type CategoryCount struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Rate  float64 `json:"rate"`
}

// TopQuery bundles the parameters of a top-N breakdown over FAIL rows.
type TopQuery struct {
	Start          time.Time
	End            time.Time
	Station        string
	Fixture        string // Optional equality filter
	FailureMessage string // Optional equality filter
	Limit          int
}

// StoreStatus reports connection state and table sizes for one store.
type StoreStatus struct {
	Backend    string
	Connected  bool
	TableSizes map[string]int64
}

// IngestReport summarizes one file's ingestion for logging and tests.
type IngestReport struct {
	File      string
	Family    StationFamily
	Rows      int // Raw rows seen in the file
	Inserted  int // Rows appended to the store
	Duplicate int // Rows suppressed by the dedup guard
	Dropped   int // Rows dropped by decode/projection errors
}
