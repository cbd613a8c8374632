// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/mfglab/yieldline/schema"
)

// StoreManager defines the interface for managing the persistence stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetRecordStore() RecordStore
	GetOutcomeStore() OutcomeStore
	GetFailStore() FailStore
}

// RecordStore defines the interface for raw test-record storage.
type RecordStore interface {
	// AppendRecord inserts a record, suppressing exact duplicates.
	// It reports whether the row was actually inserted.
	AppendRecord(rec schema.TestRecord) (bool, error)

	// ExistsRecord reports whether a row equal to rec on every column exists.
	ExistsRecord(rec schema.TestRecord) (bool, error)

	// HistoryForSerial returns all attempts for one unit at one station,
	// ordered by stop time descending. An empty station matches all stations.
	HistoryForSerial(station, serial string) ([]schema.TestRecord, error)

	// DistinctSerials returns the distinct serial numbers seen at a station.
	DistinctSerials(station string) ([]string, error)

	// FailSerials returns the distinct serial numbers with a FAIL attempt
	// inside the window.
	FailSerials(station string, start, end time.Time) ([]string, error)

	// CountInWindow counts attempts inside the window. An empty station
	// matches all stations.
	CountInWindow(station string, start, end time.Time) (int, error)

	// TopCounts groups FAIL rows in the window by the given dimension and
	// returns the top values by descending count.
	TopCounts(dim schema.Dimension, query schema.TopQuery) ([]schema.RankedCount, error)

	// AllRecords retrieves every row, ordered by stop time ascending.
	AllRecords() ([]schema.TestRecord, error)

	// GetStatus returns status information about the record store
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all rows
	Clear() error

	// Close closes the underlying connection
	Close() error
}

// OutcomeStore defines the interface for derived outcome storage.
type OutcomeStore interface {
	// AppendOutcome inserts a classification snapshot for one unit.
	AppendOutcome(rec schema.OutcomeRecord) error

	// HasSerial reports whether the unit already has an outcome row.
	HasSerial(serial string) (bool, error)

	// CountByOutcome counts outcome rows per state inside the window.
	// An empty station matches all stations.
	CountByOutcome(station string, start, end time.Time) (schema.OutcomeCounts, error)

	// AllOutcomes retrieves every row, ordered by last stop time ascending.
	AllOutcomes() ([]schema.OutcomeRecord, error)

	// GetStatus returns status information about the outcome store
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all rows
	Clear() error

	// Close closes the underlying connection
	Close() error
}

// FailStore defines the interface for categorized fail-record storage.
type FailStore interface {
	// AppendFailRecord inserts a categorized record, suppressing exact duplicates.
	AppendFailRecord(rec schema.FailRecord) (bool, error)

	// RecordsInWindow returns all categorized records inside the window,
	// ordered by end time ascending.
	RecordsInWindow(start, end time.Time) ([]schema.FailRecord, error)

	// AllFailRecords retrieves every row, ordered by end time ascending.
	AllFailRecords() ([]schema.FailRecord, error)

	// GetStatus returns status information about the fail store
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all rows
	Clear() error

	// Close closes the underlying connection
	Close() error
}
