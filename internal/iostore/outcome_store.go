package iostore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// outcomesTable is the name of the table for derived outcome snapshots.
const outcomesTable = "yieldline_outcome_records"

// outcomeColumns is the canonical column order for outcome records.
const outcomeColumns = "serial_number, last_stop_time, outcome, test_station"

// OutcomeStoreImpl implements the OutcomeStore interface.
type OutcomeStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.OutcomeStore = &OutcomeStoreImpl{} // Compile-time check

// NewOutcomeStore creates a new OutcomeStore with the specified backend.
func NewOutcomeStore(backend schema.DatabaseBackend, connStr string) (contract.OutcomeStore, error) {
	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if db == nil {
		// No-op store for disabled persistence
		return &OutcomeStoreImpl{db: nil, backend: backend, driverName: ""}, nil
	}

	if err := createOutcomeTable(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create outcome table: %w", err)
	}

	return &OutcomeStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createOutcomeTable creates the outcome snapshot table.
func createOutcomeTable(db *sql.DB, backend schema.DatabaseBackend) error {
	if _, err := db.Exec(getCreateOutcomeTableQuery(backend)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", outcomesTable, err)
	}
	return nil
}

// getCreateOutcomeTableQuery returns the CREATE TABLE query for yieldline_outcome_records.
// Uniqueness is on serial_number alone: at most one snapshot per unit, never recomputed.
func getCreateOutcomeTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(outcomesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number VARCHAR(64) NOT NULL,
				last_stop_time DATETIME(6) NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				test_station VARCHAR(64) NOT NULL,
				UNIQUE KEY uniq_outcome_serial (serial_number)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number TEXT NOT NULL UNIQUE,
				last_stop_time TIMESTAMPTZ NOT NULL,
				outcome TEXT NOT NULL,
				test_station TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number TEXT NOT NULL UNIQUE,
				last_stop_time TEXT NOT NULL,
				outcome TEXT NOT NULL,
				test_station TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// AppendOutcome inserts a classification snapshot inside its own transaction.
// A second snapshot for the same serial is suppressed by the unique constraint,
// keeping the first classification stable.
func (ou *OutcomeStoreImpl) AppendOutcome(rec schema.OutcomeRecord) error {
	// Skip for NoneBackend
	if ou.backend == schema.NoneBackend || ou.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(outcomesTable, ou.backend)

	var query string
	switch ou.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT IGNORE INTO %s (%s) VALUES (?, ?, ?, ?)`, quotedTableName, outcomeColumns)
	case schema.PostgreSQLBackend:
		query = bindQuery(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`, quotedTableName, outcomeColumns), ou.backend)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s) VALUES (?, ?, ?, ?)`, quotedTableName, outcomeColumns)
	}

	tx, err := ou.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(query,
		rec.SerialNumber, formatTime(rec.LastStopTime, ou.backend), string(rec.Outcome), rec.TestStation); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert outcome record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcome record: %w", err)
	}

	return nil
}

// HasSerial reports whether the unit already has an outcome row.
func (ou *OutcomeStoreImpl) HasSerial(serial string) (bool, error) {
	// Skip for NoneBackend
	if ou.backend == schema.NoneBackend || ou.db == nil {
		return false, nil
	}

	quotedTableName := quoteTableName(outcomesTable, ou.backend)
	query := bindQuery(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE serial_number = ?`, quotedTableName), ou.backend)

	var count int64
	if err := ou.db.QueryRow(query, serial).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check outcome existence: %w", err)
	}

	return count > 0, nil
}

// CountByOutcome counts outcome rows per state inside the window.
func (ou *OutcomeStoreImpl) CountByOutcome(station string, start, end time.Time) (schema.OutcomeCounts, error) {
	var counts schema.OutcomeCounts

	// Skip for NoneBackend
	if ou.backend == schema.NoneBackend || ou.db == nil {
		return counts, nil
	}

	quotedTableName := quoteTableName(outcomesTable, ou.backend)
	query := fmt.Sprintf(`SELECT outcome, COUNT(*) FROM %s WHERE last_stop_time >= ? AND last_stop_time < ?`, quotedTableName)
	args := []any{formatTime(start, ou.backend), formatTime(end, ou.backend)}
	if station != "" {
		query += ` AND test_station = ?`
		args = append(args, station)
	}
	query += ` GROUP BY outcome`

	rows, err := ou.db.Query(bindQuery(query, ou.backend), args...)
	if err != nil {
		return counts, fmt.Errorf("failed to query outcome counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return counts, fmt.Errorf("failed to scan outcome count: %w", err)
		}

		switch schema.OutcomeState(outcome) {
		case schema.OutcomePass:
			counts.Pass = count
		case schema.OutcomeFail:
			counts.Fail = count
		case schema.OutcomeRetest:
			counts.Retest = count
		case schema.OutcomeTesting:
			counts.Testing = count
		}
		counts.Input += count
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("error iterating outcome counts: %w", err)
	}

	return counts, nil
}

// AllOutcomes retrieves every row, ordered by last stop time ascending.
func (ou *OutcomeStoreImpl) AllOutcomes() ([]schema.OutcomeRecord, error) {
	// Skip for NoneBackend
	if ou.backend == schema.NoneBackend || ou.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(outcomesTable, ou.backend)
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY last_stop_time`, outcomeColumns, quotedTableName)

	rows, err := ou.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.OutcomeRecord
	for rows.Next() {
		var rec schema.OutcomeRecord
		var outcome string

		switch ou.backend {
		case schema.SQLiteBackend:
			var lastStopTimeStr string
			if err := rows.Scan(&rec.SerialNumber, &lastStopTimeStr, &outcome, &rec.TestStation); err != nil {
				return nil, fmt.Errorf("failed to scan outcome record: %w", err)
			}
			lastStopTime, err := parseStoredTime(lastStopTimeStr)
			if err != nil {
				return nil, err
			}
			rec.LastStopTime = lastStopTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&rec.SerialNumber, &rec.LastStopTime, &outcome, &rec.TestStation); err != nil {
				return nil, fmt.Errorf("failed to scan outcome record: %w", err)
			}
		}

		rec.Outcome = schema.OutcomeState(outcome)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcome records: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the outcome store.
func (ou *OutcomeStoreImpl) GetStatus() (schema.StoreStatus, error) {
	return tableStatus(ou.db, ou.backend, outcomesTable)
}

// Clear removes all rows.
func (ou *OutcomeStoreImpl) Clear() error {
	return clearTable(ou.db, ou.backend, outcomesTable)
}

// Close closes the underlying connection.
func (ou *OutcomeStoreImpl) Close() error {
	if ou.db != nil {
		return ou.db.Close()
	}
	return nil
}
