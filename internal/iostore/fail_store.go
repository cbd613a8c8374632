package iostore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// failsTable is the name of the table for categorized fail records.
const failsTable = "yieldline_fail_records"

// failColumns is the canonical column order for fail records.
const failColumns = "serial_number, status, end_time, sw_version, failing_tests, carrier_serial, fixture_id, carrier_total_test, carrier_unit_fail, category, sub_category, sub_sub_category"

// FailStoreImpl implements the FailStore interface.
type FailStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.FailStore = &FailStoreImpl{} // Compile-time check

// NewFailStore creates a new FailStore with the specified backend.
func NewFailStore(backend schema.DatabaseBackend, connStr string) (contract.FailStore, error) {
	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if db == nil {
		// No-op store for disabled persistence
		return &FailStoreImpl{db: nil, backend: backend, driverName: ""}, nil
	}

	if err := createFailTable(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create fail table: %w", err)
	}

	return &FailStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createFailTable creates the categorized fail record table.
func createFailTable(db *sql.DB, backend schema.DatabaseBackend) error {
	if _, err := db.Exec(getCreateFailTableQuery(backend)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", failsTable, err)
	}
	return nil
}

// getCreateFailTableQuery returns the CREATE TABLE query for yieldline_fail_records.
// The unique key is (serial_number, end_time, fixture_id): the failing-test list
// can exceed index limits, and one unit cannot finish twice on the same fixture
// at the same instant.
func getCreateFailTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(failsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number VARCHAR(64) NOT NULL,
				status VARCHAR(32) NOT NULL,
				end_time DATETIME(6) NOT NULL,
				sw_version VARCHAR(64) NOT NULL,
				failing_tests TEXT NOT NULL,
				carrier_serial VARCHAR(64) NOT NULL,
				fixture_id VARCHAR(64) NOT NULL,
				carrier_total_test INT NOT NULL,
				carrier_unit_fail INT NOT NULL,
				category VARCHAR(128) NOT NULL,
				sub_category VARCHAR(128) NOT NULL,
				sub_sub_category VARCHAR(128) NOT NULL,
				UNIQUE KEY uniq_fail_record (serial_number, end_time, fixture_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number TEXT NOT NULL,
				status TEXT NOT NULL,
				end_time TIMESTAMPTZ NOT NULL,
				sw_version TEXT NOT NULL,
				failing_tests TEXT NOT NULL,
				carrier_serial TEXT NOT NULL,
				fixture_id TEXT NOT NULL,
				carrier_total_test INT NOT NULL,
				carrier_unit_fail INT NOT NULL,
				category TEXT NOT NULL,
				sub_category TEXT NOT NULL,
				sub_sub_category TEXT NOT NULL,
				UNIQUE (serial_number, end_time, fixture_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				serial_number TEXT NOT NULL,
				status TEXT NOT NULL,
				end_time TEXT NOT NULL,
				sw_version TEXT NOT NULL,
				failing_tests TEXT NOT NULL,
				carrier_serial TEXT NOT NULL,
				fixture_id TEXT NOT NULL,
				carrier_total_test INTEGER NOT NULL,
				carrier_unit_fail INTEGER NOT NULL,
				category TEXT NOT NULL,
				sub_category TEXT NOT NULL,
				sub_sub_category TEXT NOT NULL,
				UNIQUE (serial_number, end_time, fixture_id)
			);
		`, quotedTableName)
	}
}

// AppendFailRecord inserts a categorized record inside its own transaction,
// suppressing duplicates via the unique key. It reports whether a row was inserted.
func (fs *FailStoreImpl) AppendFailRecord(rec schema.FailRecord) (bool, error) {
	// Skip for NoneBackend
	if fs.backend == schema.NoneBackend || fs.db == nil {
		return false, nil
	}

	quotedTableName := quoteTableName(failsTable, fs.backend)

	var query string
	switch fs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT IGNORE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, failColumns)
	case schema.PostgreSQLBackend:
		query = bindQuery(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`, quotedTableName, failColumns), fs.backend)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, failColumns)
	}

	tx, err := fs.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.Exec(query,
		rec.SerialNumber, rec.Status, formatTime(rec.EndTime, fs.backend), rec.SWVersion,
		rec.FailingTests, rec.CarrierSerial, rec.FixtureID, rec.CarrierTotalTest,
		rec.CarrierUnitFail, rec.Category, rec.SubCategory, rec.SubSubCategory)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to insert fail record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit fail record: %w", err)
	}

	return affected > 0, nil
}

// RecordsInWindow returns all categorized records inside the window, end time ascending.
func (fs *FailStoreImpl) RecordsInWindow(start, end time.Time) ([]schema.FailRecord, error) {
	// Skip for NoneBackend
	if fs.backend == schema.NoneBackend || fs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(failsTable, fs.backend)
	query := bindQuery(fmt.Sprintf(`SELECT %s FROM %s WHERE end_time >= ? AND end_time < ? ORDER BY end_time`, failColumns, quotedTableName), fs.backend)

	rows, err := fs.db.Query(query, formatTime(start, fs.backend), formatTime(end, fs.backend))
	if err != nil {
		return nil, fmt.Errorf("failed to query fail records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return fs.scanFailRecords(rows)
}

// AllFailRecords retrieves every row, ordered by end time ascending.
func (fs *FailStoreImpl) AllFailRecords() ([]schema.FailRecord, error) {
	// Skip for NoneBackend
	if fs.backend == schema.NoneBackend || fs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(failsTable, fs.backend)
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY end_time`, failColumns, quotedTableName)

	rows, err := fs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all fail records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return fs.scanFailRecords(rows)
}

// scanFailRecords scans full-width fail rows, handling the per-backend time format.
func (fs *FailStoreImpl) scanFailRecords(rows *sql.Rows) ([]schema.FailRecord, error) {
	var results []schema.FailRecord

	for rows.Next() {
		var rec schema.FailRecord

		switch fs.backend {
		case schema.SQLiteBackend:
			var endTimeStr string
			if err := rows.Scan(&rec.SerialNumber, &rec.Status, &endTimeStr, &rec.SWVersion,
				&rec.FailingTests, &rec.CarrierSerial, &rec.FixtureID, &rec.CarrierTotalTest,
				&rec.CarrierUnitFail, &rec.Category, &rec.SubCategory, &rec.SubSubCategory); err != nil {
				return nil, fmt.Errorf("failed to scan fail record: %w", err)
			}
			endTime, err := parseStoredTime(endTimeStr)
			if err != nil {
				return nil, err
			}
			rec.EndTime = endTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&rec.SerialNumber, &rec.Status, &rec.EndTime, &rec.SWVersion,
				&rec.FailingTests, &rec.CarrierSerial, &rec.FixtureID, &rec.CarrierTotalTest,
				&rec.CarrierUnitFail, &rec.Category, &rec.SubCategory, &rec.SubSubCategory); err != nil {
				return nil, fmt.Errorf("failed to scan fail record: %w", err)
			}
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fail records: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the fail store.
func (fs *FailStoreImpl) GetStatus() (schema.StoreStatus, error) {
	return tableStatus(fs.db, fs.backend, failsTable)
}

// Clear removes all rows.
func (fs *FailStoreImpl) Clear() error {
	return clearTable(fs.db, fs.backend, failsTable)
}

// Close closes the underlying connection.
func (fs *FailStoreImpl) Close() error {
	if fs.db != nil {
		return fs.db.Close()
	}
	return nil
}
