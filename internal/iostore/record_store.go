package iostore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// recordsTable is the name of the table for raw test records.
const recordsTable = "yieldline_test_records"

// recordColumns is the canonical column order for test records.
const recordColumns = "fixture_id, stop_time, result, serial_number, sw_version, failure_message, carrier_serial, test_station"

// dimensionColumns maps each breakdown dimension to its backing column.
// Closed map, so dimension input never reaches SQL text directly.
var dimensionColumns = map[schema.Dimension]string{
	schema.DimCarrier: "carrier_serial",
	schema.DimFixture: "fixture_id",
	schema.DimFailure: "failure_message",
}

// RecordStoreImpl implements the RecordStore interface.
type RecordStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RecordStore = &RecordStoreImpl{} // Compile-time check

// NewRecordStore creates a new RecordStore with the specified backend.
func NewRecordStore(backend schema.DatabaseBackend, connStr string) (contract.RecordStore, error) {
	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if db == nil {
		// No-op store for disabled persistence
		return &RecordStoreImpl{db: nil, backend: backend, driverName: ""}, nil
	}

	if err := createRecordTable(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create record table: %w", err)
	}

	return &RecordStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createRecordTable creates the test record table.
func createRecordTable(db *sql.DB, backend schema.DatabaseBackend) error {
	if _, err := db.Exec(getCreateRecordTableQuery(backend)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", recordsTable, err)
	}
	return nil
}

// getCreateRecordTableQuery returns the CREATE TABLE query for yieldline_test_records.
// The UNIQUE constraint over the full column tuple is the dedup guard: an exact
// duplicate row can never be inserted, even by concurrent writers.
func getCreateRecordTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(recordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		// VARCHAR sizes keep the composite unique key under the InnoDB limit.
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fixture_id VARCHAR(64) NOT NULL,
				stop_time DATETIME(6) NOT NULL,
				result VARCHAR(32) NOT NULL,
				serial_number VARCHAR(64) NOT NULL,
				sw_version VARCHAR(64) NOT NULL,
				failure_message VARCHAR(255) NOT NULL,
				carrier_serial VARCHAR(64) NOT NULL,
				test_station VARCHAR(64) NOT NULL,
				UNIQUE KEY uniq_test_record (fixture_id, stop_time, result, serial_number, sw_version, failure_message, carrier_serial, test_station)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fixture_id TEXT NOT NULL,
				stop_time TIMESTAMPTZ NOT NULL,
				result TEXT NOT NULL,
				serial_number TEXT NOT NULL,
				sw_version TEXT NOT NULL,
				failure_message TEXT NOT NULL,
				carrier_serial TEXT NOT NULL,
				test_station TEXT NOT NULL,
				UNIQUE (fixture_id, stop_time, result, serial_number, sw_version, failure_message, carrier_serial, test_station)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fixture_id TEXT NOT NULL,
				stop_time TEXT NOT NULL,
				result TEXT NOT NULL,
				serial_number TEXT NOT NULL,
				sw_version TEXT NOT NULL,
				failure_message TEXT NOT NULL,
				carrier_serial TEXT NOT NULL,
				test_station TEXT NOT NULL,
				UNIQUE (fixture_id, stop_time, result, serial_number, sw_version, failure_message, carrier_serial, test_station)
			);
		`, quotedTableName)
	}
}

// AppendRecord inserts a record inside its own transaction, suppressing exact
// duplicates via the unique constraint. It reports whether a row was inserted.
func (rs *RecordStoreImpl) AppendRecord(rec schema.TestRecord) (bool, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return false, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT IGNORE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, recordColumns)
	case schema.PostgreSQLBackend:
		query = bindQuery(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`, quotedTableName, recordColumns), rs.backend)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, recordColumns)
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.Exec(query,
		rec.FixtureID, formatTime(rec.StopTime, rs.backend), rec.Result, rec.SerialNumber,
		rec.SWVersion, rec.FailureMessage, rec.CarrierSerial, rec.TestStation)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to insert test record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit test record: %w", err)
	}

	return affected > 0, nil
}

// ExistsRecord reports whether a row equal to rec on every column exists.
func (rs *RecordStoreImpl) ExistsRecord(rec schema.TestRecord) (bool, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return false, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := bindQuery(fmt.Sprintf(`SELECT COUNT(*) FROM %s
		WHERE fixture_id = ? AND stop_time = ? AND result = ? AND serial_number = ?
		AND sw_version = ? AND failure_message = ? AND carrier_serial = ? AND test_station = ?`, quotedTableName), rs.backend)

	var count int64
	row := rs.db.QueryRow(query,
		rec.FixtureID, formatTime(rec.StopTime, rs.backend), rec.Result, rec.SerialNumber,
		rec.SWVersion, rec.FailureMessage, rec.CarrierSerial, rec.TestStation)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}

	return count > 0, nil
}

// HistoryForSerial returns all attempts for one unit, newest first.
func (rs *RecordStoreImpl) HistoryForSerial(station, serial string) ([]schema.TestRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE serial_number = ?`, recordColumns, quotedTableName)
	args := []any{serial}
	if station != "" {
		query += ` AND test_station = ?`
		args = append(args, station)
	}
	query += ` ORDER BY stop_time DESC`

	rows, err := rs.db.Query(bindQuery(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query serial history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return rs.scanRecords(rows)
}

// DistinctSerials returns the distinct serial numbers seen at a station.
func (rs *RecordStoreImpl) DistinctSerials(station string) ([]string, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT DISTINCT serial_number FROM %s`, quotedTableName)
	var args []any
	if station != "" {
		query += ` WHERE test_station = ?`
		args = append(args, station)
	}
	query += ` ORDER BY serial_number`

	rows, err := rs.db.Query(bindQuery(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct serials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var serials []string
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, fmt.Errorf("failed to scan serial: %w", err)
		}
		serials = append(serials, serial)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating serials: %w", err)
	}

	return serials, nil
}

// FailSerials returns the distinct serial numbers with a FAIL attempt inside the window.
func (rs *RecordStoreImpl) FailSerials(station string, start, end time.Time) ([]string, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT DISTINCT serial_number FROM %s WHERE result = ? AND stop_time >= ? AND stop_time < ?`, quotedTableName)
	args := []any{string(schema.ResultFail), formatTime(start, rs.backend), formatTime(end, rs.backend)}
	if station != "" {
		query += ` AND test_station = ?`
		args = append(args, station)
	}

	rows, err := rs.db.Query(bindQuery(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fail serials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var serials []string
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, fmt.Errorf("failed to scan serial: %w", err)
		}
		serials = append(serials, serial)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fail serials: %w", err)
	}

	return serials, nil
}

// CountInWindow counts attempts inside the window.
func (rs *RecordStoreImpl) CountInWindow(station string, start, end time.Time) (int, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE stop_time >= ? AND stop_time < ?`, quotedTableName)
	args := []any{formatTime(start, rs.backend), formatTime(end, rs.backend)}
	if station != "" {
		query += ` AND test_station = ?`
		args = append(args, station)
	}

	var count int
	row := rs.db.QueryRow(bindQuery(query, rs.backend), args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count window records: %w", err)
	}

	return count, nil
}

// TopCounts groups FAIL rows in the window by the given dimension and returns
// the top values by descending count, value ascending on ties.
func (rs *RecordStoreImpl) TopCounts(dim schema.Dimension, q schema.TopQuery) ([]schema.RankedCount, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	column, ok := dimensionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("unsupported dimension: %s", dim)
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM %s WHERE result = ? AND stop_time >= ? AND stop_time < ?`, column, quotedTableName)
	args := []any{string(schema.ResultFail), formatTime(q.Start, rs.backend), formatTime(q.End, rs.backend)}
	if q.Station != "" {
		query += ` AND test_station = ?`
		args = append(args, q.Station)
	}
	if q.Fixture != "" {
		query += ` AND fixture_id = ?`
		args = append(args, q.Fixture)
	}
	if q.FailureMessage != "" {
		query += ` AND failure_message = ?`
		args = append(args, q.FailureMessage)
	}
	query += fmt.Sprintf(` GROUP BY %s ORDER BY COUNT(*) DESC, %s ASC LIMIT ?`, column, column)
	args = append(args, q.Limit)

	rows, err := rs.db.Query(bindQuery(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RankedCount
	for rows.Next() {
		var rc schema.RankedCount
		if err := rows.Scan(&rc.Value, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ranked count: %w", err)
		}
		results = append(results, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top counts: %w", err)
	}

	return results, nil
}

// AllRecords retrieves every row, ordered by stop time ascending.
func (rs *RecordStoreImpl) AllRecords() ([]schema.TestRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(recordsTable, rs.backend)
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY stop_time`, recordColumns, quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return rs.scanRecords(rows)
}

// scanRecords scans full-width record rows, handling the per-backend time format.
func (rs *RecordStoreImpl) scanRecords(rows *sql.Rows) ([]schema.TestRecord, error) {
	var results []schema.TestRecord

	for rows.Next() {
		var rec schema.TestRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var stopTimeStr string
			if err := rows.Scan(&rec.FixtureID, &stopTimeStr, &rec.Result, &rec.SerialNumber,
				&rec.SWVersion, &rec.FailureMessage, &rec.CarrierSerial, &rec.TestStation); err != nil {
				return nil, fmt.Errorf("failed to scan test record: %w", err)
			}
			stopTime, err := parseStoredTime(stopTimeStr)
			if err != nil {
				return nil, err
			}
			rec.StopTime = stopTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&rec.FixtureID, &rec.StopTime, &rec.Result, &rec.SerialNumber,
				&rec.SWVersion, &rec.FailureMessage, &rec.CarrierSerial, &rec.TestStation); err != nil {
				return nil, fmt.Errorf("failed to scan test record: %w", err)
			}
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test records: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the record store.
func (rs *RecordStoreImpl) GetStatus() (schema.StoreStatus, error) {
	return tableStatus(rs.db, rs.backend, recordsTable)
}

// Clear removes all rows.
func (rs *RecordStoreImpl) Clear() error {
	return clearTable(rs.db, rs.backend, recordsTable)
}

// Close closes the underlying connection.
func (rs *RecordStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
