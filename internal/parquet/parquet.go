// Package parquet provides data structures and functions for exporting yieldline
// store data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mfglab/yieldline/schema"
)

// TestRecordRow maps to the yieldline_test_records database table.
type TestRecordRow struct {
	FixtureID      string    `parquet:"fixture_id,snappy"`
	StopTime       time.Time `parquet:"stop_time,snappy"`
	Result         string    `parquet:"result,snappy"`
	SerialNumber   string    `parquet:"serial_number,snappy"`
	SWVersion      string    `parquet:"sw_version,snappy"`
	FailureMessage string    `parquet:"failure_message,snappy"`
	CarrierSerial  string    `parquet:"carrier_serial,snappy"`
	TestStation    string    `parquet:"test_station,snappy"`
}

// OutcomeRow maps to the yieldline_outcome_records database table.
type OutcomeRow struct {
	SerialNumber string    `parquet:"serial_number,snappy"`
	LastStopTime time.Time `parquet:"last_stop_time,snappy"`
	Outcome      string    `parquet:"outcome,snappy"`
	TestStation  string    `parquet:"test_station,snappy"`
}

// FailRecordRow maps to the yieldline_fail_records database table.
type FailRecordRow struct {
	SerialNumber     string    `parquet:"serial_number,snappy"`
	Status           string    `parquet:"status,snappy"`
	EndTime          time.Time `parquet:"end_time,snappy"`
	SWVersion        string    `parquet:"sw_version,snappy"`
	FailingTests     string    `parquet:"failing_tests,snappy"`
	CarrierSerial    string    `parquet:"carrier_serial,snappy"`
	FixtureID        string    `parquet:"fixture_id,snappy"`
	CarrierTotalTest int32     `parquet:"carrier_total_test,snappy"`
	CarrierUnitFail  int32     `parquet:"carrier_unit_fail,snappy"`
	Category         string    `parquet:"category,snappy"`
	SubCategory      string    `parquet:"sub_category,snappy"`
	SubSubCategory   string    `parquet:"sub_sub_category,snappy"`
}

// writeParquet writes a slice of rows to a Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteTestRecordsParquet writes test records to a Parquet file.
func WriteTestRecordsParquet(data []TestRecordRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteOutcomesParquet writes outcome snapshots to a Parquet file.
func WriteOutcomesParquet(data []OutcomeRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFailRecordsParquet writes categorized fail records to a Parquet file.
func WriteFailRecordsParquet(data []FailRecordRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertTestRecords converts schema.TestRecord to TestRecordRow for Parquet export.
func ConvertTestRecords(records []schema.TestRecord) []TestRecordRow {
	result := make([]TestRecordRow, len(records))
	for i, record := range records {
		result[i] = TestRecordRow{
			FixtureID:      record.FixtureID,
			StopTime:       record.StopTime,
			Result:         record.Result,
			SerialNumber:   record.SerialNumber,
			SWVersion:      record.SWVersion,
			FailureMessage: record.FailureMessage,
			CarrierSerial:  record.CarrierSerial,
			TestStation:    record.TestStation,
		}
	}
	return result
}

// ConvertOutcomes converts schema.OutcomeRecord to OutcomeRow for Parquet export.
func ConvertOutcomes(records []schema.OutcomeRecord) []OutcomeRow {
	result := make([]OutcomeRow, len(records))
	for i, record := range records {
		result[i] = OutcomeRow{
			SerialNumber: record.SerialNumber,
			LastStopTime: record.LastStopTime,
			Outcome:      string(record.Outcome),
			TestStation:  record.TestStation,
		}
	}
	return result
}

// ConvertFailRecords converts schema.FailRecord to FailRecordRow for Parquet export.
func ConvertFailRecords(records []schema.FailRecord) []FailRecordRow {
	result := make([]FailRecordRow, len(records))
	for i, record := range records {
		result[i] = FailRecordRow{
			SerialNumber:     record.SerialNumber,
			Status:           record.Status,
			EndTime:          record.EndTime,
			SWVersion:        record.SWVersion,
			FailingTests:     record.FailingTests,
			CarrierSerial:    record.CarrierSerial,
			FixtureID:        record.FixtureID,
			CarrierTotalTest: int32(record.CarrierTotalTest),
			CarrierUnitFail:  int32(record.CarrierUnitFail),
			Category:         record.Category,
			SubCategory:      record.SubCategory,
			SubSubCategory:   record.SubSubCategory,
		}
	}
	return result
}
