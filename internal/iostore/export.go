package iostore

import (
	"errors"
	"fmt"

	"github.com/mfglab/yieldline/internal/parquet"
)

// ExecuteStoreExport writes parquet snapshots of the three store tables.
func ExecuteStoreExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	recordStore := Manager.GetRecordStore()
	status, err := recordStore.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get record store status: %w", err)
	}
	if status.TableSizes[recordsTable] == 0 {
		return errors.New("no test records found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)

	records, err := recordStore.AllRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve test records: %w", err)
	}

	outcomes, err := Manager.GetOutcomeStore().AllOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve outcomes: %w", err)
	}

	failRecords, err := Manager.GetFailStore().AllFailRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve fail records: %w", err)
	}

	recordsFile := outputFile + ".test_records.parquet"
	if err := parquet.WriteTestRecordsParquet(parquet.ConvertTestRecords(records), recordsFile); err != nil {
		return fmt.Errorf("failed to write test records: %w", err)
	}
	fmt.Printf("Exported %d test records to: %s\n", len(records), recordsFile)

	outcomesFile := outputFile + ".outcome_records.parquet"
	if err := parquet.WriteOutcomesParquet(parquet.ConvertOutcomes(outcomes), outcomesFile); err != nil {
		return fmt.Errorf("failed to write outcomes: %w", err)
	}
	fmt.Printf("Exported %d outcome records to: %s\n", len(outcomes), outcomesFile)

	failsFile := outputFile + ".fail_records.parquet"
	if err := parquet.WriteFailRecordsParquet(parquet.ConvertFailRecords(failRecords), failsFile); err != nil {
		return fmt.Errorf("failed to write fail records: %w", err)
	}
	fmt.Printf("Exported %d fail records to: %s\n", len(failRecords), failsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with Spark, Pandas, DuckDB, or any other Parquet-compatible tool.")

	return nil
}
