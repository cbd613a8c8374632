package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
	"github.com/mfglab/yieldline/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize persistence with the loaded config
	if err := iostore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on persistence management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by analysis commands. This avoids time-window
// parsing and complex config processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the persisted test, outcome and fail records",
	Long: `Manage the persistence layer that holds test records, outcome snapshots and
fail records.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (no-op)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all persisted data
  export  - Export all tables to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check store status
  yieldline store status

  # Export for analysis in pandas/DuckDB
  yieldline store export --output-file yieldline-data`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the persistence stores.

Displays, per store:
- Backend type and connection status
- Row counts per table

Use this to:
- Verify the store is reachable before a long ingestion
- Monitor data growth over time
- Debug connection issues with MySQL/PostgreSQL backends

Examples:
  # Check store status
  yieldline store status

  # Check a MySQL store (set connection string via env variable)
  YIELDLINE_STORE_BACKEND=mysql YIELDLINE_STORE_DB_CONNECT="..." yieldline store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		recordStatus, err := iostore.Manager.GetRecordStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get record store status", err)
		}
		iostore.PrintStoreStatus("Test records", recordStatus)

		outcomeStatus, err := iostore.Manager.GetOutcomeStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get outcome store status", err)
		}
		iostore.PrintStoreStatus("Outcomes", outcomeStatus)

		failStatus, err := iostore.Manager.GetFailStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get fail store status", err)
		}
		iostore.PrintStoreStatus("Fail records", failStatus)
	},
}

// storeClearCmd clears all persisted data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted test, outcome and fail records",
	Long: `Delete all persisted data from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Starting a fresh measurement period
- Ingested data turned out to be corrupt
- Testing ingestion against a clean store

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the yieldline tables

Examples:
  # Export before clearing
  yieldline store export --output-file backup
  yieldline store clear

  # Clear a MySQL store (set connection string via env variable)
  YIELDLINE_STORE_BACKEND=mysql YIELDLINE_STORE_DB_CONNECT="..." yieldline store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearStores(cfg.StoreBackend, iostore.GetDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeExportCmd exports store data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tables to Parquet for BI tools and analytics",
	Long: `Export all persisted data to Parquet format for use with analytics tools.

Exports three datasets:
- Test records - every raw attempt with station, fixture and carrier
- Outcome records - the derived per-unit yield classification
- Fail records - categorized failures with the full failing-test list

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter, used as the filename prefix

Examples:
  # Export all data
  yieldline store export --output-file yieldline-data

  # Use with DuckDB for analysis
  yieldline store export --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.test_records.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteStoreExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the persistence stores.

Migrations allow:
- Upgrading to new schema versions when yieldline is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  yieldline store migrate

  # Migrate to specific version
  yieldline store migrate --target-version 1

  # Rollback to initial state
  yieldline store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
