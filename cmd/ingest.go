package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// ingestCmd loads station export files into the test-record store.
var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Load station export CSV files into the test-record store.",
	Long: `Parse station export CSV files and append every attempt to the test-record store.

Accepts both export formats:
- Payload exports, where each row carries an embedded JSON document and the
  filename encodes the station family (RES, DVA or TSP)
- Plain report exports with one column per field ("Serial Number",
  "Test Result", "Test End Time", ...)

Each path argument may be a single CSV file or a directory, in which case all
*.csv files directly inside it are ingested. Files are processed concurrently
and REMOVED after ingestion, so point this at a drop directory rather than at
your only copy. Re-ingesting the same rows is safe: exact duplicates are
counted and skipped.

Examples:
  # Ingest a drop directory of TSP payload exports
  yieldline ingest /var/exports/tsp

  # Ingest report exports, stamping rows with the station name
  yieldline ingest --station TSP-E report1.csv report2.csv

  # Ingest with more workers against MySQL
  yieldline ingest --workers 8 --store-backend mysql /var/exports/res`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIngest(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run ingestion", err)
		}
	},
}
