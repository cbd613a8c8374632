package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// failcatCmd groups categorized fail-record analysis.
var failcatCmd = &cobra.Command{
	Use:   "failcat",
	Short: "Ingest and analyze categorized fail records",
	Long: `Work with fail-record exports that carry a full failing-test list per unit.

Fail records are richer than plain test records: each row names every failing
test, the carrier part number and per-carrier counters. Combined with a
key-to-category lookup table, the failing-test list maps to a three-level
failure taxonomy (category, sub-category, sub-sub-category) so failures can be
rolled up by engineering owner instead of raw message text.

Subcommands:
  ingest - Load fail-record CSV exports using a category lookup table
  top    - Rank failure sub-categories, or drill into one sub-category

Examples:
  # Ingest fail records with a lookup table
  yieldline failcat ingest --lookup categories.csv fails1.csv fails2.csv

  # Rank failure sub-categories for the last month
  yieldline failcat top`,
}

// failcatIngestCmd loads fail-record exports into the fail store.
var failcatIngestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Load fail-record CSV exports into the fail store.",
	Long: `Parse fail-record CSV exports and append every failing unit to the fail store.

Requires --lookup, a CSV mapping the first failing test of each record to a
category, sub-category and sub-sub-category. Records whose key is missing from
the lookup are kept but left uncategorized, with a warning. Rows whose status
is PASS are dropped before categorization.

Each path may be a single CSV file or a directory of *.csv files. Files are
REMOVED after ingestion. Re-ingesting the same rows is safe.

Examples:
  # Ingest a directory of fail exports
  yieldline failcat ingest --lookup categories.csv /var/exports/fails

  # Single file against PostgreSQL
  yieldline failcat ingest --lookup categories.csv --store-backend postgresql fails.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFailIngest(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run fail-record ingestion", err)
		}
	},
}

// failcatTopCmd ranks failure sub-categories.
var failcatTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank failure sub-categories over a time window.",
	Long: `Rank categorized failures over a time window, excluding units that are
confirmed FAIL in the test-record store (those are scrap, not recoverable
yield loss). Each unit counts once, at its earliest fail record in the window,
and rates are computed against the total attempt count in the window.

Without flags, shows the top failure sub-categories. With --failure set to a
sub-category name, drills into that sub-category and ranks it by the chosen
--dimension (fixture or carrier) to localize the source.

Examples:
  # Top failure sub-categories for the last month
  yieldline failcat top

  # Which fixtures produce 'Probe Cal' failures
  yieldline failcat top --failure "Probe Cal" --dimension fixture

  # Which carriers produce 'Probe Cal' failures, top 6
  yieldline failcat top --failure "Probe Cal" --dimension carrier --limit 6`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFailCategories(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run fail-category breakdown", err)
		}
	},
}
