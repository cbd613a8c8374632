package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// fpyCmd reports first-pass-yield counts and rates.
var fpyCmd = &cobra.Command{
	Use:   "fpy",
	Short: "Show first-pass-yield counts and rates for a time window.",
	Long: `Aggregate classified outcomes over a time window into first-pass-yield numbers.

Reports the input count plus per-outcome counts and rates:
- PASS rate is the share of units that never needed a retest
- RETEST rate is the share recovered after at least one failure
- FAIL rate is the share scrapped after exhausting the attempt budget
- TO_BE_TESTING units are listed without a rate since they are still in flight

Run 'yieldline classify' first; this command reads outcome snapshots, not raw
records.

Examples:
  # Yield for the default lookback window
  yieldline fpy

  # Yield for one station over the last week
  yieldline fpy --station TSP-E --start "7 days ago"

  # Export as CSV for a report
  yieldline fpy --output csv --output-file fpy.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteYieldSummary(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run yield summary", err)
		}
	},
}
