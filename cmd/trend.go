package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// trendCmd reports the day-by-day yield trend.
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the day-by-day first-pass-yield trend for a time window.",
	Long: `Split a time window into one-day buckets and compute first-pass-yield numbers
for each day.

Useful for:
- Spotting the day a yield regression started
- Confirming a fixture or software fix actually moved the needle
- Weekly yield reviews without a spreadsheet

Each bucket starts at the same time of day as the window start. The final
bucket is included even when the window does not cover a full day.

Examples:
  # Daily trend over the default lookback window
  yieldline trend

  # Two-week trend for one station
  yieldline trend --station TSP-E --start "14 days ago"

  # JSON output for dashboards
  yieldline trend --output json --output-file trend.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDailyTrend(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run daily trend", err)
		}
	},
}
