package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// topCmd ranks FAIL attempts along a chosen dimension.
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank FAIL attempts by carrier, fixture or failure message.",
	Long: `Count FAIL attempts in a time window and rank them along one dimension.

Dimensions:
  carrier - which carriers collect the most failures (bad trays, bad sockets)
  fixture - which fixtures fail the most units (drifting or damaged fixtures)
  failure - which failure messages dominate (systemic test or product issues)

Combine filters to drill down: --fixture restricts to one fixture before
grouping, --failure restricts to one failure message. This answers questions
like "which carriers fail on fixture 100101" or "where does 'OS Test' fail".

Examples:
  # Top failure messages for the last month
  yieldline top --dimension failure

  # Worst fixtures for one station over a week
  yieldline top --dimension fixture --station TSP-E --start "7 days ago"

  # Which carriers hit 'OS Test' failures on fixture 100101
  yieldline top --dimension carrier --fixture 100101 --failure "OS Test"

  # Export the full ranking to CSV
  yieldline top --dimension failure --limit 100 --output csv --output-file fails.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTopBreakdown(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run top breakdown", err)
		}
	},
}
