package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

// classifyCmd derives per-unit outcomes from raw attempt histories.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Derive a per-unit outcome from each serial's attempt history.",
	Long: `Walk every serial number in the test-record store and classify its attempt
history into a single outcome:

- PASS          passed on the first attempt, or on the final allowed attempt
- RETEST        failed at least once, then passed within the attempt budget
- FAIL          exhausted the attempt budget without passing
- TO_BE_TESTING still mid-flow; the unit is expected back at the station

Serials that already have an outcome snapshot are skipped, so the command is
safe to run repeatedly as new records arrive. Use --station to classify only
the attempts of a single station.

Examples:
  # Classify everything new since the last run
  yieldline classify

  # Classify one station's units only
  yieldline classify --station TSP-E`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteClassify(cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot run classification", err)
		}
	},
}
