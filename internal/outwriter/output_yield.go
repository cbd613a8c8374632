package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// WriteYieldSummary outputs a windowed yield summary, dispatching based on the
// output format configured.
func WriteYieldSummary(summary schema.YieldSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYieldSummaryCSV(w, summary)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYieldSummaryTable(w, summary, cfg, duration)
		}, "table")
	}
}

// writeYieldSummaryTable generates and writes the human-readable table.
func writeYieldSummaryTable(w io.Writer, summary schema.YieldSummary, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Outcome", "Count", "Rate"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainOutcomeLabel
	if cfg.UseColors {
		label = contract.GetColorOutcomeLabel
	}

	data := [][]string{
		{label(schema.OutcomePass), strconv.Itoa(summary.PassCount), formatPercent(summary.PassRate)},
		{label(schema.OutcomeFail), strconv.Itoa(summary.FailCount), formatPercent(summary.FailRate)},
		{label(schema.OutcomeRetest), strconv.Itoa(summary.RetestCount), formatPercent(summary.RetestRate)},
		{label(schema.OutcomeTesting), strconv.Itoa(summary.TestingCount), "-"},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	window := fmt.Sprintf("%s .. %s",
		cfg.StartTime.Format(contract.DateTimeFormat),
		cfg.EndTime.Format(contract.DateTimeFormat))
	if _, err := fmt.Fprintf(w, "Input: %d units over %s\n", summary.InputCount, window); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

// writeYieldSummaryCSV writes the summary as a single CSV row. Rates stay as
// fractions so downstream tools can aggregate them.
func writeYieldSummaryCSV(w io.Writer, summary schema.YieldSummary) error {
	header := []string{
		"input_count",
		"pass_count",
		"pass_rate",
		"fail_count",
		"fail_rate",
		"retest_count",
		"retest_rate",
		"testing_count",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		return csvWriter.Write(yieldSummaryCSVRow(summary))
	})
}

// yieldSummaryCSVRow formats one summary as a CSV row.
func yieldSummaryCSVRow(summary schema.YieldSummary) []string {
	return []string{
		strconv.Itoa(summary.InputCount),
		strconv.Itoa(summary.PassCount),
		strconv.FormatFloat(summary.PassRate, 'f', 4, 64),
		strconv.Itoa(summary.FailCount),
		strconv.FormatFloat(summary.FailRate, 'f', 4, 64),
		strconv.Itoa(summary.RetestCount),
		strconv.FormatFloat(summary.RetestRate, 'f', 4, 64),
		strconv.Itoa(summary.TestingCount),
	}
}
