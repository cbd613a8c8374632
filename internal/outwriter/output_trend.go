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

// trendDayLayout labels 1-day buckets by their start date.
const trendDayLayout = "2006-01-02"

// WriteDailyTrend outputs a per-day yield trend, dispatching based on the
// output format configured.
func WriteDailyTrend(trend []schema.DailyYield, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, trend)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDailyTrendCSV(w, trend)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDailyTrendTable(w, trend, duration)
		}, "table")
	}
}

// writeDailyTrendTable generates and writes the human-readable table.
func writeDailyTrendTable(w io.Writer, trend []schema.DailyYield, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Input", "Pass", "Pass %", "Fail", "Fail %", "Retest", "Retest %", "Testing"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	totalInput := 0
	for _, day := range trend {
		totalInput += day.InputCount
		data = append(data, []string{
			day.Start.Format(trendDayLayout),
			strconv.Itoa(day.InputCount),
			strconv.Itoa(day.PassCount),
			formatPercent(day.PassRate),
			strconv.Itoa(day.FailCount),
			formatPercent(day.FailRate),
			strconv.Itoa(day.RetestCount),
			formatPercent(day.RetestRate),
			strconv.Itoa(day.TestingCount),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d days (total input: %d)\n", len(trend), totalInput); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

// writeDailyTrendCSV writes the trend in CSV format, one row per bucket.
func writeDailyTrendCSV(w io.Writer, trend []schema.DailyYield) error {
	header := []string{
		"start",
		"end",
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
		for _, day := range trend {
			row := append([]string{
				day.Start.Format(contract.DateTimeFormat),
				day.End.Format(contract.DateTimeFormat),
			}, yieldSummaryCSVRow(day.YieldSummary)...)
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
