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

// WriteRankedCounts outputs a ranked breakdown, dispatching based on the
// output format configured.
func WriteRankedCounts(title string, counts []schema.RankedCount, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, counts)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankedCountsCSV(w, counts)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankedCountsTable(w, title, counts, cfg, duration)
		}, "table")
	}
}

// writeRankedCountsTable generates and writes the human-readable table.
func writeRankedCountsTable(w io.Writer, title string, counts []schema.RankedCount, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Value", "Count"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxValueWidth(cfg)
	var data [][]string
	for i, c := range counts {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateValue(c.Value, maxWidth),
			strconv.Itoa(c.Count),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing %d entries. Computed in %v\n", len(counts), duration)
	return err
}

// writeRankedCountsCSV writes the breakdown in CSV format.
func writeRankedCountsCSV(w io.Writer, counts []schema.RankedCount) error {
	header := []string{"rank", "value", "count"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, c := range counts {
			row := []string{strconv.Itoa(i + 1), c.Value, strconv.Itoa(c.Count)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCategoryCounts outputs a failure-category breakdown with rates,
// dispatching based on the output format configured.
func WriteCategoryCounts(title string, counts []schema.CategoryCount, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, counts)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCategoryCountsCSV(w, counts)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCategoryCountsTable(w, title, counts, cfg, duration)
		}, "table")
	}
}

// writeCategoryCountsTable generates and writes the human-readable table.
// Category rates arrive as percentages of the window input.
func writeCategoryCountsTable(w io.Writer, title string, counts []schema.CategoryCount, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Value", "Count", "Rate"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxValueWidth(cfg)
	var data [][]string
	for i, c := range counts {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateValue(c.Value, maxWidth),
			strconv.Itoa(c.Count),
			fmt.Sprintf("%.4f%%", c.Rate),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing %d entries. Computed in %v\n", len(counts), duration)
	return err
}

// writeCategoryCountsCSV writes the breakdown in CSV format.
func writeCategoryCountsCSV(w io.Writer, counts []schema.CategoryCount) error {
	header := []string{"rank", "value", "count", "rate"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, c := range counts {
			row := []string{
				strconv.Itoa(i + 1),
				c.Value,
				strconv.Itoa(c.Count),
				strconv.FormatFloat(c.Rate, 'f', 4, 64),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
