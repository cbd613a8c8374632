package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/outwriter"
	"github.com/mfglab/yieldline/schema"
)

// keySpaceMarker replaces spaces when deriving the lookup key from a failing
// test name. The lookup table uses the same marker in its Key column.
const keySpaceMarker = "^^"

// Column names of the category lookup table.
const (
	lookupKeyColumn    = "Key"
	lookupCatColumn    = "Category"
	lookupSubColumn    = "Sub Category"
	lookupSubSubColumn = "Sub Sub Category"
)

// Column names of the fail-record export mode.
const (
	failSerialColumn       = "SerialNumber"
	failStatusColumn       = "Test Pass/Fail Status"
	failEndTimeColumn      = "EndTime"
	failVersionColumn      = "Version"
	failTestsColumn        = "List of Failing Tests"
	failCarrierColumn      = "CARRIER_PN"
	failFixtureColumn      = "FIXTURE_ID"
	failCarrierTotalColumn = "CARRIER_TOTAL_TEST"
	failCarrierFailColumn  = "CARRIER_UNIT_FAIL"
)

// FailCategory is the three-level taxonomy assigned to one failing test key.
type FailCategory struct {
	Category       string
	SubCategory    string
	SubSubCategory string
}

// CategoryLookup maps failing-test keys to their taxonomy entries.
type CategoryLookup map[string]FailCategory

// LoadCategoryLookup reads the external Key->Category mapping table.
func LoadCategoryLookup(path string) (CategoryLookup, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open lookup table %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read lookup header: %w", err)
	}
	columns := headerIndex(header)
	keyIdx, ok := columns[lookupKeyColumn]
	if !ok {
		return nil, fmt.Errorf("lookup table %s has no %q column", path, lookupKeyColumn)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	lookup := make(CategoryLookup)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return lookup, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lookup row read failed: %w", err)
		}
		if keyIdx >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[keyIdx])
		if key == "" {
			continue
		}
		lookup[key] = FailCategory{
			Category:       cell(row, lookupCatColumn),
			SubCategory:    cell(row, lookupSubColumn),
			SubSubCategory: cell(row, lookupSubSubColumn),
		}
	}
}

// categoryKey derives the lookup key from a raw failing-test list: the first
// ';'-separated token with spaces replaced by the marker.
func categoryKey(failingTests string) string {
	first, _, _ := strings.Cut(failingTests, ";")
	return strings.ReplaceAll(strings.TrimSpace(first), " ", keySpaceMarker)
}

// ExecuteFailIngest loads the category lookup and ingests every configured
// fail-record export. Entry point for the 'failcat ingest' command.
func ExecuteFailIngest(cfg *contract.Config, mgr contract.StoreManager) error {
	if cfg.LookupPath == "" {
		return errors.New("--lookup is required for fail-record ingestion")
	}
	lookup, err := LoadCategoryLookup(cfg.LookupPath)
	if err != nil {
		return err
	}

	files, err := expandInputPaths(cfg.InputPaths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no input files found")
	}

	start := time.Now()
	var totalRows, totalInserted, totalDuplicate int
	for _, f := range files {
		report, err := IngestFailFile(mgr.GetFailStore(), f, lookup)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Ingestion failed for %s", f), err)
		}
		totalRows += report.Rows
		totalInserted += report.Inserted
		totalDuplicate += report.Duplicate
		fmt.Printf("%s: %d rows, %d inserted, %d duplicate\n",
			report.File, report.Rows, report.Inserted, report.Duplicate)
	}
	fmt.Printf("Processed %d files in %v (%d rows, %d inserted, %d duplicate)\n",
		len(files), time.Since(start), totalRows, totalInserted, totalDuplicate)
	return nil
}

// IngestFailFile categorizes and appends every FAIL row of one fail-record
// export. PASS rows are filtered out before categorization; a failing-test
// key without a lookup entry leaves the categories empty. The source file is
// removed afterwards regardless of outcome.
func IngestFailFile(store contract.FailStore, path string, lookup CategoryLookup) (schema.IngestReport, error) {
	defer func() { _ = os.Remove(path) }()

	report := schema.IngestReport{File: filepath.Base(path)}

	file, err := os.Open(path)
	if err != nil {
		return report, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return report, fmt.Errorf("cannot read header of %s: %w", path, err)
	}
	columns := headerIndex(header)
	if _, ok := columns[failSerialColumn]; !ok {
		return report, fmt.Errorf("%s has no %q column", path, failSerialColumn)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("row read failed after %d rows: %w", report.Rows, err)
		}
		report.Rows++

		status := strings.ToUpper(cell(row, failStatusColumn))
		if status == string(schema.ResultPass) {
			continue
		}

		serial := cell(row, failSerialColumn)
		if serial == "" {
			report.Dropped++
			contract.LogWarn("Row dropped", fmt.Errorf("row %d has an empty serial number", report.Rows))
			continue
		}
		endTime, err := parseStopTime(cell(row, failEndTimeColumn))
		if err != nil {
			report.Dropped++
			contract.LogWarn(fmt.Sprintf("Row %d dropped", report.Rows), err)
			continue
		}

		rec := schema.FailRecord{
			SerialNumber:     serial,
			Status:           status,
			EndTime:          endTime,
			SWVersion:        cell(row, failVersionColumn),
			FailingTests:     cell(row, failTestsColumn),
			CarrierSerial:    cell(row, failCarrierColumn),
			FixtureID:        cell(row, failFixtureColumn),
			CarrierTotalTest: parseCount(cell(row, failCarrierTotalColumn)),
			CarrierUnitFail:  parseCount(cell(row, failCarrierFailColumn)),
		}

		key := categoryKey(rec.FailingTests)
		if category, ok := lookup[key]; ok {
			rec.Category = category.Category
			rec.SubCategory = category.SubCategory
			rec.SubSubCategory = category.SubSubCategory
		} else if key != "" {
			contract.LogWarn("Uncategorized failing test", fmt.Errorf("no lookup entry for key %q", key))
		}

		inserted, err := store.AppendFailRecord(rec)
		if err != nil {
			report.Dropped++
			contract.LogWarn(fmt.Sprintf("Append failed for serial %s", serial), err)
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Duplicate++
		}
	}
}

// parseCount parses carrier counters, treating blanks and garbage as zero the
// way the upstream export does.
func parseCount(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// ExecuteFailCategories prints the top failure sub-categories, or the
// fixture/carrier distribution of one sub-category when a filter is given.
// Entry point for the 'failcat top' command.
func ExecuteFailCategories(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	if cfg.FailureMessage != "" {
		counts, err := CountsForCategory(mgr.GetRecordStore(), mgr.GetFailStore(),
			cfg.Dimension, cfg.FailureMessage, cfg.StartTime, cfg.EndTime, cfg.ResultLimit)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s counts for sub-category %s", cfg.Dimension, cfg.FailureMessage)
		return outwriter.WriteRankedCounts(title, counts, cfg, time.Since(start))
	}

	counts, err := TopFailCategories(mgr.GetRecordStore(), mgr.GetFailStore(),
		cfg.StartTime, cfg.EndTime, cfg.ResultLimit)
	if err != nil {
		return err
	}
	return outwriter.WriteCategoryCounts("Top failure sub-categories", counts, cfg, time.Since(start))
}

// TopFailCategories ranks failure sub-categories over a window, excluding
// units that are confirmed failures in the canonical record table and
// counting each remaining unit once. Rates are percentages of the window's
// total test input.
func TopFailCategories(records contract.RecordStore, fails contract.FailStore, start, end time.Time, limit int) ([]schema.CategoryCount, error) {
	rows, err := filteredFailRows(records, fails, start, end)
	if err != nil {
		return nil, err
	}

	input, err := records.CountInWindow("", start, end)
	if err != nil {
		return nil, fmt.Errorf("cannot count window input: %w", err)
	}

	byCategory := make(map[string]int)
	for _, row := range rows {
		byCategory[row.SubCategory]++
	}

	counts := make([]schema.CategoryCount, 0, len(byCategory))
	for value, count := range byCategory {
		rate := 0.0
		if input > 0 {
			rate = float64(count) / float64(input) * 100
		}
		counts = append(counts, schema.CategoryCount{Value: value, Count: count, Rate: rate})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// CountsForCategory ranks fixtures or carriers within one failure
// sub-category, with the same exclusion and per-unit dedup as the top
// breakdown.
func CountsForCategory(records contract.RecordStore, fails contract.FailStore, dim schema.Dimension, subCategory string, start, end time.Time, limit int) ([]schema.RankedCount, error) {
	var field func(schema.FailRecord) string
	switch dim {
	case schema.DimFixture:
		field = func(r schema.FailRecord) string { return r.FixtureID }
	case schema.DimCarrier:
		field = func(r schema.FailRecord) string { return r.CarrierSerial }
	default:
		return nil, fmt.Errorf("unsupported dimension %q for category breakdown", dim)
	}

	rows, err := filteredFailRows(records, fails, start, end)
	if err != nil {
		return nil, err
	}

	byValue := make(map[string]int)
	for _, row := range rows {
		if row.SubCategory == subCategory {
			byValue[field(row)]++
		}
	}

	counts := make([]schema.RankedCount, 0, len(byValue))
	for value, count := range byValue {
		counts = append(counts, schema.RankedCount{Value: value, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// filteredFailRows loads the window's fail rows, drops units that show a FAIL
// attempt in the canonical record table and keeps one row per serial (the
// earliest in the window).
func filteredFailRows(records contract.RecordStore, fails contract.FailStore, start, end time.Time) ([]schema.FailRecord, error) {
	failSerials, err := records.FailSerials("", start, end)
	if err != nil {
		return nil, fmt.Errorf("cannot list confirmed-fail serials: %w", err)
	}
	confirmed := make(map[string]struct{}, len(failSerials))
	for _, serial := range failSerials {
		confirmed[serial] = struct{}{}
	}

	rows, err := fails.RecordsInWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("cannot load fail records: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	filtered := make([]schema.FailRecord, 0, len(rows))
	for _, row := range rows {
		if _, ok := confirmed[row.SerialNumber]; ok {
			continue
		}
		if _, ok := seen[row.SerialNumber]; ok {
			continue
		}
		seen[row.SerialNumber] = struct{}{}
		filtered = append(filtered, row)
	}
	return filtered, nil
}
