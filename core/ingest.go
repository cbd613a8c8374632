package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// payloadColumn is the spreadsheet column whose cells hold JSON payloads.
const payloadColumn = "数据信息"

// Column names of the wide report export mode.
const (
	reportSerialColumn    = "Serial Number"
	reportResultColumn    = "Test Result"
	reportEndTimeColumn   = "Test End Time"
	reportFixtureColumn   = "Fixture ID"
	reportSWVersionColumn = "Test Software Version"
	reportFailMsgColumn   = "Fail Message"
)

// ExecuteIngest runs file ingestion for all configured input paths and prints
// a per-file summary. It is the main entry point for the 'ingest' command.
func ExecuteIngest(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	files, err := expandInputPaths(cfg.InputPaths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no input files found")
	}

	reports := ingestFiles(mgr.GetRecordStore(), files, cfg)

	var totalRows, totalInserted, totalDuplicate, totalDropped int
	for _, r := range reports {
		totalRows += r.Rows
		totalInserted += r.Inserted
		totalDuplicate += r.Duplicate
		totalDropped += r.Dropped
		fmt.Printf("%s: %d rows, %d inserted, %d duplicate, %d dropped\n",
			r.File, r.Rows, r.Inserted, r.Duplicate, r.Dropped)
	}
	fmt.Printf("Processed %d files in %v with %d workers (%d rows, %d inserted, %d duplicate, %d dropped)\n",
		len(files), time.Since(start), cfg.Workers, totalRows, totalInserted, totalDuplicate, totalDropped)
	return nil
}

// expandInputPaths resolves the configured paths into a flat list of CSV
// files. Directories contribute their immediate *.csv children.
func expandInputPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot stat input path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("cannot scan input directory %s: %w", p, err)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// ingestFiles processes all files in parallel using a worker pool. Target rows
// are keyed independently, so files never contend on anything but the store.
func ingestFiles(store contract.RecordStore, files []string, cfg *contract.Config) []schema.IngestReport {
	fileCh := make(chan string, len(files))
	reportCh := make(chan schema.IngestReport, len(files))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for f := range fileCh {
				report, err := IngestFile(store, f, cfg.Station)
				if err != nil {
					contract.LogWarn(fmt.Sprintf("Ingestion failed for %s", f), err)
				}
				reportCh <- report
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	wg.Wait()
	close(reportCh)

	reports := make([]schema.IngestReport, 0, len(files))
	for r := range reportCh {
		reports = append(reports, r)
	}
	return reports
}

// IngestFile decodes, projects, dedup-checks and appends every row of one
// source file. The file is removed afterwards regardless of outcome: an
// unparseable file is terminal garbage, not retry-eligible.
func IngestFile(store contract.RecordStore, path string, station string) (schema.IngestReport, error) {
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

	if idx, ok := columns[payloadColumn]; ok {
		family, known := schema.FamilyFromFilename(report.File)
		if !known {
			return report, fmt.Errorf("cannot derive station family from filename %s", report.File)
		}
		report.Family = family
		err = ingestPayloadRows(store, reader, idx, family, &report)
	} else if _, ok := columns[reportSerialColumn]; ok {
		err = ingestReportRows(store, reader, columns, station, &report)
	} else {
		err = fmt.Errorf("unrecognized column layout in %s", path)
	}
	return report, err
}

// headerIndex maps trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

// ingestPayloadRows handles the JSON-payload mode. One bad row never aborts
// the batch: decode and projection failures are logged and counted as dropped.
func ingestPayloadRows(store contract.RecordStore, reader *csv.Reader, payloadIdx int, family schema.StationFamily, report *schema.IngestReport) error {
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row read failed after %d rows: %w", report.Rows, err)
		}
		report.Rows++

		if payloadIdx >= len(row) {
			report.Dropped++
			contract.LogWarn("Payload cell missing", fmt.Errorf("row %d has %d columns", report.Rows, len(row)))
			continue
		}

		raw, err := decodeAttempt(family, row[payloadIdx])
		if err != nil {
			report.Dropped++
			contract.LogWarn(fmt.Sprintf("Row %d dropped", report.Rows), err)
			continue
		}
		appendProjected(store, raw, report)
	}
}

// ingestReportRows handles the wide report export mode. The export carries no
// station column, so the configured station tag is applied to every row.
func ingestReportRows(store contract.RecordStore, reader *csv.Reader, columns map[string]int, station string, report *schema.IngestReport) error {
	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row read failed after %d rows: %w", report.Rows, err)
		}
		report.Rows++

		raw := rawAttempt{
			FixtureID:      cell(row, reportFixtureColumn),
			StopTime:       cell(row, reportEndTimeColumn),
			Result:         cell(row, reportResultColumn),
			SerialNumber:   cell(row, reportSerialColumn),
			SWVersion:      cell(row, reportSWVersionColumn),
			FailureMessage: cell(row, reportFailMsgColumn),
			TestStation:    station,
		}
		appendProjected(store, raw, report)
	}
}

// appendProjected projects one attempt and appends the survivor, updating the
// per-file counters.
func appendProjected(store contract.RecordStore, raw rawAttempt, report *schema.IngestReport) {
	rec, err := projectAttempt(raw)
	if err != nil {
		report.Dropped++
		contract.LogWarn(fmt.Sprintf("Row %d dropped", report.Rows), err)
		return
	}
	inserted, err := store.AppendRecord(rec)
	if err != nil {
		report.Dropped++
		contract.LogWarn(fmt.Sprintf("Append failed for serial %s", rec.SerialNumber), err)
		return
	}
	if inserted {
		report.Inserted++
	} else {
		report.Duplicate++
	}
}
