package core

import (
	"fmt"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// maxAttempts is the retest allowance: a unit that has not passed after this
// many attempts is a confirmed failure.
const maxAttempts = 4

// ClassifyReport summarizes one classification run.
type ClassifyReport struct {
	Classified int
	Skipped    int
	Counts     map[schema.OutcomeState]int
}

// ExecuteClassify derives an outcome row for every unclassified unit and
// prints the state distribution. Entry point for the 'classify' command.
func ExecuteClassify(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	report, err := ClassifyOutcomes(mgr.GetRecordStore(), mgr.GetOutcomeStore(), cfg.Station)
	if err != nil {
		return err
	}

	fmt.Printf("Classified %d units (%d already classified) in %v\n",
		report.Classified, report.Skipped, time.Since(start))
	for _, state := range []schema.OutcomeState{schema.OutcomePass, schema.OutcomeFail, schema.OutcomeRetest, schema.OutcomeTesting} {
		fmt.Printf("  %s: %d\n", state, report.Counts[state])
	}
	return nil
}

// ClassifyOutcomes walks every distinct serial, classifies its attempt
// history and appends the outcome snapshot. Serials that already hold an
// outcome row are skipped; their snapshot is never recomputed.
func ClassifyOutcomes(records contract.RecordStore, outcomes contract.OutcomeStore, station string) (ClassifyReport, error) {
	report := ClassifyReport{Counts: make(map[schema.OutcomeState]int)}

	serials, err := records.DistinctSerials(station)
	if err != nil {
		return report, fmt.Errorf("cannot list serials: %w", err)
	}

	for _, serial := range serials {
		classified, err := outcomes.HasSerial(serial)
		if err != nil {
			return report, fmt.Errorf("cannot check outcome for serial %s: %w", serial, err)
		}
		if classified {
			report.Skipped++
			continue
		}

		history, err := records.HistoryForSerial(station, serial)
		if err != nil {
			return report, fmt.Errorf("cannot load history for serial %s: %w", serial, err)
		}
		if len(history) == 0 {
			continue
		}

		outcome := classifyHistory(history)
		rec := schema.OutcomeRecord{
			SerialNumber: serial,
			LastStopTime: history[0].StopTime,
			Outcome:      outcome,
			TestStation:  history[0].TestStation,
		}
		if err := outcomes.AppendOutcome(rec); err != nil {
			return report, fmt.Errorf("cannot store outcome for serial %s: %w", serial, err)
		}
		report.Classified++
		report.Counts[outcome]++
	}
	return report, nil
}

// classifyHistory applies the count-based outcome policy to one unit's
// attempt history, ordered most recent first. Only the attempt count bucket
// and whether the latest attempt passed matter.
func classifyHistory(history []schema.TestRecord) schema.OutcomeState {
	if len(history) == 0 {
		return schema.OutcomeTesting
	}
	latestPass := history[0].Result == string(schema.ResultPass)

	switch n := len(history); {
	case n == 1:
		if latestPass {
			return schema.OutcomePass
		}
		return schema.OutcomeTesting
	case n < maxAttempts:
		if latestPass {
			return schema.OutcomeRetest
		}
		return schema.OutcomeTesting
	case n == maxAttempts:
		if latestPass {
			return schema.OutcomePass
		}
		return schema.OutcomeFail
	default:
		return schema.OutcomeFail
	}
}
