package core

import (
	"fmt"
	"time"

	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/outwriter"
	"github.com/mfglab/yieldline/schema"
)

// ExecuteYieldSummary computes first-pass yield over the configured window and
// prints it. Entry point for the 'fpy' command.
func ExecuteYieldSummary(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	summary, err := GetYieldSummary(mgr.GetOutcomeStore(), cfg.Station, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return err
	}
	return outwriter.WriteYieldSummary(summary, cfg, time.Since(start))
}

// ExecuteDailyTrend computes per-day yield buckets over the configured window
// and prints them. Entry point for the 'trend' command.
func ExecuteDailyTrend(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	trend, err := GetDailyTrend(mgr.GetOutcomeStore(), cfg.Station, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return err
	}
	return outwriter.WriteDailyTrend(trend, cfg, time.Since(start))
}

// ExecuteTopBreakdown ranks FAIL attempts over the configured window along
// the configured dimension. Entry point for the 'top' command.
func ExecuteTopBreakdown(cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	query := schema.TopQuery{
		Start:          cfg.StartTime,
		End:            cfg.EndTime,
		Station:        cfg.Station,
		Fixture:        cfg.Fixture,
		FailureMessage: cfg.FailureMessage,
		Limit:          cfg.ResultLimit,
	}
	counts, err := mgr.GetRecordStore().TopCounts(cfg.Dimension, query)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Top FAIL counts by %s", cfg.Dimension)
	return outwriter.WriteRankedCounts(title, counts, cfg, time.Since(start))
}

// GetYieldSummary derives windowed yield rates from outcome counts. A window
// with no outcome rows yields the zero value rather than an error, and rates
// are fractions in [0, 1].
func GetYieldSummary(store contract.OutcomeStore, station string, start, end time.Time) (schema.YieldSummary, error) {
	counts, err := store.CountByOutcome(station, start, end)
	if err != nil {
		return schema.YieldSummary{}, fmt.Errorf("cannot count outcomes: %w", err)
	}
	if counts.Input == 0 {
		return schema.YieldSummary{}, nil
	}

	input := float64(counts.Input)
	return schema.YieldSummary{
		InputCount:   counts.Input,
		PassCount:    counts.Pass,
		PassRate:     float64(counts.Pass) / input,
		FailCount:    counts.Fail,
		FailRate:     float64(counts.Fail) / input,
		RetestCount:  counts.Retest,
		RetestRate:   float64(counts.Retest) / input,
		TestingCount: counts.Testing,
	}, nil
}

// GetDailyTrend splits [start, end] into 1-day buckets and computes the yield
// summary of each. The loop is inclusive of the end boundary, so a window
// ending exactly on a bucket start still emits that bucket.
func GetDailyTrend(store contract.OutcomeStore, station string, start, end time.Time) ([]schema.DailyYield, error) {
	var trend []schema.DailyYield
	for current := start; !current.After(end); current = current.Add(24 * time.Hour) {
		bucketEnd := current.Add(24 * time.Hour)
		summary, err := GetYieldSummary(store, station, current, bucketEnd)
		if err != nil {
			return nil, err
		}
		trend = append(trend, schema.DailyYield{
			Start:        current,
			End:          bucketEnd,
			YieldSummary: summary,
		})
	}
	return trend, nil
}
