// Package monitoring summarizes scan history into health metrics and
// evaluates them against alert thresholds.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of scan health.
type MetricsSnapshot struct {
	// Scan metrics (within lookback window).
	ScansTotal     int     `json:"scans_total"`
	ScansComplete  int     `json:"scans_complete"`
	ScansFailed    int     `json:"scans_failed"`
	ScansInFlight  int     `json:"scans_in_flight"`
	FailRate       float64 `json:"fail_rate"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	AvgRecognition float64 `json:"avg_recognition"`
	AvgTokens      int     `json:"avg_tokens"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of scan metrics over the given lookback
// window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	scans, err := c.store.ListScans(ctx, store.ScanFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list scans")
	}

	snap.ScansTotal = len(scans)
	var totalCost, totalRecognition float64
	var totalTokens, analyzed int

	for _, s := range scans {
		switch s.Status {
		case model.ScanStatusComplete:
			snap.ScansComplete++
		case model.ScanStatusFailed:
			snap.ScansFailed++
		default:
			snap.ScansInFlight++
		}
		if s.Result != nil {
			totalCost += s.Result.TotalCostUSD
			totalTokens += s.Result.TotalTokens.Total()
			if s.Result.Analysis != nil {
				totalRecognition += float64(s.Result.Analysis.OverallRecognition)
				analyzed++
			}
		}
	}

	snap.TotalCostUSD = totalCost
	if snap.ScansTotal > 0 {
		finished := snap.ScansComplete + snap.ScansFailed
		if finished > 0 {
			snap.FailRate = float64(snap.ScansFailed) / float64(finished)
		}
		snap.AvgTokens = totalTokens / snap.ScansTotal
	}
	if analyzed > 0 {
		snap.AvgRecognition = totalRecognition / float64(analyzed)
	}

	return snap, nil
}
