package monitoring

import (
	"fmt"
	"time"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertScanFailureRate AlertType = "scan_failure_rate"
	AlertCostOverrun     AlertType = "cost_overrun"
)

// Alert represents one threshold breach.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Thresholds configures alert evaluation. Zero values disable the
// corresponding check.
type Thresholds struct {
	MaxFailRate    float64 `yaml:"max_fail_rate" mapstructure:"max_fail_rate"`
	MaxCostUSD     float64 `yaml:"max_cost_usd" mapstructure:"max_cost_usd"`
	MinFinishedFor int     `yaml:"min_finished_for" mapstructure:"min_finished_for"`
}

// Evaluate checks a snapshot against thresholds and returns any
// breaches. The fail-rate check is skipped until at least
// MinFinishedFor scans have finished, so a single early failure does
// not trip it.
func Evaluate(snap *MetricsSnapshot, t Thresholds) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	finished := snap.ScansComplete + snap.ScansFailed
	if t.MaxFailRate > 0 && finished >= t.MinFinishedFor && snap.FailRate > t.MaxFailRate {
		alerts = append(alerts, Alert{
			Type:     AlertScanFailureRate,
			Severity: "critical",
			Message: fmt.Sprintf("scan failure rate %.0f%% exceeds threshold %.0f%% over last %dh",
				snap.FailRate*100, t.MaxFailRate*100, snap.LookbackHours),
			Details: map[string]any{
				"failed":   snap.ScansFailed,
				"finished": finished,
			},
			Timestamp: now,
		})
	}

	if t.MaxCostUSD > 0 && snap.TotalCostUSD > t.MaxCostUSD {
		alerts = append(alerts, Alert{
			Type:     AlertCostOverrun,
			Severity: "warning",
			Message: fmt.Sprintf("scan spend $%.2f exceeds budget $%.2f over last %dh",
				snap.TotalCostUSD, t.MaxCostUSD, snap.LookbackHours),
			Details: map[string]any{
				"total_cost_usd": snap.TotalCostUSD,
			},
			Timestamp: now,
		})
	}

	return alerts
}
