package model

import "time"

// ScanStatus represents the current state of a visibility scan.
type ScanStatus string

const (
	ScanStatusQueued      ScanStatus = "queued"
	ScanStatusGenerating  ScanStatus = "generating"
	ScanStatusQuerying    ScanStatus = "querying"
	ScanStatusAggregating ScanStatus = "aggregating"
	ScanStatusComplete    ScanStatus = "complete"
	ScanStatusFailed      ScanStatus = "failed"
)

// Scan represents a single visibility scan for a business profile.
type Scan struct {
	ID        string          `json:"id"`
	Profile   BusinessProfile `json:"profile"`
	Status    ScanStatus      `json:"status"`
	Result    *ScanResult     `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ScanResult holds the final outcome of a scan: the aggregate analysis
// plus the raw per-provider results it was derived from.
type ScanResult struct {
	Analysis     *Analysis        `json:"analysis,omitempty"`
	Results      []ProviderResult `json:"results"`
	Queries      []Query          `json:"queries"`
	Providers    []string         `json:"providers"`
	TotalTokens  TokenUsage       `json:"total_tokens"`
	TotalCostUSD float64          `json:"total_cost_usd"`
	DurationMs   int64            `json:"duration_ms"`
	Error        string           `json:"error,omitempty"`
}

// UsageRecord is one cost-tracking entry emitted after a successful
// provider call.
type UsageRecord struct {
	ID         string     `json:"id"`
	ScanID     string     `json:"scan_id"`
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	QueryIndex int        `json:"query_index"`
	Usage      TokenUsage `json:"usage"`
	CostUSD    float64    `json:"cost_usd"`
	RecordedAt time.Time  `json:"recorded_at"`
}
