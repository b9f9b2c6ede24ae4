package cost

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Recorder is the fire-and-forget usage sink a provider call reports
// to after it succeeds. Implementations must be safe for concurrent
// use; they sit outside the adapters' control flow so tests can stub
// them.
type Recorder interface {
	Record(provider, modelID string, queryIndex int, usage model.TokenUsage)
}

// Collector accumulates usage records for one scan and computes
// running totals. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	scanID  string
	calc    *Calculator
	records []model.UsageRecord
	tokens  model.TokenUsage
	costUSD float64
}

// NewCollector creates a Collector bound to one scan.
func NewCollector(scanID string, calc *Calculator) *Collector {
	return &Collector{scanID: scanID, calc: calc}
}

// Record implements Recorder.
func (c *Collector) Record(provider, modelID string, queryIndex int, usage model.TokenUsage) {
	callCost := c.calc.Call(provider, modelID, usage)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, model.UsageRecord{
		ID:         uuid.New().String(),
		ScanID:     c.scanID,
		Provider:   provider,
		Model:      modelID,
		QueryIndex: queryIndex,
		Usage:      usage,
		CostUSD:    callCost,
		RecordedAt: time.Now().UTC(),
	})
	c.tokens.Add(usage)
	c.costUSD += callCost
}

// Records returns a copy of the accumulated usage records.
func (c *Collector) Records() []model.UsageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.UsageRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Totals returns accumulated token usage and cost.
func (c *Collector) Totals() (model.TokenUsage, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens, c.costUSD
}

// LogTotals emits the scan's usage summary with structured fields.
func (c *Collector) LogTotals() {
	usage, costUSD := c.Totals()
	zap.L().Info("cost attribution",
		zap.String("scan_id", c.scanID),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Float64("estimated_cost_usd", costUSD),
	)
}
