package scan

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/cost"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/provider"
	"github.com/sells-group/visibility-cli/internal/query"
	"github.com/sells-group/visibility-cli/internal/scorer"
	"github.com/sells-group/visibility-cli/internal/store"
)

// Pipeline runs a full visibility scan: generate the query list, fan
// it out across every registered provider, score and aggregate the
// responses, and persist the result with its usage records.
type Pipeline struct {
	store    store.Store
	registry *provider.Registry
	scorer   *scorer.Scorer
	calc     *cost.Calculator
	cfg      ExecutorConfig
	progress Progress
}

// NewPipeline creates a Pipeline.
func NewPipeline(st store.Store, registry *provider.Registry, sc *scorer.Scorer, calc *cost.Calculator, cfg ExecutorConfig) *Pipeline {
	return &Pipeline{
		store:    st,
		registry: registry,
		scorer:   sc,
		calc:     calc,
		cfg:      cfg,
	}
}

// WithProgress sets a per-call completion callback forwarded to the
// executor.
func (p *Pipeline) WithProgress(fn Progress) *Pipeline {
	p.progress = fn
	return p
}

// Run executes a scan for the given profile. Provider failures are
// contained inside the executor and never fail the scan; only store
// errors do.
func (p *Pipeline) Run(ctx context.Context, profile model.BusinessProfile) (*model.Scan, error) {
	start := time.Now()

	scan, err := p.store.CreateScan(ctx, profile)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create scan")
	}

	log := zap.L().With(
		zap.String("scan_id", scan.ID),
		zap.String("business", profile.Name),
		zap.String("domain", profile.Domain),
	)
	log.Info("pipeline: scan started")

	if err := p.transition(ctx, scan, model.ScanStatusGenerating); err != nil {
		return nil, err
	}
	queries := query.BuildQueries(profile)
	log.Info("pipeline: queries generated", zap.Int("count", len(queries)))

	collector := cost.NewCollector(scan.ID, p.calc)
	exec := NewExecutor(p.registry, p.scorer, collector, p.cfg).WithProgress(p.progress)

	if err := p.transition(ctx, scan, model.ScanStatusQuerying); err != nil {
		return nil, err
	}
	results := exec.Run(ctx, queries)

	if err := p.transition(ctx, scan, model.ScanStatusAggregating); err != nil {
		return nil, err
	}
	analysis := Aggregate(queries, results)

	if err := p.store.SaveUsage(ctx, collector.Records()); err != nil {
		p.fail(ctx, scan, err)
		return nil, eris.Wrap(err, "pipeline: save usage")
	}

	tokens, costUSD := collector.Totals()
	result := &model.ScanResult{
		Analysis:     &analysis,
		Results:      results,
		Queries:      queries,
		Providers:    p.registry.IDs(),
		TotalTokens:  tokens,
		TotalCostUSD: costUSD,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	if err := p.store.UpdateScanResult(ctx, scan.ID, result); err != nil {
		p.fail(ctx, scan, err)
		return nil, eris.Wrap(err, "pipeline: update scan result")
	}

	scan.Status = model.ScanStatusComplete
	scan.Result = result
	collector.LogTotals()
	log.Info("pipeline: scan complete",
		zap.Int("results", len(results)),
		zap.Int("overall_recognition", analysis.OverallRecognition),
		zap.Int64("duration_ms", result.DurationMs),
	)
	return scan, nil
}

func (p *Pipeline) transition(ctx context.Context, scan *model.Scan, status model.ScanStatus) error {
	if err := p.store.UpdateScanStatus(ctx, scan.ID, status); err != nil {
		return eris.Wrapf(err, "pipeline: transition to %s", status)
	}
	scan.Status = status
	return nil
}

// fail best-effort marks the scan failed; the original error is what
// the caller reports.
func (p *Pipeline) fail(ctx context.Context, scan *model.Scan, cause error) {
	result := &model.ScanResult{Error: cause.Error()}
	if err := p.store.UpdateScanResult(ctx, scan.ID, result); err != nil {
		zap.L().Warn("pipeline: mark scan failed", zap.String("scan_id", scan.ID), zap.Error(err))
		return
	}
	scan.Status = model.ScanStatusFailed
	scan.Result = result
}
