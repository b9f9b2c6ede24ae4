package scan

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/visibility-cli/internal/cost"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/provider"
	"github.com/sells-group/visibility-cli/internal/scorer"
)

// Progress is invoked after every individual (query, provider) pair
// resolves, with the monotonic completion count and the fixed total.
// Invocation order does not match query order.
type Progress func(completed, total int)

// ExecutorConfig tunes the fan-out behavior.
type ExecutorConfig struct {
	// MaxOutputTokens caps the length of each generated response.
	MaxOutputTokens int

	// CallTimeout bounds a single provider call. Zero means no
	// per-call timeout; the call is bounded only by the surrounding
	// context.
	CallTimeout time.Duration

	// ProviderRPS rate-limits calls per provider. Zero means
	// unlimited.
	ProviderRPS   float64
	ProviderBurst int
}

// Executor fans a query list out across every registered provider.
// Queries for one provider run concurrently with each other, and
// providers run in parallel with each other. A failed call never
// cancels or blocks the rest of the run.
type Executor struct {
	registry *provider.Registry
	scorer   *scorer.Scorer
	recorder cost.Recorder
	cfg      ExecutorConfig
	progress Progress
}

// NewExecutor creates an Executor.
func NewExecutor(registry *provider.Registry, sc *scorer.Scorer, recorder cost.Recorder, cfg ExecutorConfig) *Executor {
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 500
	}
	if cfg.ProviderBurst <= 0 {
		cfg.ProviderBurst = 1
	}
	return &Executor{
		registry: registry,
		scorer:   sc,
		recorder: recorder,
		cfg:      cfg,
	}
}

// WithProgress sets the completion callback.
func (e *Executor) WithProgress(fn Progress) *Executor {
	e.progress = fn
	return e
}

// Run executes every (query, provider) pair and returns exactly
// len(queries) × provider-count results, sorted back into input query
// order (and provider registration order within each query block).
func (e *Executor) Run(ctx context.Context, queries []model.Query) []model.ProviderResult {
	providers := e.registry.All()
	total := len(queries) * len(providers)
	if total == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		results   = make([]model.ProviderResult, 0, total)
		completed atomic.Int64
	)

	collect := func(r model.ProviderResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()

		n := completed.Add(1)
		if e.progress != nil {
			e.progress(int(n), total)
		}
	}

	var g errgroup.Group
	for _, p := range providers {
		g.Go(func() error {
			var limiter *rate.Limiter
			if e.cfg.ProviderRPS > 0 {
				limiter = rate.NewLimiter(rate.Limit(e.cfg.ProviderRPS), e.cfg.ProviderBurst)
			}

			var wg sync.WaitGroup
			for i, q := range queries {
				wg.Add(1)
				go func(idx int, query model.Query) {
					defer wg.Done()
					collect(e.callOne(ctx, p, limiter, idx, query))
				}(i, q)
			}
			wg.Wait()
			return nil
		})
	}
	_ = g.Wait()

	// Provider rank for stable intra-block ordering.
	rank := make(map[string]int, len(providers))
	for i, p := range providers {
		rank[p.ID()] = i
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].QueryIndex != results[j].QueryIndex {
			return results[i].QueryIndex < results[j].QueryIndex
		}
		return rank[results[i].Provider] < rank[results[j].Provider]
	})

	return results
}

// callOne issues a single provider call and scores the response. All
// failures are caught here and surfaced as a zero-confidence result so
// the caller's accounting keeps a stable denominator.
func (e *Executor) callOne(ctx context.Context, p provider.Provider, limiter *rate.Limiter, idx int, q model.Query) model.ProviderResult {
	result := model.ProviderResult{
		Provider:    p.ID(),
		QueryIndex:  idx,
		QueryType:   q.Type,
		Entity:      q.Entity,
		Positioning: model.PositioningNotCompared,
	}

	start := time.Now()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return e.failed(result, start, idx, q, err)
		}
	}

	callCtx := ctx
	if e.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
	}

	gen, err := p.Generate(callCtx, q.Prompt, e.cfg.MaxOutputTokens)
	if err != nil {
		return e.failed(result, start, idx, q, err)
	}

	result.LatencyMs = time.Since(start).Milliseconds()
	result.Response = gen.Text
	result.Usage = gen.Usage

	scored := e.scorer.Score(q, gen.Text)
	result.Recognized = scored.Recognized
	result.AttributeMentioned = scored.AttributeMentioned
	result.Confidence = scored.Confidence
	result.Positioning = scored.Positioning

	if e.recorder != nil {
		e.recorder.Record(p.ID(), p.Model(), idx, gen.Usage)
	}

	return result
}

// failed fills in the caught-failure shape: unrecognized, zero
// confidence, error text as the response.
func (e *Executor) failed(result model.ProviderResult, start time.Time, idx int, q model.Query, err error) model.ProviderResult {
	result.LatencyMs = time.Since(start).Milliseconds()
	result.Response = err.Error()
	result.FailureKind = provider.Classify(err)

	zap.L().Warn("scan: provider call failed",
		zap.String("provider", result.Provider),
		zap.Int("query_index", idx),
		zap.String("query_type", string(q.Type)),
		zap.String("failure_kind", string(result.FailureKind)),
		zap.Error(err),
	)

	return result
}
