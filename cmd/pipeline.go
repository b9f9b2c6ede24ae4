package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/cost"
	"github.com/sells-group/visibility-cli/internal/scan"
	"github.com/sells-group/visibility-cli/internal/scorer"
	"github.com/sells-group/visibility-cli/internal/store"
)

// pipelineEnv bundles everything a scan needs plus the store handle
// commands read from afterwards.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *scan.Pipeline
}

func (e *pipelineEnv) Close() {
	_ = e.Store.Close()
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	sc, err := buildScorer()
	if err != nil {
		st.Close()
		return nil, err
	}

	pipe := scan.NewPipeline(st, registry, sc, cost.NewCalculator(buildRates(cfg.Pricing)), scan.ExecutorConfig{
		MaxOutputTokens: cfg.Scan.MaxOutputTokens,
		CallTimeout:     time.Duration(cfg.Scan.CallTimeoutSecs) * time.Second,
		ProviderRPS:     cfg.Scan.ProviderRPS,
		ProviderBurst:   cfg.Scan.ProviderBurst,
	})

	return &pipelineEnv{Store: st, Pipeline: pipe}, nil
}

func buildScorer() (*scorer.Scorer, error) {
	if cfg.Scoring.HeuristicsPath == "" {
		return scorer.New(scorer.DefaultHeuristics()), nil
	}
	h, err := scorer.LoadHeuristics(cfg.Scoring.HeuristicsPath)
	if err != nil {
		return nil, eris.Wrap(err, "load scoring heuristics")
	}
	return scorer.New(h), nil
}

// buildRates converts configured pricing into calculator rates,
// falling back to built-in defaults for any provider left unset.
func buildRates(pricing config.PricingConfig) cost.Rates {
	rates := cost.DefaultRates()

	if len(pricing.Anthropic) > 0 {
		rates.Anthropic = modelRates(pricing.Anthropic)
	}
	if len(pricing.OpenAI) > 0 {
		rates.OpenAI = modelRates(pricing.OpenAI)
	}
	if len(pricing.Gemini) > 0 {
		rates.Gemini = modelRates(pricing.Gemini)
	}
	if pricing.Perplexity.PerQuery > 0 {
		rates.Perplexity = cost.PerplexityRate{PerQuery: pricing.Perplexity.PerQuery}
	}

	return rates
}

func modelRates(pricing map[string]config.ModelPricing) map[string]cost.ModelRate {
	out := make(map[string]cost.ModelRate, len(pricing))
	for modelID, p := range pricing {
		out[modelID] = cost.ModelRate{Input: p.Input, Output: p.Output}
	}
	return out
}
