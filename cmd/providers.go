package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/provider"
	"github.com/sells-group/visibility-cli/pkg/perplexity"
)

// buildRegistry constructs one adapter per configured provider, in the
// fixed report order: anthropic, openai, gemini, perplexity. Providers
// without an API key are skipped with a warning; at least one must be
// configured.
func buildRegistry(ctx context.Context) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if cfg.Anthropic.Key != "" {
		registry.Register(provider.NewAnthropic(cfg.Anthropic.Key, cfg.Anthropic.Model))
	} else {
		zap.L().Warn("anthropic key missing, provider skipped")
	}

	if cfg.OpenAI.Key != "" {
		registry.Register(provider.NewOpenAI(cfg.OpenAI.Key, cfg.OpenAI.Model))
	} else {
		zap.L().Warn("openai key missing, provider skipped")
	}

	if cfg.Gemini.Key != "" {
		gemini, err := provider.NewGemini(ctx, cfg.Gemini.Key, cfg.Gemini.Model)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini provider")
		}
		registry.Register(gemini)
	} else {
		zap.L().Warn("gemini key missing, provider skipped")
	}

	if cfg.Perplexity.Key != "" {
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		registry.Register(provider.NewPerplexity(client, cfg.Perplexity.Model))
	} else {
		zap.L().Warn("perplexity key missing, provider skipped")
	}

	if registry.Len() == 0 {
		return nil, eris.New("no providers configured: set at least one API key (VISIBILITY_ANTHROPIC_KEY, VISIBILITY_OPENAI_KEY, VISIBILITY_GEMINI_KEY, VISIBILITY_PERPLEXITY_KEY)")
	}

	return registry, nil
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured AI providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		type row struct {
			id, model string
			key       string
		}
		rows := []row{
			{"anthropic", cfg.Anthropic.Model, cfg.Anthropic.Key},
			{"openai", cfg.OpenAI.Model, cfg.OpenAI.Key},
			{"gemini", cfg.Gemini.Model, cfg.Gemini.Key},
			{"perplexity", cfg.Perplexity.Model, cfg.Perplexity.Key},
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tMODEL\tCONFIGURED")
		for _, r := range rows {
			configured := "no"
			if r.key != "" {
				configured = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.id, r.model, configured)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
