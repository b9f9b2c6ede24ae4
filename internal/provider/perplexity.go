package provider

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/pkg/perplexity"
)

// PerplexityProvider queries the Perplexity chat completions API with
// a fixed model.
type PerplexityProvider struct {
	client perplexity.Client
	model  string
}

// NewPerplexity creates a Perplexity provider adapter.
func NewPerplexity(client perplexity.Client, modelID string) *PerplexityProvider {
	return &PerplexityProvider{client: client, model: modelID}
}

func (p *PerplexityProvider) ID() string    { return "perplexity" }
func (p *PerplexityProvider) Model() string { return p.model }

func (p *PerplexityProvider) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	resp, err := p.client.Complete(ctx, perplexity.CompletionRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []perplexity.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("perplexity: empty choices in response")
	}

	return &Generation{
		Text: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
