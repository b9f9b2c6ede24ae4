package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/visibility-cli/internal/model"
)

// GeminiProvider queries the Gemini API with a fixed model.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider adapter. Unlike the other
// vendors, client construction can fail (it validates credentials
// configuration up front).
func NewGemini(ctx context.Context, apiKey, modelID string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	return &GeminiProvider{client: client, model: modelID}, nil
}

func (p *GeminiProvider) ID() string    { return "gemini" }
func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}

	usage := model.TokenUsage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return &Generation{
		Text:  resp.Text(),
		Usage: usage,
	}, nil
}
