package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/visibility-cli/internal/model"
)

// openaiCompletions is the subset of the OpenAI client used by the
// adapter, extracted so tests can fake it.
type openaiCompletions interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider queries the OpenAI chat completions API with a fixed
// model.
type OpenAIProvider struct {
	completions openaiCompletions
	model       string
}

// NewOpenAI creates an OpenAI provider adapter.
func NewOpenAI(apiKey, modelID string) *OpenAIProvider {
	return &OpenAIProvider{
		completions: openai.NewClient(apiKey),
		model:       modelID,
	}
}

func (p *OpenAIProvider) ID() string    { return "openai" }
func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens
	// instead of MaxTokens.
	if strings.HasPrefix(p.model, "o1") || strings.HasPrefix(p.model, "o3") ||
		strings.HasPrefix(p.model, "o4") || strings.HasPrefix(p.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := p.completions.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: empty choices in response")
	}

	return &Generation{
		Text: resp.Choices[0].Message.Content,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
