package provider

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

// anthropicMessages is the subset of the Anthropic SDK used by the
// adapter, extracted so tests can fake it.
type anthropicMessages interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicProvider queries the Anthropic Messages API with a fixed
// model.
type AnthropicProvider struct {
	messages anthropicMessages
	model    string
}

// NewAnthropic creates an Anthropic provider adapter.
func NewAnthropic(apiKey, modelID string) *AnthropicProvider {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		messages: &client.Messages,
		model:    modelID,
	}
}

func (p *AnthropicProvider) ID() string    { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	msg, err := p.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Generation{
		Text: text,
		Usage: model.TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}
