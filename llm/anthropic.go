// Claude backend for comparison slots and arbitration verdicts.
//
// Information Hiding:
// - anthropic-sdk-go client and API key
// - Messages API content blocks
// - System instruction sent beside the turns rather than among them

package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider asks a Claude model.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider returns a Claude backend. Nothing is sent until the
// first Chat call.
func NewAnthropicProvider(apiKey, model string, maxTokens uint32, temperature float32) *AnthropicProvider {
	return &AnthropicProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: float64(temperature),
	}
}

func (p *AnthropicProvider) Name() string  { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

// Chat returns the concatenated text blocks of Claude's reply. Tool use and
// thinking blocks are not part of an answer and are skipped.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	turns, system := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Messages:    turns,
		Temperature: anthropic.Float(p.temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return LLMResponse{}, answerError(p, err)
	}

	var answer strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			answer.WriteString(text.Text)
		}
	}
	if answer.Len() == 0 {
		return LLMResponse{}, answerError(p, ErrEmptyAnswer)
	}

	return LLMResponse{
		Content: answer.String(),
		Usage:   newUsage(msg.Usage.InputTokens, msg.Usage.OutputTokens, 0),
	}, nil
}

// convertToAnthropicMessages maps the turns to Messages API params and
// returns the system instruction separately.
func convertToAnthropicMessages(messages []ChatMessage) ([]anthropic.MessageParam, string) {
	system, turns := splitSystem(messages)
	params := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}
	return params, system
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
