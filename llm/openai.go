// OpenAI backend for comparison slots and arbitration verdicts. DeepSeek and
// local servers such as Ollama speak the same protocol and reuse it.
//
// Information Hiding:
// - go-openai client, API key and base URL
// - Chat Completions request and choice selection

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider asks any model behind a Chat Completions endpoint.
type OpenAIProvider struct {
	name        string
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIProvider returns a backend for api.openai.com.
func NewOpenAIProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return NewOpenAICompatibleProvider("openai", "", apiKey, model, maxTokens, temperature)
}

// NewOpenAICompatibleProvider returns a backend labelled name that talks to
// baseURL. An empty baseURL targets api.openai.com.
func NewOpenAICompatibleProvider(name, baseURL, apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		name:        name,
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Name() string  { return p.name }
func (p *OpenAIProvider) Model() string { return p.model }

// Chat returns the first choice of the completion.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	turns := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		turns[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    turns,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return LLMResponse{}, answerError(p, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return LLMResponse{}, answerError(p, ErrEmptyAnswer)
	}

	u := resp.Usage
	return LLMResponse{
		Content: resp.Choices[0].Message.Content,
		Usage:   newUsage(int64(u.PromptTokens), int64(u.CompletionTokens), int64(u.TotalTokens)),
	}, nil
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
