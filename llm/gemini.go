// Gemini backend for comparison slots and arbitration verdicts.
//
// Information Hiding:
// - genai client construction and API key
// - Role mapping ("assistant" turns are sent as the model role)
// - System instruction carried in the generation config

package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider asks a Gemini model.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	initErr     error
}

// NewGeminiProvider returns a Gemini backend. A client that cannot be built
// is reported by the first Chat call so the other slots can still be filled.
func NewGeminiProvider(apiKey, model string, maxTokens uint32, temperature float32) *GeminiProvider {
	p := &GeminiProvider{
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: temperature,
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		p.initErr = fmt.Errorf("failed to initialize gemini client: %w", err)
		return p
	}
	p.client = client
	return p
}

func (p *GeminiProvider) Name() string  { return "gemini" }
func (p *GeminiProvider) Model() string { return p.model }

// Chat returns the text of the first candidate.
func (p *GeminiProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	if p.initErr != nil {
		return LLMResponse{}, answerError(p, p.initErr)
	}
	if p.client == nil {
		return LLMResponse{}, answerError(p, errors.New("gemini client not initialized"))
	}

	system, turns := splitSystem(messages)
	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.Role(genai.RoleUser)
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.temperature),
		MaxOutputTokens: p.maxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return LLMResponse{}, answerError(p, err)
	}
	answer := resp.Text()
	if answer == "" {
		return LLMResponse{}, answerError(p, ErrEmptyAnswer)
	}

	var usage *TokenUsage
	if m := resp.UsageMetadata; m != nil {
		usage = newUsage(int64(m.PromptTokenCount), int64(m.CandidatesTokenCount), int64(m.TotalTokenCount))
	}
	return LLMResponse{Content: answer, Usage: usage}, nil
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
