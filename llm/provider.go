// Package llm asks language models for the answers that fill comparison
// slots and for the arbitration verdict over the quoted snippets.
//
// Information Hiding:
// - Vendor SDKs and their authentication
// - Conversion between ChatMessage and each vendor's wire format
// - How an empty or failed answer is reported

package llm

import (
	"context"
)

// Provider is one model that can be asked for an answer.
type Provider interface {
	// Name is the backend label shown next to a slot ("openai", "gemini").
	Name() string

	// Model is the model identifier the backend is asked with.
	Model() string

	// Chat returns the model's reply to the conversation.
	Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error)
}

// Ask sends a single user prompt and returns the reply text.
func Ask(ctx context.Context, p Provider, prompt string) (string, error) {
	resp, err := p.Chat(ctx, []ChatMessage{UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
