package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAnswer is returned when a model replies without any text. An empty
// answer cannot fill a comparison slot or stand in as a verdict.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// ChatMessage is one turn of the conversation sent to a model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage frames how the model should answer.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// UserMessage carries the question or the arbitration request.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// LLMResponse is a model's answer plus what it cost.
type LLMResponse struct {
	Content string
	Usage   *TokenUsage
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32 `json:"promptTokens"`
	CompletionTokens uint32 `json:"completionTokens"`
	TotalTokens      uint32 `json:"totalTokens"`
}

// newUsage returns nil when the backend reported no token counts.
func newUsage(prompt, completion, total int64) *TokenUsage {
	if prompt == 0 && completion == 0 && total == 0 {
		return nil
	}
	if total == 0 {
		total = prompt + completion
	}
	return &TokenUsage{
		PromptTokens:     uint32(prompt),
		CompletionTokens: uint32(completion),
		TotalTokens:      uint32(total),
	}
}

// splitSystem separates system turns, joined by blank lines, from the
// conversation for backends that take the instruction as its own field.
func splitSystem(messages []ChatMessage) (system string, turns []ChatMessage) {
	var parts []string
	for _, msg := range messages {
		if msg.Role == "system" {
			parts = append(parts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	return strings.Join(parts, "\n\n"), turns
}

// answerError names the backend and model that failed to answer.
func answerError(p Provider, err error) error {
	return fmt.Errorf("failed to get answer from %s model %s: %w", p.Name(), p.Model(), err)
}

// ArbiterSystemPrompt frames the arbitration request for the judging model.
const ArbiterSystemPrompt = "You are an impartial reviewer comparing answers written by different AI models. " +
	"Quote sparingly, cite the quote numbers you rely on, and finish with a clear recommendation."

// Models that can answer a slot or judge the comparison.
const (
	ModelOpenAIGPT52     = "gpt-5.2"
	ModelOpenAIGPT5      = "gpt-5"
	ModelOpenAIGPT4o     = "gpt-4o"
	ModelOpenAIGPT4oMini = "gpt-4o-mini"

	ModelAnthropicClaudeOpus45  = "claude-opus-4-5-20251101"
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"

	ModelDeepSeekChat     = "deepseek-chat"
	ModelDeepSeekReasoner = "deepseek-reasoner"

	ModelGeminiFlash25 = "gemini-2.5-flash"
	ModelGeminiPro25   = "gemini-2.5-pro"
)
