package llm

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider answers through DeepSeek's Chat Completions endpoint.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return NewOpenAICompatibleProvider("deepseek", deepseekBaseURL, apiKey, model, maxTokens, temperature)
}
