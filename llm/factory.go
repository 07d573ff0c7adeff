// Building the backend that answers a slot or judges a comparison.
//
// A provider is picked by name, as typed on the command line or sent by the
// web client, and configured through a small builder:
//
//	// Slot B answered by Claude, key from ANTHROPIC_API_KEY
//	judge, err := llm.ProviderAnthropic.FromEnv()
//
//	// A cooler arbiter with a longer verdict
//	judge, err = llm.ProviderOpenAI.
//	    Model(llm.ModelOpenAIGPT5).
//	    MaxTokens(8192).
//	    Temperature(0.2).
//	    FromEnv()
//
//	// A local model behind an OpenAI-compatible server
//	local, err := llm.ProviderOpenAI.Model("llama3").BaseURL("http://localhost:11434/v1").APIKey("ollama")

package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownProvider is returned for a backend name no provider answers to.
var ErrUnknownProvider = errors.New("unknown provider")

// ProviderType identifies a supported backend.
type ProviderType int

const (
	ProviderOpenAI ProviderType = iota
	ProviderAnthropic
	ProviderDeepSeek
	ProviderGemini
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

type providerSpec struct {
	name         string
	aliases      []string
	envVar       string
	defaultModel string
}

var providerSpecs = map[ProviderType]providerSpec{
	ProviderOpenAI:    {"openai", []string{"gpt"}, "OPENAI_API_KEY", ModelOpenAIGPT4oMini},
	ProviderAnthropic: {"anthropic", []string{"claude"}, "ANTHROPIC_API_KEY", ModelAnthropicClaudeSonnet4},
	ProviderDeepSeek:  {"deepseek", nil, "DEEPSEEK_API_KEY", ModelDeepSeekChat},
	ProviderGemini:    {"gemini", []string{"google"}, "GEMINI_API_KEY", ModelGeminiFlash25},
}

// String is the canonical backend name, or "unknown".
func (p ProviderType) String() string {
	if spec, ok := providerSpecs[p]; ok {
		return spec.name
	}
	return "unknown"
}

// EnvVar names the environment variable holding the backend's API key.
func (p ProviderType) EnvVar() string { return providerSpecs[p].envVar }

// DefaultModel is asked when no model is configured.
func (p ProviderType) DefaultModel() string { return providerSpecs[p].defaultModel }

// ProviderTypes lists every supported backend in a stable order.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek, ProviderGemini}
}

// ParseProviderType resolves a backend name or alias, ignoring case and
// surrounding space.
func ParseProviderType(s string) (ProviderType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range ProviderTypes() {
		spec := providerSpecs[p]
		if name == spec.name {
			return p, nil
		}
		for _, alias := range spec.aliases {
			if name == alias {
				return p, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// FromEnv builds the backend with defaults and the key from EnvVar.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts a builder asking a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey builds the backend with defaults and an explicit key.
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder collects the settings for one backend. Zero values fall
// back to the backend's defaults.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
	baseURL      string
}

// NewProviderBuilder starts a builder for providerType.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{providerType: providerType}
}

// Model sets the model to ask.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens caps the length of the answer.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets sampling temperature. Zero is honoured.
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// BaseURL points OpenAI-compatible backends at another endpoint.
// Ignored for Anthropic and Gemini.
func (b *ProviderBuilder) BaseURL(url string) *ProviderBuilder {
	b.baseURL = url
	return b
}

// FromEnv builds the backend with the key from the provider's EnvVar.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	envVar := b.providerType.EnvVar()
	key := os.Getenv(envVar)
	if key == "" {
		return nil, fmt.Errorf("cannot ask %s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(key)
}

// APIKey builds the backend with an explicit key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}
	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := float32(defaultTemperature)
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderOpenAI:
		if b.baseURL == "" {
			return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
		}
		return NewOpenAICompatibleProvider("openai", b.baseURL, apiKey, model, maxTokens, temperature), nil
	case ProviderDeepSeek:
		if b.baseURL == "" {
			return NewDeepSeekProvider(apiKey, model, maxTokens, temperature), nil
		}
		return NewOpenAICompatibleProvider("deepseek", b.baseURL, apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownProvider, b.providerType)
	}
}
