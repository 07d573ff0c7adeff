package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		in   string
		want ProviderType
	}{
		{"openai", ProviderOpenAI},
		{"GPT", ProviderOpenAI},
		{"claude", ProviderAnthropic},
		{" Anthropic ", ProviderAnthropic},
		{"deepseek", ProviderDeepSeek},
		{"google", ProviderGemini},
	}
	for _, tt := range tests {
		got, err := ParseProviderType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseProviderType("mistral")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestProviderTypeRoundTrip(t *testing.T) {
	for _, p := range ProviderTypes() {
		parsed, err := ParseProviderType(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
		assert.NotEmpty(t, p.EnvVar(), p.String())
		assert.NotEmpty(t, p.DefaultModel(), p.String())
	}
	assert.Equal(t, "unknown", ProviderType(99).String())
}

func TestFromEnvRequiresKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")

	_, err := ProviderDeepSeek.FromEnv()
	assert.EqualError(t, err, "cannot ask deepseek: DEEPSEEK_API_KEY environment variable not set")
}

func TestBuilderDefaults(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	p, err := ProviderDeepSeek.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, ModelDeepSeekChat, p.Model())

	p, err = ProviderAnthropic.Model(ModelAnthropicClaudeOpus45).MaxTokens(512).Temperature(0).APIKey("sk-ant")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, ModelAnthropicClaudeOpus45, p.Model())
}

func TestBuildUnknownProvider(t *testing.T) {
	_, err := NewProviderBuilder(ProviderType(99)).APIKey("k")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
