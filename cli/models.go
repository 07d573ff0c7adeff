// Model-backed CLI commands.
//
// Information Hiding:
// - Provider construction from settings and environment
// - Per-call timeouts

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richinex/arbiter/arena"
	"github.com/richinex/arbiter/config"
	"github.com/richinex/arbiter/llm"
	"go.uber.org/zap"
)

// createProvider builds the named provider, falling back to the configured one.
func createProvider(providerName string, settings config.Settings) (llm.Provider, error) {
	if providerName == "" {
		providerName = settings.LLM.Provider
	}
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	model := settings.LLM.Model
	if config.NormalizeProvider(providerName) != settings.LLM.Provider || model == "" {
		if model, err = config.ModelFor(providerName); err != nil {
			return nil, err
		}
	}

	builder := providerType.
		Model(model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature))
	if providerType == llm.ProviderOpenAI {
		builder = builder.BaseURL(settings.LLM.BaseURL)
	}
	return builder.APIKey(apiKey)
}

// ProviderResolver returns a function resolving provider names against settings.
func ProviderResolver(settings config.Settings) func(name string) (llm.Provider, error) {
	return func(name string) (llm.Provider, error) {
		return createProvider(name, settings)
	}
}

func (s *Session) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Settings.LLM.Timeout > 0 {
		return context.WithTimeout(ctx, s.Settings.LLM.Timeout)
	}
	return context.WithCancel(ctx)
}

// Ask sends prompt to one provider and stores the answer in a slot.
func (s *Session) Ask(ctx context.Context, slotArg, prompt, providerName string) error {
	key, err := parseSlot(slotArg)
	if err != nil {
		return err
	}
	provider, err := createProvider(providerName, s.Settings)
	if err != nil {
		return err
	}

	ctx, cancel := s.llmContext(ctx)
	defer cancel()

	s.Log.Debug("asking provider", zap.String("provider", provider.Name()), zap.String("model", provider.Model()))
	answer, err := llm.Ask(ctx, provider, prompt)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", key.Label(), err)
	}
	s.Store.SetModelResponse(key, answer)
	s.printf("%s (%s/%s): %d characters\n", key.Label(), provider.Name(), provider.Model(), len([]rune(answer)))
	return nil
}

// Compare asks every named provider the same prompt and fills slots A onward.
func (s *Session) Compare(ctx context.Context, prompt string, providerNames []string) error {
	providers := make([]llm.Provider, 0, len(providerNames))
	for _, name := range providerNames {
		p, err := createProvider(name, s.Settings)
		if err != nil {
			return err
		}
		providers = append(providers, p)
	}

	ctx, cancel := s.llmContext(ctx)
	defer cancel()

	results, err := arena.New(s.Store, s.Log, s.Settings.LLM.Concurrency).Compare(ctx, providers, prompt)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s (%s): error: %v\n", r.Slot.Label(), r.Provider, r.Err)
			continue
		}
		s.printf("%s (%s/%s): %d characters in %s\n",
			r.Slot.Label(), r.Provider, r.Model, len([]rune(r.Content)), r.Elapsed.Round(time.Millisecond))
	}
	return err
}

// Arbitrate sends the arbitration request to a provider and prints the verdict.
func (s *Session) Arbitrate(ctx context.Context, providerName string) error {
	provider, err := createProvider(providerName, s.Settings)
	if err != nil {
		return err
	}

	ctx, cancel := s.llmContext(ctx)
	defer cancel()

	resp, err := arena.New(s.Store, s.Log, 1).Arbitrate(ctx, provider)
	if err != nil {
		return err
	}
	s.printf("%s\n", strings.TrimRight(resp.Content, "\n"))
	if resp.Usage != nil {
		s.Log.Debug("arbitration usage", zap.Any("usage", resp.Usage))
	}
	return nil
}
