// Package arena connects the comparison store to live models: it fills slots
// with answers from several providers and sends the arbitration request to a
// judging model.
package arena

import (
	"context"
	"errors"
	"fmt"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/llm"
	"github.com/richinex/arbiter/model"
	"go.uber.org/zap"
)

var (
	// ErrNoProviders is returned when Compare is called without providers.
	ErrNoProviders = errors.New("no providers given")
	// ErrTooManyProviders is returned when there are more providers than slots.
	ErrTooManyProviders = fmt.Errorf("at most %d providers can be compared", model.MaxSlots)
	// ErrNoQuotes is returned by Arbitrate when there is nothing to arbitrate.
	ErrNoQuotes = errors.New("no quotes selected")
)

// Arena runs model calls against a comparison store.
type Arena struct {
	store *comparison.Store
	log   *zap.Logger
	limit int
}

// New creates an Arena. limit bounds concurrent provider calls when positive.
func New(store *comparison.Store, log *zap.Logger, limit int) *Arena {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{store: store, log: log, limit: limit}
}

// SlotResult is the outcome for one slot filled by Compare.
type SlotResult struct {
	Slot model.SlotKey `json:"slot"`
	llm.Result
}

// Compare asks every provider the same prompt and writes each answer into
// consecutive slots starting at modelA. The slot count is widened to fit and
// a history record is saved when at least one provider answered. Slots whose
// provider failed keep their previous content.
func (a *Arena) Compare(ctx context.Context, providers []llm.Provider, prompt string) ([]SlotResult, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if len(providers) > model.MaxSlots {
		return nil, ErrTooManyProviders
	}

	results := llm.Fanout(ctx, providers, []llm.ChatMessage{llm.UserMessage(prompt)}, a.limit)

	out := make([]SlotResult, len(results))
	answered := 0
	for i, r := range results {
		slot := model.SlotKeys[i]
		out[i] = SlotResult{Slot: slot, Result: r}
		if r.Err != nil {
			a.log.Warn("provider failed",
				zap.String("slot", string(slot)),
				zap.String("provider", r.Provider),
				zap.Error(r.Err),
			)
			continue
		}
		a.store.SetModelResponse(slot, r.Content)
		answered++
		a.log.Debug("slot filled",
			zap.String("slot", string(slot)),
			zap.String("provider", r.Provider),
			zap.Duration("elapsed", r.Elapsed),
		)
	}

	if answered == 0 {
		return out, fmt.Errorf("all %d providers failed: %w", len(results), results[0].Err)
	}
	if n := max(len(providers), model.MinSlots); n > a.store.SlotCount() {
		a.store.SetSlotCount(n)
	}
	a.store.SaveCurrentComparison()
	return out, nil
}

// Arbitrate sends the current arbitration template to p and returns its verdict.
func (a *Arena) Arbitrate(ctx context.Context, p llm.Provider) (llm.LLMResponse, error) {
	if len(a.store.Snippets()) == 0 {
		return llm.LLMResponse{}, ErrNoQuotes
	}

	resp, err := p.Chat(ctx, []llm.ChatMessage{
		llm.SystemMessage(llm.ArbiterSystemPrompt),
		llm.UserMessage(a.store.ArbitrationTemplate()),
	})
	if err != nil {
		return llm.LLMResponse{}, fmt.Errorf("arbitration with %s failed: %w", p.Name(), err)
	}
	return resp, nil
}
