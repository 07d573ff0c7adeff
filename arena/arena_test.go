package arena

import (
	"context"
	"errors"
	"testing"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/llm"
	"github.com/richinex/arbiter/model"
	"github.com/richinex/arbiter/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	reply string
	err   error
	seen  []llm.ChatMessage
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return p.name + "-1" }

func (p *stubProvider) Chat(_ context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	p.seen = messages
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	return llm.LLMResponse{Content: p.reply}, nil
}

func newArena(t *testing.T) (*Arena, *comparison.Store) {
	t.Helper()
	store := comparison.New(context.Background(), storage.NewInMemoryStorage())
	return New(store, nil, 2), store
}

func TestCompareFillsSlotsAndSaves(t *testing.T) {
	a, store := newArena(t)
	providers := []llm.Provider{
		&stubProvider{name: "p1", reply: "one"},
		&stubProvider{name: "p2", reply: "two"},
		&stubProvider{name: "p3", reply: "three"},
		&stubProvider{name: "p4", reply: "four"},
	}

	results, err := a.Compare(context.Background(), providers, "question")
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, model.SlotD, results[3].Slot)
	assert.Equal(t, "p4", results[3].Provider)

	st := store.Snapshot()
	assert.Equal(t, 4, st.SlotCount)
	assert.Equal(t, "one", st.ModelResponses[model.SlotA])
	assert.Equal(t, "four", st.ModelResponses[model.SlotD])
	require.Len(t, st.ComparisonHistory, 1)
	assert.Equal(t, 0, st.CurrentComparisonIndex)
	assert.Equal(t, "three", st.ComparisonHistory[0].ModelResponses[model.SlotC])
}

func TestCompareKeepsSlotCountWhenNarrower(t *testing.T) {
	a, store := newArena(t)
	store.SetSlotCount(4)

	_, err := a.Compare(context.Background(), []llm.Provider{&stubProvider{name: "solo", reply: "x"}}, "q")
	require.NoError(t, err)
	assert.Equal(t, 4, store.SlotCount())
}

func TestCompareFailedSlotKeepsContent(t *testing.T) {
	a, store := newArena(t)
	store.SetModelResponse(model.SlotB, "previous")
	boom := errors.New("rate limited")

	results, err := a.Compare(context.Background(), []llm.Provider{
		&stubProvider{name: "ok", reply: "fresh"},
		&stubProvider{name: "bad", err: boom},
	}, "q")
	require.NoError(t, err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "fresh", store.Snapshot().ModelResponses[model.SlotA])
	assert.Equal(t, "previous", store.Snapshot().ModelResponses[model.SlotB])
}

func TestCompareAllFailed(t *testing.T) {
	a, store := newArena(t)
	boom := errors.New("down")

	_, err := a.Compare(context.Background(), []llm.Provider{&stubProvider{name: "bad", err: boom}}, "q")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.Snapshot().ComparisonHistory)
}

func TestCompareProviderCount(t *testing.T) {
	a, _ := newArena(t)

	_, err := a.Compare(context.Background(), nil, "q")
	assert.ErrorIs(t, err, ErrNoProviders)

	five := make([]llm.Provider, 5)
	for i := range five {
		five[i] = &stubProvider{name: "p"}
	}
	_, err = a.Compare(context.Background(), five, "q")
	assert.ErrorIs(t, err, ErrTooManyProviders)
}

func TestArbitrate(t *testing.T) {
	a, store := newArena(t)
	judge := &stubProvider{name: "judge", reply: "B wins"}

	_, err := a.Arbitrate(context.Background(), judge)
	assert.ErrorIs(t, err, ErrNoQuotes)

	store.AddSnippet("Hello world", "Model A", model.SnippetMetadata{})
	resp, err := a.Arbitrate(context.Background(), judge)
	require.NoError(t, err)
	assert.Equal(t, "B wins", resp.Content)

	require.Len(t, judge.seen, 2)
	assert.Equal(t, "system", judge.seen[0].Role)
	assert.Equal(t, store.ArbitrationTemplate(), judge.seen[1].Content)
}

func TestArbitrateWrapsError(t *testing.T) {
	a, store := newArena(t)
	store.AddSnippet("x", "Model A", model.SnippetMetadata{})
	boom := errors.New("timeout")

	_, err := a.Arbitrate(context.Background(), &stubProvider{name: "judge", err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "judge")
}
