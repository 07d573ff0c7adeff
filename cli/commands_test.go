package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/config"
	"github.com/google/uuid"
	"github.com/richinex/arbiter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.Settings {
	return config.Settings{
		Storage: config.StorageConfig{Backend: "memory", Timeout: time.Second},
		Server:  config.ServerConfig{Addr: ":0", ShutdownTimeout: time.Second},
		LLM: config.LLMConfig{
			Provider:    "openai",
			Model:       "local",
			MaxTokens:   256,
			Temperature: 0,
			Concurrency: 2,
			Timeout:     5 * time.Second,
		},
	}
}

func openSession(t *testing.T, in string) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := Open(context.Background(), testSettings(), nil, Options{
		In:  strings.NewReader(in),
		Out: &out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, &out
}

func TestOpenAppliesOverrides(t *testing.T) {
	var out bytes.Buffer
	s, err := Open(context.Background(), testSettings(), nil, Options{Key: "review-1", Out: &out})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "review-1", s.Store.Key())
	assert.Equal(t, "memory", s.Settings.Storage.Backend)
}

func TestOpenDefaultKey(t *testing.T) {
	s, _ := openSession(t, "")
	assert.Equal(t, comparison.DefaultKey, s.Store.Key())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), testSettings(), nil, Options{Backend: "tape"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tape")
}

func TestOpenAppliesIDStrategy(t *testing.T) {
	settings := testSettings()
	settings.IDStrategy = "uuidv7"
	s, err := Open(context.Background(), settings, nil, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	require.NoError(t, s.SetResponse("A", "an answer"))
	require.NoError(t, s.Quote("A", "", ""))
	require.NoError(t, s.Save())
	st := s.Store.Snapshot()
	for _, id := range []string{st.Snippets[0].ID, st.ComparisonHistory[0].ID} {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err, id)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
	require.NoError(t, s.Close())

	sn, err := model.NewSnippet("x", "Model A", model.SnippetMetadata{})
	require.NoError(t, err)
	_, err = uuid.Parse(sn.ID)
	assert.Error(t, err, "default generator is restored on close")
}

func TestOpenRejectsUnknownIDStrategy(t *testing.T) {
	settings := testSettings()
	settings.IDStrategy = "sequential"
	_, err := Open(context.Background(), settings, nil, Options{})
	assert.ErrorContains(t, err, "failed to select id strategy")
}

func TestSlots(t *testing.T) {
	s, out := openSession(t, "")

	require.NoError(t, s.Slots("2"))
	assert.Equal(t, 2, s.Store.SlotCount())
	assert.Contains(t, out.String(), "Model A, Model B")

	assert.Error(t, s.Slots("5"))
	assert.Error(t, s.Slots("two"))
	assert.Equal(t, 2, s.Store.SlotCount())
}

func TestSetResponseFromArgAndInput(t *testing.T) {
	s, _ := openSession(t, "piped answer\n")

	require.NoError(t, s.SetResponse("a", "first"))
	require.NoError(t, s.SetResponse("modelB", "-"))
	assert.Error(t, s.SetResponse("z", "nope"))

	st := s.Store.Snapshot()
	assert.Equal(t, "first", st.ModelResponses[model.SlotA])
	assert.Equal(t, "piped answer\n", st.ModelResponses[model.SlotB])
}

func TestQuoteRangeAndLabel(t *testing.T) {
	s, out := openSession(t, "")
	require.NoError(t, s.SetResponse("A", "Héllo brave new world"))

	require.NoError(t, s.Quote("A", "0-11", ""))
	require.NoError(t, s.Quote("A", "", "GPT"))

	snippets := s.Store.Snippets()
	require.Len(t, snippets, 2)
	assert.Equal(t, "Héllo brave", snippets[0].Text)
	assert.Equal(t, "Model A", snippets[0].ModelLabel)
	assert.Equal(t, model.SnippetMetadata{CardID: "modelA", SelectionRange: "0-11"}, snippets[0].Metadata)
	assert.Equal(t, "Héllo brave new world", snippets[1].Text)
	assert.Equal(t, "GPT", snippets[1].ModelLabel)
	assert.Contains(t, out.String(), "Quote 2 added")
}

func TestQuoteRejects(t *testing.T) {
	s, _ := openSession(t, "")
	require.NoError(t, s.SetResponse("B", "short   "))

	err := s.Quote("B", "0-50", "")
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.True(t, errors.Is(s.Quote("B", "3", ""), ErrInvalidRange))
	assert.True(t, errors.Is(s.Quote("B", "4-2", ""), ErrInvalidRange))
	assert.Error(t, s.Quote("B", "5-8", ""), "whitespace-only quote")
	assert.Error(t, s.Quote("C", "", ""), "empty slot")
	assert.Empty(t, s.Store.Snippets())
}

func TestUnquoteSelectAndClear(t *testing.T) {
	s, out := openSession(t, "")
	require.NoError(t, s.SetResponse("A", "alpha"))
	require.NoError(t, s.Quote("A", "", ""))
	require.NoError(t, s.Quote("A", "0-2", ""))
	ids := []string{s.Store.Snippets()[0].ID, s.Store.Snippets()[1].ID}

	require.NoError(t, s.Select(ids[0]))
	sel, ok := s.Store.SelectedSnippet()
	require.True(t, ok)
	assert.Equal(t, ids[0], sel.ID)

	require.NoError(t, s.Select("missing"))
	assert.Contains(t, out.String(), `no quote with id "missing"`)

	require.NoError(t, s.Select(ids[0]))
	require.NoError(t, s.Unquote(ids[0]))
	assert.Empty(t, s.Store.Snapshot().SelectedSnippetID)
	assert.Error(t, s.Unquote(ids[0]))

	require.NoError(t, s.ClearQuotes())
	assert.Empty(t, s.Store.Snippets())
}

func TestHistoryCommands(t *testing.T) {
	s, out := openSession(t, "")

	require.NoError(t, s.History())
	assert.Contains(t, out.String(), "No saved comparisons")

	require.NoError(t, s.SetResponse("A", "first answer"))
	require.NoError(t, s.Save())
	require.NoError(t, s.SetResponse("A", "second answer"))
	require.NoError(t, s.Save())

	require.NoError(t, s.Nav("prev"))
	assert.Equal(t, "first answer", s.Store.Snapshot().ModelResponses[model.SlotA])
	out.Reset()
	require.NoError(t, s.Nav("prev"))
	assert.Contains(t, out.String(), "Already at the first comparison")
	assert.Error(t, s.Nav("sideways"))

	require.NoError(t, s.Load("2"))
	assert.Equal(t, "second answer", s.Store.Snapshot().ModelResponses[model.SlotA])
	assert.Error(t, s.Load("3"))
	assert.Error(t, s.Load("0"))

	out.Reset()
	require.NoError(t, s.History())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  1."))
	assert.True(t, strings.HasPrefix(lines[1], "* 2."))
	assert.Contains(t, lines[1], "second answer")
}

func TestShowAndTemplate(t *testing.T) {
	s, out := openSession(t, "")
	require.NoError(t, s.SetResponse("A", "The sky is blue."))
	require.NoError(t, s.Quote("A", "", ""))
	require.NoError(t, s.Notes("Which is right?"))

	require.NoError(t, s.Show())
	shown := out.String()
	assert.Contains(t, shown, "== Model A (modelA) ==\nThe sky is blue.")
	assert.Contains(t, shown, "== Model C (modelC) ==\n(empty)")
	assert.Contains(t, shown, "Quotes: 1")
	assert.Contains(t, shown, "Notes: Which is right?")

	out.Reset()
	require.NoError(t, s.Template(false))
	assert.Equal(t, s.Store.ArbitrationTemplate(), out.String())

	out.Reset()
	require.NoError(t, s.Template(true))
	assert.Contains(t, out.String(), "<h1>AI Response Arbitration Request</h1>")
	assert.Contains(t, out.String(), "<blockquote>")
}

func TestReset(t *testing.T) {
	s, _ := openSession(t, "")
	require.NoError(t, s.SetResponse("A", "x"))
	require.NoError(t, s.Notes("n"))
	require.NoError(t, s.Reset())

	assert.Equal(t, model.DefaultState(), s.Store.Snapshot())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t\tc "))
	long := strings.Repeat("x", previewLen+10)
	assert.Equal(t, strings.Repeat("x", previewLen)+"...", preview(long))
}

func fakeOpenAI(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "local",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "` + reply + `"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEEPSEEK_API_KEY", "ds-test")
	t.Setenv("DEEPSEEK_MODEL", "")

	p, err := createProvider("", testSettings())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "local", p.Model())

	p, err = createProvider("deepseek", testSettings())
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, "deepseek-chat", p.Model())

	_, err = createProvider("mystery", testSettings())
	assert.Error(t, err)
}

func TestCreateProviderMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := createProvider("claude", testSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestAskAndCompareAgainstLocalServer(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	srv := fakeOpenAI(t, "pong")

	s, out := openSession(t, "")
	s.Settings.LLM.BaseURL = srv.URL + "/v1"

	require.NoError(t, s.Ask(context.Background(), "c", "ping", "openai"))
	assert.Equal(t, "pong", s.Store.Snapshot().ModelResponses[model.SlotC])

	require.NoError(t, s.Compare(context.Background(), "ping", []string{"openai", "gpt"}))
	st := s.Store.Snapshot()
	assert.Equal(t, "pong", st.ModelResponses[model.SlotA])
	assert.Equal(t, "pong", st.ModelResponses[model.SlotB])
	require.Len(t, st.ComparisonHistory, 1)
	assert.Contains(t, out.String(), "Model B (openai/local)")
}

func TestArbitrate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	srv := fakeOpenAI(t, "Model A is correct.")

	s, out := openSession(t, "")
	s.Settings.LLM.BaseURL = srv.URL + "/v1"

	err := s.Arbitrate(context.Background(), "openai")
	require.Error(t, err, "no quotes yet")

	require.NoError(t, s.SetResponse("A", "fact"))
	require.NoError(t, s.Quote("A", "", ""))
	out.Reset()
	require.NoError(t, s.Arbitrate(context.Background(), "openai"))
	assert.Equal(t, "Model A is correct.\n", out.String())
}
