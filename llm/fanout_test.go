package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.name + "-model" }

func (f *fakeProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return LLMResponse{}, ctx.Err()
	}
	if f.err != nil {
		return LLMResponse{}, f.err
	}
	return LLMResponse{Content: f.reply + ": " + messages[len(messages)-1].Content}, nil
}

func TestFanoutKeepsOrderAndIsolatesErrors(t *testing.T) {
	boom := errors.New("boom")
	providers := []Provider{
		&fakeProvider{name: "slow", reply: "a", delay: 30 * time.Millisecond},
		&fakeProvider{name: "broken", err: boom},
		&fakeProvider{name: "fast", reply: "c"},
	}

	results := Fanout(context.Background(), providers, []ChatMessage{UserMessage("hi")}, 0)

	require.Len(t, results, 3)
	assert.Equal(t, "slow", results[0].Provider)
	assert.Equal(t, "a: hi", results[0].Content)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c: hi", results[2].Content)
	assert.Equal(t, "fast-model", results[2].Model)
}

func TestFanoutLimit(t *testing.T) {
	var providers []Provider
	for range 5 {
		providers = append(providers, &fakeProvider{name: "p", reply: "ok"})
	}

	results := Fanout(context.Background(), providers, []ChatMessage{UserMessage("x")}, 2)
	for i, r := range results {
		assert.NoError(t, r.Err, "result %d", i)
		assert.Equal(t, "ok: x", r.Content, "result %d", i)
	}
}

func chatCompletionServer(t *testing.T, content string, got any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		body, _ := json.Marshal(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "local",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAICompatibleProvider(t *testing.T) {
	var got struct {
		Model    string        `json:"model"`
		Messages []ChatMessage `json:"messages"`
	}
	srv := chatCompletionServer(t, "pong", &got)

	p, err := ProviderOpenAI.Model("local").BaseURL(srv.URL + "/v1").APIKey("test")
	require.NoError(t, err)

	resp, err := p.Chat(context.Background(), []ChatMessage{SystemMessage("be brief"), UserMessage("ping")})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, uint32(4), resp.Usage.TotalTokens)
	assert.Equal(t, "local", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "ping", got.Messages[1].Content)
}

func TestOpenAICompatibleProviderRejectsEmptyAnswer(t *testing.T) {
	srv := chatCompletionServer(t, "", nil)

	p, err := ProviderDeepSeek.Model("local").BaseURL(srv.URL + "/v1").APIKey("test")
	require.NoError(t, err)

	_, err = Ask(context.Background(), p, "ping")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.ErrorContains(t, err, "failed to get answer from deepseek model local")
}
