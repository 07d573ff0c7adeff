package llm

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one provider call within a fan-out.
type Result struct {
	Provider string
	Model    string
	Content  string
	Usage    *TokenUsage
	Elapsed  time.Duration
	Err      error
}

// Fanout sends the same messages to every provider concurrently and returns
// one Result per provider in input order. A failing provider does not cancel
// the others; its error is reported in its Result. limit bounds concurrency
// when positive.
func Fanout(ctx context.Context, providers []Provider, messages []ChatMessage, limit int) []Result {
	results := make([]Result, len(providers))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range providers {
		g.Go(func() error {
			start := time.Now()
			resp, err := p.Chat(ctx, messages)
			results[i] = Result{
				Provider: p.Name(),
				Model:    p.Model(),
				Content:  resp.Content,
				Usage:    resp.Usage,
				Elapsed:  time.Since(start),
				Err:      err,
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
