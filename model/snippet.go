package model

import (
	"errors"
	"sync"
	"time"

	"github.com/richinex/arbiter/internal/idgen"
)

// ErrEmptySnippetText is returned by NewSnippet when text is empty.
var ErrEmptySnippetText = errors.New("snippet text is empty")

var (
	factoryMu sync.RWMutex
	newID     = idgen.Default()
	now       = time.Now
)

// SetIDGenerator replaces the generator used for snippet ids and returns a
// function restoring the previous one.
func SetIDGenerator(gen idgen.Generator) (restore func()) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	prev := newID
	newID = gen
	return func() {
		factoryMu.Lock()
		defer factoryMu.Unlock()
		newID = prev
	}
}

// SetClock replaces the time source used for snippet timestamps and returns a
// function restoring the previous one.
func SetClock(clock func() time.Time) (restore func()) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	prev := now
	now = clock
	return func() {
		factoryMu.Lock()
		defer factoryMu.Unlock()
		now = prev
	}
}

// NewSnippet creates a snippet with a fresh id and the current time.
// The text is stored as given; callers trim and filter beforehand.
func NewSnippet(text, modelLabel string, meta SnippetMetadata) (Snippet, error) {
	if text == "" {
		return Snippet{}, ErrEmptySnippetText
	}
	factoryMu.RLock()
	id, ts := newID(), now()
	factoryMu.RUnlock()

	return Snippet{
		ID:         id,
		Text:       text,
		ModelLabel: modelLabel,
		Timestamp:  Instant(ts),
		Metadata:   meta,
	}, nil
}

// NewHistoryRecord snapshots responses into a record with a fresh id.
func NewHistoryRecord(responses Responses) HistoryRecord {
	factoryMu.RLock()
	id, ts := newID(), now()
	factoryMu.RUnlock()

	return HistoryRecord{
		ID:             id,
		ModelResponses: responses.Clone(),
		Timestamp:      Instant(ts),
	}
}

// Instant normalizes t to the millisecond precision of the persisted format
// and strips the monotonic clock reading.
func Instant(t time.Time) time.Time {
	return t.Round(0).Truncate(time.Millisecond)
}
