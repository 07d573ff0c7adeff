package comparison

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/richinex/arbiter/model"
	"github.com/richinex/arbiter/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errAdapter = errors.New("adapter unavailable")

// failingKV fails every call it is told to fail.
type failingKV struct {
	mu       sync.Mutex
	failGet  bool
	failSet  bool
	failDel  bool
	sets     int
	removes  int
	inner    *storage.InMemoryStorage
}

func newFailingKV() *failingKV {
	return &failingKV{inner: storage.NewInMemoryStorage()}
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errAdapter
	}
	return f.inner.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	if f.failSet {
		return errAdapter
	}
	return f.inner.Set(ctx, key, value)
}

func (f *failingKV) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	f.removes++
	f.mu.Unlock()
	if f.failDel {
		return errAdapter
	}
	return f.inner.Remove(ctx, key)
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func newTestStore(t *testing.T, kv storage.KeyValue, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	return New(context.Background(), kv, opts...)
}

func fixedClock(t *testing.T, ts time.Time) {
	t.Helper()
	t.Cleanup(model.SetClock(func() time.Time { return ts }))
}
