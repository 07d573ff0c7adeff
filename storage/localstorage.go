//go:build js && wasm

// Package storage provides browser localStorage storage.

package storage

import (
	"context"
	"fmt"
	"syscall/js"
)

// LocalStorage implements KeyValue on window.localStorage. Values are stored
// as strings, so they must be valid UTF-8 (the store writes JSON).
type LocalStorage struct {
	ls js.Value
}

// NewLocalStorage returns the page's localStorage.
func NewLocalStorage() (*LocalStorage, error) {
	ls, err := call(func() js.Value { return js.Global().Get("localStorage") })
	if err != nil {
		return nil, fmt.Errorf("localStorage unavailable: %w", err)
	}
	if ls.IsNull() || ls.IsUndefined() {
		return nil, fmt.Errorf("localStorage unavailable")
	}
	return &LocalStorage{ls: ls}, nil
}

// Get returns the value stored under key.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := call(func() js.Value { return s.ls.Call("getItem", key) })
	if err != nil {
		return nil, false, fmt.Errorf("localStorage getItem %q: %w", key, err)
	}
	if v.IsNull() || v.IsUndefined() {
		return nil, false, nil
	}
	return []byte(v.String()), true, nil
}

// Set stores value under key. Quota errors surface as an error.
func (s *LocalStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := call(func() js.Value { return s.ls.Call("setItem", key, string(value)) })
	if err != nil {
		return fmt.Errorf("localStorage setItem %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	_, err := call(func() js.Value { return s.ls.Call("removeItem", key) })
	if err != nil {
		return fmt.Errorf("localStorage removeItem %q: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *LocalStorage) Close() error {
	return nil
}

// call converts a thrown JS exception into an error.
func call(fn func() js.Value) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(), nil
}

// Verify LocalStorage implements Backend
var _ Backend = (*LocalStorage)(nil)
