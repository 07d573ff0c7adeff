// Package storage provides the persistence adapter used by the comparison store.
//
// Information Hiding:
// - Backend details (files, SQLite, Badger, Redis, browser storage) hidden behind KeyValue
// - Values are opaque byte strings; the caller owns the encoding
// - Allows swapping backends without changing the store

package storage

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// KeyValue is a get/set/remove-by-key byte store.
type KeyValue interface {
	// Get returns the value stored under key.
	// ok is false (with a nil error) when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend is a KeyValue that holds resources.
type Backend interface {
	KeyValue
	Close() error
}
