package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSqlite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of the Backend* names.
	Backend string
	// Path is the directory (file, badger) or database file (sqlite).
	Path string
	// RedisURL is used by the redis backend.
	RedisURL string
	// Logger is passed to backends that log internally.
	Logger *zap.Logger
}

// Backends returns the backend names accepted by Open.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSqlite, BackendBadger, BackendRedis}
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory, "":
		return NewInMemoryStorage(), nil
	case BackendFile:
		return OpenFile(cfg.Path)
	case BackendSqlite:
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "arbiter.db")
		}
		return OpenSqlite(path)
	case BackendBadger:
		return openBadgerBackend(cfg)
	case BackendRedis:
		return ConnectRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
