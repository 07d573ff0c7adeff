// Session setup for CLI commands.
//
// Information Hiding:
// - Backend selection and lifetime hidden
// - Store construction hidden
// - Output destination hidden

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/config"
	"github.com/richinex/arbiter/internal/idgen"
	"github.com/richinex/arbiter/model"
	"github.com/richinex/arbiter/storage"
	"go.uber.org/zap"
)

// Options holds CLI execution options. Empty fields fall back to Settings.
type Options struct {
	Backend  string
	Path     string
	RedisURL string
	Key      string
	Verbose  bool

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

// Session is an open comparison store plus the backend behind it.
type Session struct {
	Store    *comparison.Store
	Settings config.Settings
	Log      *zap.Logger

	backend   storage.Backend
	restoreID func()
	in        io.Reader
	out       io.Writer
}

// Open resolves options against settings, opens the backend and hydrates the store.
func Open(ctx context.Context, settings config.Settings, log *zap.Logger, opts Options) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	applyOverrides(&settings, opts)

	gen, err := idgen.ByName(settings.IDStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to select id strategy: %w", err)
	}

	backend, err := storage.Open(ctx, storage.Config{
		Backend:  settings.Storage.Backend,
		Path:     settings.Storage.Path,
		RedisURL: settings.Storage.RedisURL,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", settings.Storage.Backend, err)
	}
	log.Debug("storage opened",
		zap.String("backend", settings.Storage.Backend),
		zap.String("path", settings.Storage.Path),
	)

	store := comparison.New(ctx, backend,
		comparison.WithKey(settings.Storage.Key),
		comparison.WithLogger(log),
		comparison.WithTimeout(settings.Storage.Timeout),
	)

	s := &Session{
		Store:     store,
		Settings:  settings,
		Log:       log,
		backend:   backend,
		restoreID: model.SetIDGenerator(gen),
		in:        opts.In,
		out:       opts.Out,
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s, nil
}

func applyOverrides(settings *config.Settings, opts Options) {
	if opts.Backend != "" {
		settings.Storage.Backend = opts.Backend
	}
	if opts.Path != "" {
		settings.Storage.Path = opts.Path
	}
	if opts.RedisURL != "" {
		settings.Storage.RedisURL = opts.RedisURL
	}
	if opts.Key != "" {
		settings.Storage.Key = opts.Key
	}
	if settings.Storage.Timeout <= 0 {
		settings.Storage.Timeout = 5 * time.Second
	}
}

// Close releases the backend and restores the previous id generator.
func (s *Session) Close() error {
	s.restoreID()
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// NewLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and above.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}
