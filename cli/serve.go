package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/richinex/arbiter/server"
	"go.uber.org/zap"
)

// Serve exposes the session's store over HTTP until interrupted.
func (s *Session) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.Settings.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s.Store,
		server.WithLogger(s.Log),
		server.WithProviders(ProviderResolver(s.Settings), s.Settings.LLM.Concurrency, s.Settings.LLM.Timeout),
		server.WithAllowedOrigins(s.Settings.Server.AllowedOrigins),
	)

	s.printf("Serving comparison %q on %s\n", s.Store.Key(), addr)
	s.Log.Info("serving", zap.String("addr", addr), zap.String("key", s.Store.Key()))
	return srv.ListenAndServe(ctx, addr, s.Settings.Server.ShutdownTimeout)
}
