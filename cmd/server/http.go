package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/config"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/lifecycle"
)

// httpServer wraps http.Server with lifecycle-coordinated shutdown. The
// listener stops accepting on shutdown and drains in-flight requests
// under its own timeout.
type httpServer struct {
	inner        *http.Server
	log          *slog.Logger
	drainTimeout time.Duration
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		inner: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
		},
		log:          logger.With("system", "http"),
		drainTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	go func() {
		s.log.Info("listening", "addr", s.inner.Addr)
		err := s.inner.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("listener failed", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
		defer cancel()

		if err := s.inner.Shutdown(ctx); err != nil {
			s.log.Error("drain failed", "error", err)
			return
		}
		s.log.Info("listener drained")
	})

	return nil
}
