// Package service exposes the optional metrics and health HTTP endpoints.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Service serves /metrics and /healthz on a single listener.
type Service struct {
	log    zerolog.Logger
	server *http.Server
}

// New creates a service bound to addr.
func New(addr string, log zerolog.Logger) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})

	return &Service{
		log: log,
		server: &http.Server{
			Addr:              addr,
			Handler:           c.Handler(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves in a background goroutine.
func (s *Service) Start() {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Metrics server stopped unexpectedly")
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Service) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
