// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hopeline/sitectl/internal/loader"
	"github.com/hopeline/sitectl/internal/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	maxBodyBytes      = 64 << 10
)

// Server exposes a Loader over HTTP.
type Server struct {
	loader     *loader.Loader
	metrics    *metrics.Metrics
	adminToken string
}

type Option func(*Server)

// WithMetrics serves m on /metrics and records every request in it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAdminToken requires "Authorization: Bearer <token>" on the cache admin
// routes. An empty token leaves them open.
func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

func New(l *loader.Loader, opts ...Option) *Server {
	s := &Server{loader: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.listArticles)
		r.Route("/articles/{id}", func(r chi.Router) {
			r.Get("/", s.getArticle)
			r.Get("/stats", s.getStats)
			r.Get("/comments", s.listComments)
			r.Post("/comments", s.postComment)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.cacheInfo)
			r.Delete("/", s.cacheClear)
			r.Delete("/articles", s.invalidateArticles)
			r.Delete("/articles/{id}/stats", s.invalidateStats)
			r.Delete("/articles/{id}/comments", s.invalidateComments)
		})
	})

	return r
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully. ready, when not nil, receives the bound address once the
// listener is open.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.WithField("addr", ln.Addr().String()).Info("serving")
	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
