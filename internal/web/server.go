// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/config"
	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/observability"
	"pii-analyzer/internal/version"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 10 * time.Second
)

// Server exposes the analyzer over HTTP
type Server struct {
	address  string
	engine   *analyzer.Engine
	initErr  error
	observer *observability.StandardObserver
	mux      *http.ServeMux
	server   *http.Server
}

// Option customizes a Server
type Option func(*Server)

// WithObserver sets the observer used for request logging
func WithObserver(observer *observability.StandardObserver) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithInitError records why the engine could not be built. The server still
// starts; analysis endpoints answer 500 until restarted with a valid
// configuration.
func WithInitError(err error) Option {
	return func(s *Server) {
		s.initErr = err
	}
}

// NewServer creates a server for engine listening on address. engine may be
// nil when initialization failed.
func NewServer(address string, engine *analyzer.Engine, opts ...Option) *Server {
	s := &Server{
		address: address,
		engine:  engine,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	s.setupRoutes()
	return s
}

// Handler returns the routed handler, wrapped with request logging
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// setupRoutes configures all HTTP route handlers
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/recognizers", s.handleRecognizers)
	s.mux.HandleFunc("/supportedentities", s.handleSupportedEntities)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w\n"+
			"Troubleshooting: check that no other service uses the port, or set %s",
			s.address, err, config.EnvAddr)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.server = s.createSecureServer()
	logger := s.observer.Logger()
	logger.Info("pii-analyzer listening", zap.String("address", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// createSecureServer creates an HTTP server with security timeouts
func (s *Server) createSecureServer() *http.Server {
	return &http.Server{
		Handler: s.Handler(),
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(s.observer.Logger()),
	}
}

// handleHealth reports liveness with version information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()
	status, code := "healthy", http.StatusOK
	languages := []string{}
	if s.engine == nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	} else {
		languages = s.engine.Languages()
	}

	body := map[string]interface{}{
		"status":              status,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"service":             "pii-analyzer",
		"version":             versionInfo["version"],
		"supported_languages": languages,
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	}
	if s.engine != nil {
		if sidecar := s.engine.Sidecar(); sidecar != nil {
			body["ner"] = sidecar
			if sidecar.State != "CLOSED" {
				body["status"] = "degraded"
			}
		}
	}
	if s.initErr != nil {
		body["error"] = s.initErr.Error()
	}
	writeJSON(w, code, body)
}

func (s *Server) handleRecognizers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.ready(w) {
		return
	}
	names, err := s.engine.Recognizers(r.URL.Query().Get("language"))
	if err != nil {
		s.sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSupportedEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.ready(w) {
		return
	}
	entities, err := s.engine.Entities(r.URL.Query().Get("language"))
	if err != nil {
		s.sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

// ready answers 500 when the engine failed to initialize
func (s *Server) ready(w http.ResponseWriter) bool {
	if s.engine != nil {
		return true
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Analyzer engine not initialized"})
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

// sendError maps err to a status code: client errors are 400, anything
// else is 500
func (s *Server) sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if detector.IsClientError(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs one entry per request. Bodies are never logged.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		finish := s.observer.StartTiming("web", r.Method, r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		finish(rec.status < http.StatusInternalServerError, map[string]interface{}{"status": rec.status})
	})
}
