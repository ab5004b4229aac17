// Package api exposes validation and generation over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/derekprior/doubles/internal/api/middleware"
)

// DefaultGenerateTimeout bounds how long a generate request waits for a
// worker.
const DefaultGenerateTimeout = 90 * time.Second

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Dispatcher      Dispatcher
	GenerateTimeout time.Duration
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}

	r := mux.NewRouter()
	h := &scheduleHandler{dispatcher: cfg.Dispatcher, timeout: timeout}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(logger))
	api.Use(middleware.Logging(logger))

	api.HandleFunc("/validate", h.Validate).Methods(http.MethodPost)
	api.HandleFunc("/generate", h.Generate).Methods(http.MethodPost)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}
