// Package api exposes game submission and result queries over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/okian/hoopstate/internal/adapters/http/swagger"
	"github.com/okian/hoopstate/internal/adapters/repository"
	"github.com/okian/hoopstate/internal/domain/dedupe"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	defaultMaxBody     = 8 << 20
	defaultSubmitRate  = 50
	defaultSubmitBurst = 100
	defaultWriteWait   = 10 * time.Second
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue queues a validated game. It fails with queue.ErrFull on
	// backpressure and queue.ErrClosed during shutdown.
	Enqueue(ctx context.Context, in model.GameInput, batch string) error

	// Get, Wait and List read results; unknown games yield
	// repository.ErrNotFound.
	Get(ctx context.Context, gameID string) (*game.Result, error)
	Wait(ctx context.Context, gameID string) (*game.Result, error)
	List(ctx context.Context, status model.GameStatus) []game.Summary
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Server wires HTTP routes for the game API.
type Server struct {
	deps      Dependencies
	stats     StatsProvider
	log       logger.Logger
	limiter   *rate.Limiter
	maxBody   int64
	origins   []string
	newBatch  func() string
	writeWait time.Duration
	upgrader  websocket.Upgrader
}

// NewServer creates an API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:      deps,
		stats:     stats,
		limiter:   rate.NewLimiter(defaultSubmitRate, defaultSubmitBurst),
		maxBody:   defaultMaxBody,
		origins:   []string{"*"},
		newBatch:  uuid.NewString,
		writeWait: defaultWriteWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("api")
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.allowOrigin,
	}
	return s
}

// Routes returns the router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	swagger.Register(r)

	r.Route("/games", func(r chi.Router) {
		r.With(s.throttle).Post("/", s.handleSubmit)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Get("/players", s.handlePlayers)
			r.Get("/possessions", s.handlePossessions)
			r.Get("/stints", s.handleStints)
			r.Get("/lineups", s.handleLineups)
			r.Get("/snapshots", s.handleSnapshots)
			r.Get("/snapshots/{event}", s.handleSnapshot)
			r.Get("/stream", s.handleStream)
		})
	})
	return r
}

func (s *Server) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// lookup loads a game or writes the matching error.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, op string) (*game.Result, bool) {
	id := chi.URLParam(r, "id")
	res, err := s.deps.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return nil, false
	}
	return res, true
}

// finished loads a game whose processing ran to completion.
func (s *Server) finished(w http.ResponseWriter, r *http.Request, op string) (*game.Result, bool) {
	res, ok := s.lookup(w, r, op)
	if !ok {
		return nil, false
	}
	if res.Status != model.StatusComplete && res.Status != model.StatusCompleteWithErrors {
		writeError(w, http.StatusConflict, "not_ready", NewKind(op, ErrNotReady))
		return nil, false
	}
	return res, true
}

// derived loads a finished game whose possession outputs were kept.
func (s *Server) derived(w http.ResponseWriter, r *http.Request, op string) (*game.Result, bool) {
	res, ok := s.finished(w, r, op)
	if !ok {
		return nil, false
	}
	if res.DerivedWithheld {
		writeError(w, http.StatusConflict, "derived_withheld",
			WrapKind(op, ErrWithheld, errors.New(res.Diagnostics.IntegrityError)))
		return nil, false
	}
	return res, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
