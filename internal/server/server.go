// Package server exposes the engine over HTTP: a JSON chat endpoint, a
// palette-candidate selection endpoint, a websocket stream, and liveness.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pssnndl/Recolorization/internal/engine"
	"github.com/pssnndl/Recolorization/internal/session"
	"github.com/pssnndl/Recolorization/pkg/models"
)

// TurnRunner is the slice of the engine the handlers need. Candidate
// selection goes through the engine too, so it shares the per-session
// serialization with turns.
type TurnRunner interface {
	HandleTurn(ctx context.Context, req engine.TurnRequest) (*engine.TurnReply, error)
	SelectCandidate(ctx context.Context, sessionID string, index int) (*models.Session, error)
}

var _ TurnRunner = (*engine.Engine)(nil)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	engine TurnRunner
	store  session.Store
	logger *log.Logger
}

// New creates a Server.
func New(eng TurnRunner, store session.Store, logger *log.Logger) *Server {
	return &Server{engine: eng, store: store, logger: logger}
}

// Router builds the route tree with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/agent", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/{sessionID}/select-palette/{index}", s.handleSelectPalette)
		r.Get("/chat/{sessionID}", s.handleGetSession)
		r.Get("/ws", s.handleWS)
		r.Get("/ws/{sessionID}", s.handleWS)
	})

	return r
}

// respondJSON writes v as a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// respondError writes a JSON error body with the given status.
func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
