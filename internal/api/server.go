// Package api exposes the pipeline over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/config"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

// Server is the HTTP front-end.
type Server struct {
	router   chi.Router
	svc      *pipeline.Service
	sessions *pipeline.SessionStore
	log      *zap.Logger
	cfg      config.ServerConfig
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *pipeline.Service, sessions *pipeline.SessionStore, log *zap.Logger, cfg config.ServerConfig) *Server {
	s := &Server{
		svc:      svc,
		sessions: sessions,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/sessions", s.handleCreateSession)
		r.Delete("/api/sessions/{sessionID}", s.handleDeleteSession)
		r.Post("/api/sessions/{sessionID}/navigate", s.handleNavigate)
		r.Post("/api/sessions/{sessionID}/draft", s.handleDraft)
		r.Post("/api/sessions/{sessionID}/workdraft", s.handleWorkDraft)

		r.Post("/api/sections", s.handleSection)
		r.Post("/api/analysis/innovation", s.handleInnovation)
		r.Post("/api/analysis/market", s.handleMarket)
		r.Post("/api/synthesis", s.handleSynthesis)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
