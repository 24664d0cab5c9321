package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ingestly/docextract/internal/api/handlers"
	appMiddleware "github.com/ingestly/docextract/internal/api/middlewares"
	"github.com/ingestly/docextract/internal/config"
	"github.com/ingestly/docextract/internal/extractor"
	"github.com/ingestly/docextract/internal/llm"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, router *extractor.Router, summarizer *llm.Summarizer, logger *slog.Logger) *Server {
	extractHandler := handlers.NewExtractHandler(router, summarizer, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	// Large scanned PDFs over OCR can legitimately run for minutes.
	r.Use(chimw.Timeout(10 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
	}))

	r.Get("/api/health", extractHandler.Health)

	r.Group(func(protected chi.Router) {
		protected.Use(appMiddleware.APIKeyMiddleware(cfg.APIKey, cfg.APIKeyHash))
		if cfg.JWTSecret != "" {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
		}
		protected.Post("/api/extract", extractHandler.Extract)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
