package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/calebtn/go-mood-matcher/internal/embedding"
	"github.com/calebtn/go-mood-matcher/internal/mood"
	"github.com/calebtn/go-mood-matcher/internal/sentiment"
	"github.com/calebtn/go-mood-matcher/internal/transcribe"
)

// ServerConfig holds server configuration. Vocabulary and Predictor are the
// process-wide immutable models, loaded once before the server starts.
type ServerConfig struct {
	Addr           string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	FrontendOrigin string

	Vocabulary  *embedding.Vocabulary
	Predictor   *mood.Network
	Transcriber transcribe.Transcriber
	Classifier  sentiment.Classifier
	Sessions    SessionManager

	// Catalog overrides the Spotify-backed feature source; nil uses the
	// real API. Intended for tests.
	Catalog CatalogFactory
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Vocabulary == nil || cfg.Predictor == nil {
		return nil, fmt.Errorf("vocabulary and predictor models are required")
	}
	if cfg.Transcriber == nil || cfg.Classifier == nil {
		return nil, fmt.Errorf("transcriber and classifier are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessionStore()
	}

	handlers := NewHandlers(auth, sessions, cfg.Vocabulary, cfg.Predictor,
		cfg.Transcriber, cfg.Classifier, cfg.Catalog)

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
	}

	s.setupMiddleware(cfg.FrontendOrigin)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // transcription of long uploads is slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(frontendOrigin string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	s.router.Use(c.Handler)
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlers.Home)
	s.router.Get("/health", s.handlers.Health)

	s.router.Get("/login", s.handlers.Login)
	s.router.Post("/callback", s.handlers.Callback)

	s.router.Post("/upload", s.handlers.Upload)
	s.router.Post("/analyze-tracks", s.handlers.AnalyzeTracks)
	s.router.Post("/mood-groups", s.handlers.MoodGroups)
}

// Router returns the configured router, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
