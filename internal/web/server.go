package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
	"github.com/reedham/go-tempo-playlist/internal/service"
	"github.com/reedham/go-tempo-playlist/internal/spotify"
	"github.com/reedham/go-tempo-playlist/internal/tempo"
)

// ServerConfig holds server configuration and the process-wide
// collaborators shared across sessions.
type ServerConfig struct {
	Addr          string
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	AllowedOrigin string

	// Tags and Completer feed the tag-heuristic and LLM adapters; either may
	// be nil, which drops that source from the chain.
	Tags      tempo.TagFetcher
	Completer tempo.TextCompleter

	Logger *log.Logger
}

// Server is the HTTP server for the application.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
	logger   *log.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) *Server {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
		),
	)

	sessions := NewSessionStore()

	// Spotify clients are per-session (user tokens); the tag and LLM
	// collaborators are shared. Each request gets a cheap generator wired
	// to its session's token.
	factory := func(ctx context.Context, token *oauth2.Token) playlistGenerator {
		client := spotify.New(spotifyapi.New(auth.Client(ctx, token)))
		resolver := tempo.NewResolver(cfg.Logger,
			tempo.DefaultAdapters(client, cfg.Completer, cfg.Tags)...)
		provider := playlist.NewProvider(client, cfg.Logger)
		return service.NewGenerator(client, resolver, provider, cfg.Logger)
	}

	handlers := NewHandlers(auth, sessions, factory, cfg.Logger)

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		sessions: sessions,
		handlers: handlers,
		logger:   cfg.Logger,
	}

	s.setupMiddleware(cfg.AllowedOrigin)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(allowedOrigin string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(corsMiddleware(allowedOrigin))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	// Auth
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	// API
	s.router.Get("/api/me", s.handlers.Me)
	s.router.Get("/api/tempo", s.handlers.ResolveTempo)
	s.router.Post("/api/playlist", s.handlers.GeneratePlaylist)

	// Proxy for the SPA's direct Spotify calls
	s.router.Get("/spotify-proxy/*", s.handlers.SpotifyProxy)
}

// corsMiddleware sets the CORS headers for the SPA origin and answers
// preflight requests.
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
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
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return err
	}

	s.logger.Info("server stopped")
	return nil
}
