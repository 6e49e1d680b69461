package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/auth"
	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/config"
	"github.com/portfolio-site/backend/database"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// Dependencies are the adapters the handlers run against.
type Dependencies struct {
	Database      database.Database
	Blobs         blob.Store
	Authenticator auth.Authenticator
	Tokens        *auth.TokenIssuer
	// Notifier is optional; nil disables new-feedback notifications.
	Notifier FeedbackNotifier
}

func NewServer(cfg config.Config, deps Dependencies) (Server, error) {
	if deps.Blobs == nil || deps.Authenticator == nil {
		return Server{}, fmt.Errorf("blob store and authenticator are required")
	}

	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(storesFor(deps), withConfig(cfg), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}

	return Server{server, startupTime}, nil
}

// stores is what the router needs from Dependencies, narrowed to interfaces.
type stores struct {
	projects      projectStore
	feedback      feedbackStore
	pinger        pinger
	blobs         blob.Store
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
	notifier      FeedbackNotifier
}

func storesFor(deps Dependencies) stores {
	return stores{
		projects:      deps.Database.ProjectRepo(),
		feedback:      deps.Database.FeedbackRepo(),
		pinger:        deps.Database,
		blobs:         deps.Blobs,
		authenticator: deps.Authenticator,
		tokens:        deps.Tokens,
		notifier:      deps.Notifier,
	}
}

type router struct {
	config      config.Config
	startupTime time.Time
}

func withConfig(c config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(s stores, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware)

	acceptedOrigins := router.config.AcceptedOrigins
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if router.config.MaxUploadBytes > 0 {
		chiRouter.Use(limitBody(router.config.MaxUploadBytes))
	}

	handlers := initializeHandlers(s, router.startupTime)
	authMiddleware := newAuthMiddleware(s.authenticator, s.tokens)

	setupRoutes(chiRouter, handlers, authMiddleware, router.config)
	setupStaticRoutes(chiRouter, router.config)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
