// Package api provides the HTTP API server and handlers for the
// PromptVault application.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/promptvault/promptvault-server/internal/config"
	"github.com/promptvault/promptvault-server/internal/ratelimit"
	"github.com/promptvault/promptvault-server/internal/service"
	"github.com/promptvault/promptvault-server/internal/storage"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	Sessions    *service.SessionService
	Prompts     *service.PromptService
	Tags        *service.TagService
	Feed        *service.FeedService
	Search      *service.SearchService
	Preferences *service.PreferencesService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	objects         storage.ObjectStore
	signer          *storage.Signer
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, services *Services, objects storage.ObjectStore, signer *storage.Signer, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-File-Name"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("PromptVault API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services:        services,
		objects:         objects,
		signer:          signer,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: ratelimit.New(20.0/60.0, 10), // 20/min with a burst of 10
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerFeedRoutes()
	s.registerPromptRoutes()
	s.registerTagRoutes()
	s.registerSearchRoutes()
	s.registerPreferencesRoutes()
	s.registerObjectRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// rateLimitAuth rejects repeated credential attempts from one client.
// Keyed by client IP; only auth endpoints pass through it.
func (s *Server) rateLimitAuth(remoteAddr, xForwardedFor, xRealIP string) error {
	key := clientIP(remoteAddr, xForwardedFor, xRealIP)
	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("auth rate limit exceeded", "ip", key)
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}

// clientIP picks the client address from proxy headers, falling back
// to the connection's remote address.
func clientIP(remoteAddr, xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		// First entry in the chain is the client.
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return xForwardedFor
	}
	if xRealIP != "" {
		return xRealIP
	}
	// Strip the port from RemoteAddr.
	if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
		return remoteAddr[:i]
	}
	return remoteAddr
}

// HTTPServer builds the net/http server around the router using the
// configured timeouts.
func (s *Server) HTTPServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
