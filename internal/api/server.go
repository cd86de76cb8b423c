// Package api provides the HTTP API server and handlers for the LibreSine
// movie catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/libresine/libresine-server/internal/catalog"
	"github.com/libresine/libresine-server/internal/config"
	"github.com/libresine/libresine-server/internal/events"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/ratelimit"
	"github.com/libresine/libresine-server/internal/remote"
	"github.com/libresine/libresine-server/internal/search"
	"github.com/libresine/libresine-server/internal/store"
	"github.com/libresine/libresine-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	catalog  *catalog.Aggregator
	remote   *remote.Client
	importer *importer.Manager
	search   *search.MovieIndex

	sseHandler *events.Handler
	validator  *validation.Validator
	config     *config.Config

	// Imports parse whole files in memory, so they are throttled per
	// client address.
	importLimiter *ratelimit.KeyedRateLimiter

	router chi.Router
	api    huma.API
	logger *slog.Logger
}

// Options bundles the server's collaborators.
type Options struct {
	Store      *store.Store
	Catalog    *catalog.Aggregator
	Remote     *remote.Client
	Importer   *importer.Manager
	Search     *search.MovieIndex
	SSEHandler *events.Handler
	Config     *config.Config
	Logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:         opts.Store,
		catalog:       opts.Catalog,
		remote:        opts.Remote,
		importer:      opts.Importer,
		search:        opts.Search,
		sseHandler:    opts.SSEHandler,
		validator:     validation.New(),
		config:        opts.Config,
		importLimiter: ratelimit.New(2, 5),
		router:        router,
		logger:        opts.Logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("LibreSine API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerMovieRoutes()
	s.registerImportRoutes()
	s.registerFavoriteRoutes()
	s.registerCollectionRoutes()
	s.registerSearchRoutes()

	// SSE needs a streaming response; it stays on the raw router.
	if s.sseHandler != nil {
		router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.importLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The web client is served from its own origin during development.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Filename"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}
