// Package api exposes the roster, stats and scraping operations over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kapu/ikusa-server/internal/domain"
	"go.uber.org/zap"
)

type ProfileScraper interface {
	Scrape(ctx context.Context, sourceURL, name string) (*domain.ScrapedProfile, error)
	ScrapeMany(ctx context.Context, targets []domain.ScrapeTarget) []domain.ScrapeResult
}

type UploadService interface {
	Create(ctx context.Context, req domain.UploadRequest) (*domain.Upload, *domain.GuildStats, error)
	Get(ctx context.Context, id string) (*domain.Upload, error)
	List(ctx context.Context, limit int) ([]*domain.Upload, error)
	Stats(ctx context.Context, id string) (*domain.GuildStats, error)
	Compare(ctx context.Context, idA, idB string) (*domain.StatsComparison, error)
}

type ProfileArchive interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.ScrapedProfile, error)
	LatestByURL(ctx context.Context, sourceURL string) (*domain.ScrapedProfile, error)
}

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies lists what the server routes to. Uploads and Profiles may be
// nil when their store is not configured; those routes then answer 503.
type Dependencies struct {
	Scraper        ProfileScraper
	Uploads        UploadService
	Profiles       ProfileArchive
	HealthChecks   map[string]HealthCheck
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Server struct {
	scraper   ProfileScraper
	uploads   UploadService
	profiles  ProfileArchive
	checks    map[string]HealthCheck
	validator *Validator
	router    *chi.Mux
	logger    *zap.Logger
}

func NewServer(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		scraper:   deps.Scraper,
		uploads:   deps.Uploads,
		profiles:  deps.Profiles,
		checks:    deps.HealthChecks,
		validator: NewValidator(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware(deps.AllowedOrigins)
	s.setupRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/scrape", s.handleScrape)
		r.Post("/scrape/batch", s.handleScrapeBatch)
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/latest", s.handleLatestProfile)

		r.Post("/gearscore", s.handleGearscore)
		r.Post("/classify", s.handleClassify)
		r.Post("/stats", s.handleStats)

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", s.handleCreateUpload)
			r.Get("/", s.handleListUploads)
			r.Get("/{id}", s.handleGetUpload)
			r.Get("/{id}/stats", s.handleUploadStats)
		})
		r.Get("/compare", s.handleCompare)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
