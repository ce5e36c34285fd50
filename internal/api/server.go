package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apihandler "github.com/newthinker/quotegate/internal/api/handler/api"
	"github.com/newthinker/quotegate/internal/api/response"
	"github.com/newthinker/quotegate/internal/metrics"
	"go.uber.org/zap"
)

// MarketService is what the server needs from market.Service.
type MarketService interface {
	apihandler.MarketService
	VendorStatus() string
}

// Server represents the HTTP server for quotegate
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// MetricsPath is served only when Dependencies.Metrics is set.
	MetricsPath string
}

// Dependencies holds the collaborators behind the routes
type Dependencies struct {
	Market  MarketService
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Market == nil {
		return nil, fmt.Errorf("market service is required")
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}
	s.setupRoutes(cfg)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.middleware(cfg).Handler(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	market := apihandler.NewMarketHandler(s.deps.Market, s.logger)

	s.mux.HandleFunc("GET /quote", market.Quote)
	s.mux.HandleFunc("GET /history", market.History)
	s.mux.HandleFunc("GET /fundamentals", market.Fundamentals)
	s.mux.HandleFunc("GET /news", market.News)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.deps.Metrics != nil {
		s.mux.Handle("GET "+cfg.MetricsPath, s.deps.Metrics.Handler())
	}
}

// middleware builds the chain applied to every route, outermost first.
func (s *Server) middleware(cfg Config) chi.Middlewares {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return chi.Chain(
		metrics.LoggingMiddleware(s.logger),
		metrics.HTTPMiddleware(s.deps.Metrics),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}),
		middleware.Recoverer,
	)
}

// Handler returns the fully wrapped root handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"vendor": s.deps.Market.VendorStatus(),
	})
}
