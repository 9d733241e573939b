package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/textcipher-go/internal/auth"
	"github.com/textcipher-go/internal/config"
	"github.com/textcipher-go/internal/dao"
	"github.com/textcipher-go/internal/engine"
	"github.com/textcipher-go/internal/handler"
	"github.com/textcipher-go/internal/storage"
)

const streamPrefix = "/api/v1/stream/"

// Server serves the cipher engine over HTTP
type Server struct {
	cfg        *config.Config
	store      *storage.Store
	engine     *engine.Engine
	router     *gin.Engine
	httpServer *http.Server
	jwtAuth    *auth.JWTAuth
	historyDAO *dao.HistoryDAO
}

// New creates a new server instance. The history store is opened only
// when history is enabled.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	opts := engine.Options{
		ChunkSize: cfg.Stream.ChunkSize,
		Atomic:    cfg.Stream.Atomic,
	}
	if cfg.History.Enable {
		store, err := storage.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		s.store = store
		s.historyDAO = dao.NewHistoryDAO(store)
		opts.History = s.historyDAO
	}
	s.engine = engine.New(opts)

	if cfg.IsAuthEnabled() {
		s.jwtAuth = auth.NewJWTAuth(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpire)*time.Hour)
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	s.router = r

	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	if s.cfg.Server.Gzip {
		// Stream responses are written chunk by chunk and must not be buffered
		r.Use(gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths([]string{streamPrefix})))
	}

	r.GET("/health", HealthHandler)
	r.GET("/ready", s.ReadyHandler)

	cipherHandler := handler.NewCipherHandler(s.engine, s.cfg.MaxBodyBytes())

	api := r.Group("/api/v1")
	if s.jwtAuth != nil {
		api.Use(AuthMiddleware(s.jwtAuth))
	}
	api.POST("/encrypt", cipherHandler.Encrypt)
	api.POST("/decrypt", cipherHandler.Decrypt)
	api.POST("/stream/:direction", cipherHandler.Stream)

	if s.historyDAO != nil {
		historyHandler := handler.NewHistoryHandler(s.historyDAO, s.cfg.History.Limit)
		api.GET("/history", historyHandler.List)
		api.GET("/history/:id", historyHandler.Get)
	}
}

// Start listens on the configured address and blocks until the server stops
func (s *Server) Start() error {
	addr := s.cfg.GetHTTPAddr()

	var httpHandler http.Handler = s.router

	// Enable h2c (HTTP/2 cleartext) if configured
	if s.cfg.Server.EnableH2C {
		h2s := &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          120 * time.Second,
		}
		httpHandler = h2c.NewHandler(s.router, h2s)
		log.Info().Msg("HTTP/2 cleartext (h2c) enabled")
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       0, // No timeout for streaming
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Bool("auth", s.jwtAuth != nil).
		Bool("history", s.historyDAO != nil).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down server...")

	var lastErr error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			lastErr = err
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
