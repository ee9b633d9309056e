package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zhlf2008/AI-Sweater-Designer/webui/auth"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Port to listen on (default: 8080)
	Port int

	// Host to bind to (default: "" = all interfaces)
	Host string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation can poll a remote
	// task for two minutes, so this must comfortably exceed that
	// (default: 300s).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths excluded from request logging.
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    300 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogSkipPaths:    []string{"/health"},
	}
}

// Server wires the API, auth and logging middleware into one http.Server.
type Server struct {
	httpServer *http.Server
	config     ServerConfig
	logger     *zap.Logger
	api        *API
	authMw     *auth.Middleware
}

// NewServer builds the routing tree. authMw may be nil to run without
// authentication.
func NewServer(config ServerConfig, api *API, authMw *auth.Middleware, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		logger: logger,
		api:    api,
		authMw: authMw,
	}

	// API routes live on an inner mux so the whole /api/ subtree can
	// be wrapped by the auth check at once.
	apiMux := http.NewServeMux()
	api.Register(apiMux)

	var apiHandler http.Handler = apiMux
	if authMw != nil {
		apiHandler = authMw.Protect(apiMux)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", api.handleHealth)
	mux.Handle("/api/", apiHandler)
	if authMw != nil {
		mux.HandleFunc("/api/login", authMw.LoginHandler())
		mux.HandleFunc("/api/logout", authMw.LogoutHandler())
	}

	loggingMw := NewLoggingMiddleware(logger, config.LogSkipPaths...)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMw.Wrap(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("web server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", authMw != nil && authMw.Enabled()),
	)

	return s
}

// Handler exposes the full routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening for HTTP requests and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("web server stopped")
	return nil
}
