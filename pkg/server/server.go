package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/api"
)

// Server wires the API handlers onto a router
type Server struct {
	router *mux.Router
	logger *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new instance of Server
func NewServer(options ...Option) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}

	handler := api.NewHandler(s.logger)
	handler.RegisterRoutes(s.router)

	// Use the logging middleware for all routes
	s.router.Use(s.requestLoggerMiddleware)

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warn("no route found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		http.NotFound(w, r)
	})

	return s
}

// requestLoggerMiddleware logs the method, URL path, and duration for each request
func (s *Server) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// Router exposes the internal mux.Router
func (s *Server) Router() http.Handler {
	return s.router
}
