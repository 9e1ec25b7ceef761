// Package api provides the REST API server for codecomposer
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/errs"
)

// @title CodeComposer API
// @version 1.0
// @description API for turning source code token streams into two-voice compositions
// @host localhost:8080
// @BasePath /api/v1

// Server serves compositions over HTTP
type Server struct {
	composer *composer.Composer
	history  *archive.Store
	logger   *slog.Logger
	sentry   bool
}

// Option configures a Server
type Option func(*Server)

// WithComposer sets the composer used for requests
func WithComposer(c *composer.Composer) Option {
	return func(s *Server) { s.composer = c }
}

// WithHistory enables the composition history endpoints
func WithHistory(store *archive.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithSentry installs the Sentry middleware; sentry.Init must already have run
func WithSentry() Option {
	return func(s *Server) { s.sentry = true }
}

// NewServer creates a Server with the built-in styles and no history
func NewServer(opts ...Option) *Server {
	s := &Server{
		composer: composer.New(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: sentryFlushTimeout}))
	}
	r.Use(requestTracking(s.logger))

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/compose", s.handleCompose)
		v1.POST("/compose/upload", s.handleComposeUpload)
		v1.POST("/tokenize", handleTokenize)
		v1.GET("/styles", s.listStyles)
		v1.GET("/styles/:name", s.getStyle)
		v1.GET("/scales", listScales)
		v1.GET("/scales/:name/preview", previewScale)
		v1.GET("/progressions", listProgressions)
		v1.GET("/bass-patterns", listBassPatterns)
		v1.GET("/instruments", listInstruments)
		v1.GET("/formats", listFormats)

		v1.GET("/compositions", s.listCompositions)
		v1.GET("/compositions/:id", s.getComposition)
		v1.DELETE("/compositions/:id", s.deleteComposition)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Run starts the API server on the specified port
func (s *Server) Run(port string) error {
	s.logger.Info("starting API server", "port", port)
	return s.Router().Run(fmt.Sprintf(":%s", port))
}

// statusFor maps composition errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrConfiguration), errors.Is(err, errs.ErrBadInput):
		return http.StatusBadRequest
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the mapped status and reports server errors to Sentry
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("path", c.Request.URL.Path)
				hub.CaptureException(err)
			})
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
