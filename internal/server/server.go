// Package server exposes the search page and the /q endpoint.
package server

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/ownsearch/internal/logx"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

//go:embed static
var staticFS embed.FS

const shutdownTimeout = 30 * time.Second

type Server struct {
	client  search.Client
	address string
	title   string
	engine  *gin.Engine
}

type OptionFunc func(s *Server)

func WithAddress(address string) OptionFunc {
	return func(s *Server) {
		s.address = address
	}
}

func WithTitle(title string) OptionFunc {
	return func(s *Server) {
		s.title = title
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "starting http server", slog.String("address", s.address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.WithStack(err)
		}

		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	return nil
}

func (s *Server) setupRoutes() error {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return errors.WithStack(err)
	}

	s.engine.Use(requestID())
	s.engine.Use(requestLogger())
	s.engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic while handling request", slog.Any("recovered", recovered))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/q", s.handleQuery)
	s.engine.StaticFS("/static", http.FS(static))

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = xid.New().String()
		}

		c.Header("X-Request-ID", id)

		ctx := logx.WithAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.DebugContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func New(client search.Client, funcs ...OptionFunc) (*Server, error) {
	s := &Server{
		client:  client,
		address: ":8080",
		engine:  gin.New(),
	}

	for _, fn := range funcs {
		fn(s)
	}

	if err := s.setupRoutes(); err != nil {
		return nil, errors.WithStack(err)
	}

	return s, nil
}
