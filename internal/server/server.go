// Package server exposes the aggregated prices over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hargaemas/internal/ratelimit"
	"hargaemas/internal/report"
	"hargaemas/internal/source"
)

// Aggregator produces a fresh aggregation result per call
type Aggregator interface {
	Run(ctx context.Context) source.AggregateResult
}

// Option configures Server.
type Option func(*Server)

// WithLocation sets the timezone used for the report timestamp.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		s.loc = loc
	}
}

// WithMetrics exposes h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLimiter throttles the routes that trigger a fresh aggregation.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithClock overrides the time source used for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// Server wraps an Echo instance serving the price endpoints.
type Server struct {
	echo    *echo.Echo
	agg     Aggregator
	loc     *time.Location
	metrics http.Handler
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// New creates the server and registers its routes.
func New(agg Aggregator, opts ...Option) *Server {
	s := &Server{
		agg: agg,
		loc: time.UTC,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogging())

	e.GET("/prices", s.handlePrices, s.throttle)
	e.GET("/", s.handleIndex, s.throttle)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	s.echo = e
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and blocks until the server is shut down.
func (s *Server) Start(addr string) error {
	slog.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.Info("http server stopped gracefully")
	return nil
}

func (s *Server) handlePrices(c echo.Context) error {
	return c.JSON(http.StatusOK, s.agg.Run(c.Request().Context()))
}

func (s *Server) handleIndex(c echo.Context) error {
	agg := s.agg.Run(c.Request().Context())

	var buf bytes.Buffer
	if err := report.Render(&buf, agg, s.now(), s.loc); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// throttle rejects requests once the route's budget is spent
func (s *Server) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow(c.Path()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many aggregation requests")
		}
		return next(c)
	}
}

func requestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			slog.Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start))
			return nil
		}
	}
}
