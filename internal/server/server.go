// Package server exposes the editor over HTTP: preview, apply, and batch
// mirror the editor surface one-to-one, and stored scenarios are served
// when a store is attached. Handlers only marshal and map status codes;
// all edit semantics stay in the editor.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/store"
)

// Config carries the server's dependencies. Store is optional; without it
// the scenario routes are not registered.
type Config struct {
	Addr   string
	Editor *editor.Editor
	Store  *store.Store
	Logger *log.Logger
}

// Server is the HTTP front end over one editor and an optional store.
type Server struct {
	cfg  Config
	echo *echo.Echo
}

// CustomValidator adapts go-playground/validator to echo's Validator
// interface.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the router. A nil Editor gets the built-in ontology; a nil
// Logger logs to stderr.
func New(cfg Config) *Server {
	if cfg.Editor == nil {
		cfg.Editor = editor.New(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	logger := cfg.Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{cfg: cfg, echo: e}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	v1 := e.Group("/v1")
	v1.POST("/preview", s.handlePreview)
	v1.POST("/apply", s.handleApply)
	v1.POST("/batch", s.handleBatch)
	v1.GET("/help", s.handleHelp)

	if s.cfg.Store != nil {
		v1.GET("/scenarios", s.handleListScenarios)
		v1.GET("/scenarios/:name", s.handleGetScenario)
		v1.PUT("/scenarios/:name", s.handlePutScenario)
		v1.GET("/scenarios/:name/revisions", s.handleRevisions)
	}
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("starting server", "addr", s.cfg.Addr)
		if err := s.echo.Start(s.cfg.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.cfg.Logger.Info("shutting down")
	return s.echo.Shutdown(shutdownCtx)
}
