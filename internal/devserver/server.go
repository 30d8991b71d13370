package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yildizm/SalesForecaster/internal/config"
	"github.com/yildizm/SalesForecaster/internal/logger"
	"github.com/yildizm/SalesForecaster/internal/monitor"
)

const shutdownTimeout = 5 * time.Second

// Server is a local stand-in for the analysis service
type Server struct {
	cfg   config.DevServerConfig
	echo  *echo.Echo
	store   *Store
	metrics *monitor.Collector
	log     *logger.Logger
}

// New builds a server with its routes and middleware
func New(cfg config.DevServerConfig, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithComponent("devserver")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.DebugWithFields("request", []logger.Field{
				logger.F("method", v.Method),
				logger.F("uri", v.URI),
				logger.F("status", v.Status),
				logger.Duration(v.Latency),
			})
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		cfg:     cfg,
		echo:    e,
		store:   NewStore(),
		metrics: monitor.NewCollector(),
		log:     log,
	}
	e.Use(TrackOperations(s.metrics))

	h := NewHandler(s.store, cfg.HistoryLimit, cfg.MaxUploadSize, log)
	h.metrics = s.metrics
	RegisterRoutes(e, h)
	return s
}

// RegisterRoutes mounts the API under /api
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")
	api.POST("/analyze/", h.HandleAnalyze)
	api.GET("/history/", h.HandleHistory)
	api.DELETE("/history/:id/", h.HandleDelete)
	api.GET("/download/:id/", h.HandleDownload)
	api.GET("/stats/", h.HandleStats)
}

// routeOperations maps registered route paths to tracked operations
var routeOperations = map[string]monitor.OperationType{
	"/api/analyze/":      monitor.OperationAnalyze,
	"/api/history/":      monitor.OperationHistory,
	"/api/history/:id/":  monitor.OperationDelete,
	"/api/download/:id/": monitor.OperationDownload,
}

// TrackOperations times every API request and counts failed ones
func TrackOperations(metrics *monitor.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			op, ok := routeOperations[c.Path()]
			if !ok {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			metrics.RecordOperation(op, time.Since(start), responseStatus(c, err) >= http.StatusBadRequest)
			return err
		}
	}
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the operation metrics collector
func (s *Server) Metrics() *monitor.Collector {
	return s.metrics
}

// Store returns the backing store
func (s *Server) Store() *Store {
	return s.store
}

// Start serves on the configured address until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on http://%s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev server shutdown failed: %w", err)
	}
	s.log.Info("stopped")
	return nil
}
