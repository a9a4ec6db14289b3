package httpserver

import (
	"log/slog"
	"math"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
		s.echo.Use(apperrors.Middleware(s.httpMetrics))
	} else {
		s.echo.Use(apperrors.Middleware(nopErrorCounter{}))
	}
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled:    true,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	s.echo.Use(middleware.BodyLimit("1M"))

	s.registerHealthRoutes()
	if s.metricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}

	burst := max(1, int(math.Ceil(s.config.RateLimitAuth*2)))
	s.registerAuthRoutes(newRateLimiter(s.config.RateLimitAuth, burst))

	api := s.echo.Group("/api", s.requireAuth)
	s.registerAccountRoutes(api)
	s.registerNoteRoutes(api)
	s.registerCalendarRoutes(api)
	s.registerFoodRoutes(api)
	s.registerTierRoutes(api)

	s.echo.GET("/ws/canvas", s.handleCanvasSocket, s.requireAuth)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

type nopErrorCounter struct{}

func (nopErrorCounter) ErrorReturned(string) {}
