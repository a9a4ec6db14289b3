package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named dependency probe, e.g. the postgres pool ping or
// the redis PING wired in by cmd/server.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type livenessResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

type probeResponse struct {
	Status      string   `json:"status"`
	Checks      []string `json:"checks"`
	FailedCheck string   `json:"failed_check,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	return s.probe(c, startupProbeTimeout)
}

// handleLiveness reports uptime only and runs no dependency checks.
func (s *Server) handleLiveness(c echo.Context) error {
	return sendJSON(c, http.StatusOK, livenessResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	return s.probe(c, readinessProbeTimeout)
}

// probe runs the checks in registration order and stops at the first
// failure. Checks lists the ones that passed.
func (s *Server) probe(c echo.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	resp := probeResponse{Status: "ready", Checks: make([]string, 0, len(s.healthChecks))}
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.FailedCheck = hc.Name
			resp.Error = err.Error()
			return sendJSON(c, http.StatusServiceUnavailable, resp)
		}
		resp.Checks = append(resp.Checks, hc.Name)
	}
	return sendJSON(c, http.StatusOK, resp)
}

func (s *Server) handleVersion(c echo.Context) error {
	return sendJSON(c, http.StatusOK, version.Get())
}
