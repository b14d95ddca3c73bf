// Package api provides the HTTP facade: job creation, job lookup, usage
// queries, health, the WebSocket streaming endpoint, and static pages.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/pvsairam/Sentient-Playground/pkg/config"
	"github.com/pvsairam/Sentient-Playground/pkg/jobs"
	"github.com/pvsairam/Sentient-Playground/pkg/stream"
	"github.com/pvsairam/Sentient-Playground/pkg/usage"
	"github.com/pvsairam/Sentient-Playground/pkg/workflow"
)

// Server is the HTTP API server.
type Server struct {
	cfg         *config.Config
	registry    *jobs.Registry
	ledger      usage.Ledger
	coordinator *stream.Coordinator
	factory     *workflow.Factory

	echo       *echo.Echo
	httpServer *http.Server
}

// NewServer wires the HTTP facade.
func NewServer(
	cfg *config.Config,
	registry *jobs.Registry,
	ledger usage.Ledger,
	coordinator *stream.Coordinator,
	factory *workflow.Factory,
) *Server {
	s := &Server{
		cfg:         cfg,
		registry:    registry,
		ledger:      ledger,
		coordinator: coordinator,
		factory:     factory,
		echo:        echo.New(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(requestLogger(), securityHeaders(), permissiveCORS())

	e.POST("/api/ask", s.askHandler)
	e.GET("/api/jobs/:id", s.getJobHandler)
	e.GET("/api/usage/:userId", s.usageHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/ws/stream", s.wsHandler)

	// Static demo pages.
	e.GET("/", s.pageHandler("index.html"))
	e.GET("/settings.html", s.pageHandler("settings.html"))
	e.GET("/demo.html", s.pageHandler("demo.html"))
	e.GET("/static/:file", s.staticHandler)
}

// Start begins serving on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route tree for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
