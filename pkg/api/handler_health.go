package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:            "healthy",
		Timestamp:         time.Now().UTC(),
		RealtimeAvailable: s.factory.RealtimeAvailable(),
	})
}
