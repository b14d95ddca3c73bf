package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// getJobHandler handles GET /api/jobs/:id.
func (s *Server) getJobHandler(c *echo.Context) error {
	jobID := c.Param("id")
	if jobID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "job id is required")
	}

	job, ok := s.registry.Get(jobID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Job not found")
	}

	return c.JSON(http.StatusOK, job)
}
