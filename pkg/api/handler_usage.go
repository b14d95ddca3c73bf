package api

import (
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// usageHandler handles GET /api/usage/:userId. A ledger failure degrades
// to a zeroed summary rather than an error response.
func (s *Server) usageHandler(c *echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}

	summary, err := s.ledger.UserSummary(c.Request().Context(), userID)
	if err != nil {
		slog.Error("Failed to fetch usage stats", "user_id", userID, "error", err)
		return c.JSON(http.StatusOK, models.ZeroUsageSummary(userID))
	}

	return c.JSON(http.StatusOK, summary)
}
