package api

import (
	"log/slog"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// askHandler handles POST /api/ask: creates a job, stashes the supplied
// credentials for the upcoming WebSocket attach, and returns the stream URL.
func (s *Server) askHandler(c *echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	bundle := models.CredentialBundle{
		Keys: map[string]string{
			models.ProviderOpenAI:    c.Request().Header.Get(headerOpenAIKey),
			models.ProviderAnthropic: c.Request().Header.Get(headerAnthropicKey),
			models.ProviderFireworks: c.Request().Header.Get(headerFireworksKey),
		},
		ModelHint: c.Request().Header.Get(headerDobbyModel),
	}
	useRealtime := s.factory.Available(bundle)

	// Job metadata never carries the keys; they live in the credential map
	// until the first WebSocket attach consumes them.
	job := s.registry.CreateJob(req.Prompt, req.LessonID, req.UserID, useRealtime)
	s.registry.AttachCredentials(job.ID, bundle)

	slog.Info("Created job",
		"job_id", job.ID,
		"prompt", truncateForLog(req.Prompt),
		"realtime", useRealtime)

	return c.JSON(http.StatusOK, askResponse{
		JobID: job.ID,
		WSURL: s.cfg.WSBase + "/ws/stream?jobId=" + job.ID,
	})
}

func truncateForLog(s string) string {
	if len(s) <= 100 {
		return s
	}
	return s[:100]
}
