package api

import (
	"net/http"

	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"
)

// wsHandler upgrades GET /ws/stream?jobId=<id> to a WebSocket and delegates
// the session to the stream coordinator. Blocks until the session ends.
func (s *Server) wsHandler(c *echo.Context) error {
	jobID := c.QueryParam("jobId")
	if jobID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "jobId is required")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// Open demo posture: accept all origins, matching the permissive
		// CORS policy on the REST endpoints.
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	s.coordinator.HandleConnection(c.Request().Context(), conn, jobID)
	return nil
}
