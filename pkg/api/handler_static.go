package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	echo "github.com/labstack/echo/v5"
)

// pageHandler serves a named page from the static directory.
func (s *Server) pageHandler(name string) echo.HandlerFunc {
	return func(c *echo.Context) error {
		return s.serveStatic(c, name)
	}
}

// staticHandler serves GET /static/:file.
func (s *Server) staticHandler(c *echo.Context) error {
	return s.serveStatic(c, c.Param("file"))
}

func (s *Server) serveStatic(c *echo.Context, name string) error {
	// Reject traversal; only plain file names inside the static dir.
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") || strings.HasPrefix(name, ".") {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	path := filepath.Join(s.cfg.StaticDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	contentType := "text/html; charset=utf-8"
	switch filepath.Ext(name) {
	case ".js":
		contentType = "application/javascript"
	case ".css":
		contentType = "text/css"
	case ".json":
		contentType = "application/json"
	}
	return c.Blob(http.StatusOK, contentType, data)
}
