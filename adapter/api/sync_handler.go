package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
)

// SyncStatusResponse is the body of GET /api/sync/status.
type SyncStatusResponse struct {
	recordsync.Status
	UpstreamBreaker string `json:"upstreamBreaker,omitempty"`
}

func (s *Server) syncAll(c echo.Context) error {
	if s.handlers.Syncer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sync is not configured")
	}
	report, err := s.handlers.Syncer.SyncAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) syncProject(c echo.Context) error {
	if s.handlers.Syncer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sync is not configured")
	}
	id, err := projectID(c)
	if err != nil {
		return err
	}
	report, err := s.handlers.Syncer.SyncProject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) syncStatus(c echo.Context) error {
	var resp SyncStatusResponse
	if s.handlers.SyncStatus != nil {
		resp.Status = s.handlers.SyncStatus.Snapshot()
	}
	if s.handlers.UpstreamBreaker != nil {
		resp.UpstreamBreaker = s.handlers.UpstreamBreaker()
	}
	return c.JSON(http.StatusOK, resp)
}
