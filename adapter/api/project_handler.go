package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mfgQueries "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

// HealthResponse is the body of GET /api/projects/:id/health.
type HealthResponse struct {
	ProjectID int64              `json:"projectId"`
	Health    domain.HealthScore `json:"health"`
}

// RedistributeRequest is the body of POST /api/allocations/redistribute.
// Visibility defaults to every department shown; Hide is applied on top.
type RedistributeRequest struct {
	Allocations domain.Allocations `json:"allocations"`
	Visibility  *domain.Visibility `json:"visibility"`
	Hide        []string           `json:"hide"`
}

func (s *Server) listProjects(c echo.Context) error {
	summaries, err := s.handlers.ListMetrics.Handle(c.Request().Context(), queries.ListProjectMetricsQuery{
		Status: c.QueryParam("status"),
		Now:    s.now(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

func (s *Server) getProjectMetrics(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	metrics, err := s.handlers.ProjectMetrics.Handle(c.Request().Context(), queries.GetProjectMetricsQuery{
		ProjectID: id,
		Now:       s.now(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metrics)
}

func (s *Server) getProjectHealth(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	metrics, err := s.handlers.ProjectMetrics.Handle(c.Request().Context(), queries.GetProjectMetricsQuery{
		ProjectID: id,
		Now:       s.now(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, HealthResponse{ProjectID: id, Health: metrics.Health})
}

func (s *Server) getAllocations(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	hide, err := domain.ParseDepartments(c.QueryParam("hide"))
	if err != nil {
		return err
	}
	show, err := domain.ParseDepartments(c.QueryParam("show"))
	if err != nil {
		return err
	}

	view, err := s.handlers.Allocations.Handle(c.Request().Context(), queries.GetAllocationsQuery{
		ProjectID: id,
		Hide:      hide,
		Show:      show,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) redistribute(c echo.Context) error {
	var req RedistributeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	visibility := domain.AllVisible()
	if req.Visibility != nil {
		visibility = *req.Visibility
	}
	for _, name := range req.Hide {
		d, err := domain.ParseDepartment(name)
		if err != nil {
			return err
		}
		visibility = visibility.Hide(d)
	}

	view := s.handlers.Redistribute.Handle(c.Request().Context(), queries.RedistributeAllocationsQuery{
		Raw:        req.Allocations,
		Visibility: visibility,
	})
	return c.JSON(http.StatusOK, view)
}

func (s *Server) listSchedules(c echo.Context) error {
	var bayID int64
	if raw := c.QueryParam("bayId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid bayId %q", raw))
		}
		bayID = id
	}

	schedules, err := s.handlers.ScheduleView.Handle(c.Request().Context(), mfgQueries.ListScheduleAllocationsQuery{BayID: bayID})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedules)
}

// projectID parses the :id path parameter.
func projectID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidProjectID, raw)
	}
	return id, nil
}
