package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/upstream"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, domain.ErrProjectNotFound), errors.Is(err, upstream.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidProjectID),
		errors.Is(err, domain.ErrUnknownDepartment),
		errors.Is(err, domain.ErrDuplicateDepartment),
		errors.Is(err, sharedDomain.ErrInvalidDate),
		errors.Is(err, sharedDomain.ErrInvalidNumber):
		return http.StatusBadRequest
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &statusErr) && statusErr.Temporary():
		return http.StatusServiceUnavailable
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFor(err)
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && status == httpErr.Code {
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"route", c.Path(),
			"error", err,
		)
		message = "internal error"
	}

	resp := ErrorResponse{Error: http.StatusText(status), Message: message}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		s.logger.Error("failed to write error response", "error", err)
	}
}
