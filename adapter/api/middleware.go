package api

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

// HeaderCorrelationID carries the caller's correlation ID.
const HeaderCorrelationID = "X-Correlation-ID"

// requestContext copies the request and correlation IDs into the request
// context so logs and sync events carry them.
func requestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := observability.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
			ctx = observability.WithCorrelationID(ctx, req.Header.Get(HeaderCorrelationID))
			c.Response().Header().Set(HeaderCorrelationID, observability.CorrelationIDFromContext(ctx))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Resolve the status before logging it.
				c.Error(err)
			}

			req := c.Request()
			logger.InfoContext(req.Context(), "http request",
				"method", req.Method,
				"uri", req.RequestURI,
				"route", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}

func requestMetrics(metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request().Method, route, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
