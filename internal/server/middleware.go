package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bobmcallan/valuescope/internal/common"
)

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", c.Request().URL.Path).
						Msg("Panic recovered in HTTP handler")
					err = c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
				}
			}()
			return next(c)
		}
	}
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		corrID := req.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = req.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		c.Response().Header().Set("X-Correlation-ID", corrID)
		return next(c)
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			event := logger.Trace()
			if res.Status >= 500 {
				event = logger.Error()
			} else if res.Status >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("duration", time.Since(start)).
				Str("correlation_id", res.Header().Get("X-Correlation-ID")).
				Msg("HTTP request")

			return nil
		}
	}
}
