package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Skipped []models.SkippedTicker `json:"skipped,omitempty"`
}

// errorHandler renders echo errors in the ErrorResponse shape.
func errorHandler(logger *common.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled handler error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, ErrorResponse{Error: msg})
	}
}

// tickerList accepts either a JSON array of symbols or a single
// comma-separated string.
type tickerList []string

func (t *tickerList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("tickers must be a string or an array of strings")
	}
	*t = tickerList{s}
	return nil
}

// Tickers normalizes and dedupes the list.
func (t tickerList) Tickers() []models.Ticker {
	return models.ParseTickers(strings.Join(t, ","))
}
