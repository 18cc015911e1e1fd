package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
	"github.com/bobmcallan/valuescope/internal/services/report"
)

// AnalyzeRequest is the body of POST /api/analyze and POST /api/charts/:kind.
type AnalyzeRequest struct {
	Tickers    tickerList `json:"tickers"`
	MaxTickers int        `json:"max_tickers,omitempty"`
	Format     string     `json:"format,omitempty"` // json (default), markdown, html or text
}

// handleHealth responds with {"status":"ok"}.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds with version info.
func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, common.CurrentBuild())
}

// handleAnalyze runs an analysis and returns the table in the requested format.
func (s *Server) handleAnalyze(c echo.Context) error {
	req, err := bindAnalyzeRequest(c)
	if err != nil {
		return err
	}

	format := req.Format
	if format == "" {
		format = report.FormatNameJSON
	}
	if !report.ValidFormat(format) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown format: "+format)
	}

	table, err := s.run(c, req)
	if err != nil {
		return s.analysisError(c, table, err)
	}

	if strings.EqualFold(format, report.FormatNameJSON) {
		return c.JSON(http.StatusOK, table)
	}
	body, contentType, err := report.Render(table, format)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, body)
}

// handleChart runs an analysis and returns one chart as PNG.
func (s *Server) handleChart(c echo.Context) error {
	kind := c.Param("kind")
	if !knownChartKind(kind) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown chart kind: "+kind)
	}

	req, err := bindAnalyzeRequest(c)
	if err != nil {
		return err
	}

	table, err := s.run(c, req)
	if err != nil {
		return s.analysisError(c, table, err)
	}

	png, err := report.RenderChart(table, kind)
	if errors.Is(err, report.ErrNoChartData) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// handleChartKinds lists the supported chart kinds.
func (s *Server) handleChartKinds(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"kinds": report.ChartKinds()})
}

func bindAnalyzeRequest(c echo.Context) (*AnalyzeRequest, error) {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if len(req.Tickers.Tickers()) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, models.ErrNoTickers.Error())
	}
	if req.MaxTickers != 0 && (req.MaxTickers < common.MinMaxTickers || req.MaxTickers > common.MaxMaxTickers) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "max_tickers must be between 1 and 100")
	}
	return &req, nil
}

func (s *Server) run(c echo.Context, req *AnalyzeRequest) (*models.Table, error) {
	tickers := req.Tickers.Tickers()
	s.logger.Info().Int("tickers", len(tickers)).Msg("Analysis requested")

	table, _, err := s.analysis.Analyze(c.Request().Context(), tickers, interfaces.AnalyzeOptions{
		MaxTickers: req.MaxTickers,
	})
	return table, err
}

func (s *Server) analysisError(c echo.Context, table *models.Table, err error) error {
	switch {
	case errors.Is(err, models.ErrEmptyResult):
		resp := ErrorResponse{Error: err.Error(), Code: "empty_result"}
		if table != nil {
			resp.Skipped = table.Skipped
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, models.ErrNoTickers):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}

func knownChartKind(kind string) bool {
	for _, k := range report.ChartKinds() {
		if k == kind {
			return true
		}
	}
	return false
}
