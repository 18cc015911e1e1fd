// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
)

// Server wraps the echo instance and the analysis service.
type Server struct {
	echo     *echo.Echo
	analysis interfaces.AnalysisService
	logger   *common.Logger
	addr     string
}

// NewServer creates the HTTP REST API server.
func NewServer(analysis interfaces.AnalysisService, config *common.Config, logger *common.Logger) *Server {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 300 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:     e,
		analysis: analysis,
		logger:   logger,
		addr:     fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
	}

	e.Use(recoveryMiddleware(logger))
	e.Use(correlationIDMiddleware)
	e.Use(loggingMiddleware(logger))
	s.registerRoutes()

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start starts the HTTP server (blocking). It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.addr).
		Msg("Starting REST API server")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
