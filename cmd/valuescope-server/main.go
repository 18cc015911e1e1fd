// Command valuescope-server serves the analysis pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/valuescope/internal/app"
	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/server"
)

func main() {
	a, err := app.NewApp(os.Getenv("VALUESCOPE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	srv := server.NewServer(a, a.Config, a.Logger)
	common.PrintBanner(os.Stderr, a.Config, fmt.Sprintf("http://%s", srv.Addr()), a.Logger)

	// Start HTTP server
	go func() {
		if err := srv.Start(); err != nil {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Msg("Server ready")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	common.PrintShutdownBanner(os.Stderr, a.Logger)
	a.Logger.Info().Msg("Server stopped")
}
