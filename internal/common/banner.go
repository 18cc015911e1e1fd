package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner.
// mode is a short description such as "cli" or the service URL.
func PrintBanner(w io.Writer, config *Config, mode string, logger *Logger) {
	info := CurrentBuild()

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 60
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  VALUESCOPE%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s  WACC / ROIC & Financial Ratio Analysis%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "\n%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", info.Version},
		{"Build", info.Build},
		{"Commit", info.Commit},
		{"Environment", config.Environment},
		{"Mode", mode},
		{"Source", config.Source.Kind},
		{"Pacing", pacingSummary(config.Pacing)},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", info.Version).
		Str("build", info.Build).
		Str("commit", info.Commit).
		Str("environment", config.Environment).
		Str("mode", mode).
		Str("source", config.Source.Kind).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n", hr)
	fmt.Fprintf(w, "%s  VALUESCOPE SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}

func pacingSummary(p PacingConfig) string {
	switch p.Mode {
	case "fixed":
		return "fixed " + p.Delay
	case "token_bucket":
		return fmt.Sprintf("token bucket %.2f/s burst %d", p.Rate, p.Burst)
	default:
		return p.Mode
	}
}
