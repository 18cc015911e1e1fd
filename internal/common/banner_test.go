package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner_WritesBuildInfo(t *testing.T) {
	var out, logs bytes.Buffer
	logger := NewLoggerFromConfig(LoggingConfig{Level: "info", Format: "json"}, &logs)
	info := CurrentBuild()

	PrintBanner(&out, NewDefaultConfig(), "cli", logger)

	assert.Contains(t, out.String(), "VALUESCOPE")
	assert.Contains(t, out.String(), info.Version)
	assert.Contains(t, out.String(), "fixed 1s")
	assert.Contains(t, logs.String(), `"version":"`+info.Version+`"`)
	assert.Contains(t, logs.String(), `"commit":"`+info.Commit+`"`)
	assert.Contains(t, logs.String(), `"mode":"cli"`)
}

func TestPrintShutdownBanner(t *testing.T) {
	var out bytes.Buffer
	PrintShutdownBanner(&out, NewSilentLogger())
	assert.Contains(t, out.String(), "VALUESCOPE SHUTTING DOWN")
}
