package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-tracker/internal/telemetry"
)

func TestSetupTracingNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.SetupTracing(context.Background(), "rpg-tracker-test", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetupTracingWithEndpoint(t *testing.T) {
	// non-routable, nothing is exported before shutdown
	shutdown, err := telemetry.SetupTracing(context.Background(), "rpg-tracker-test", "http://192.0.2.1:4318")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, "debug", "json")

	logger.Debug("turn advanced", "round", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "turn advanced", line["msg"])
	assert.Equal(t, float64(2), line["round"])
}

func TestNewLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, "warn", "text")

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerUnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, "chatty", "text")

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
