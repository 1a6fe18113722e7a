package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spyfall/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "roomCode", "ABC123")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "ABC123", line["roomCode"])
}

func TestHubConfig(t *testing.T) {
	cfg := &config.Config{Game: config.GameConfig{
		MinPlayers:     3,
		RoundDuration:  8 * time.Minute,
		HintAfter:      4 * time.Minute,
		TickInterval:   time.Second,
		AutoStartDelay: 2 * time.Second,
		RoomTTL:        2 * time.Hour,
	}}

	hc := hubConfig(cfg)
	assert.Equal(t, 480, hc.Settings.RoundDuration)
	assert.Equal(t, 240, hc.Settings.HintAfter)
	assert.Equal(t, 2*time.Second, hc.Session.AutoStartDelay)
	assert.Equal(t, 2*time.Hour, hc.RoomTTL)
}
