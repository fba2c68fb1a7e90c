package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 600, cfg.Extract.WindowBytes)
	assert.Equal(t, 0.8, cfg.Extract.FuzzyThreshold)
	assert.Empty(t, cfg.Extract.VocabularyPath)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOLDINGS_LOG_LEVEL", "debug")
	t.Setenv("HOLDINGS_EXTRACT_WINDOW_BYTES", "400")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 400, cfg.Extract.WindowBytes)
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
