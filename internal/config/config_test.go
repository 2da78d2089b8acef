package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nview_cache_size: 8\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.ViewCacheSize)
	assert.Equal(t, DefaultMaxAnnotations, cfg.MaxAnnotations)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epsilon: 0.5\n"), 0o600))
	t.Setenv("ANNOTATOR_MCP_EPSILON", "0.01")
	t.Setenv("ANNOTATOR_MCP_MAX_ANNOTATIONS", "10")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, cfg.Epsilon, 1e-12)
	assert.Equal(t, 10, cfg.MaxAnnotations)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }},
		{"zero view cache", func(c *Config) { c.ViewCacheSize = 0 }},
		{"zero max annotations", func(c *Config) { c.MaxAnnotations = 0 }},
		{"zero history", func(c *Config) { c.HistoryLimit = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
