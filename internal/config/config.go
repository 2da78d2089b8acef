package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/scene"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ANNOTATOR_MCP"

// Setting keys.
const (
	KeyLogLevel       = "log_level"
	KeyEpsilon        = "epsilon"
	KeyViewCacheSize  = "view_cache_size"
	KeyMaxAnnotations = "max_annotations"
	KeyHistoryLimit   = "history_limit"
)

// DefaultMaxAnnotations caps the annotations a single tool call may submit.
const DefaultMaxAnnotations = 5000

// ErrInvalidConfig is wrapped by every validation failure of Config.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the server settings.
type Config struct {
	LogLevel       string  `mapstructure:"log_level"`
	Epsilon        float64 `mapstructure:"epsilon"`
	ViewCacheSize  int     `mapstructure:"view_cache_size"`
	MaxAnnotations int     `mapstructure:"max_annotations"`
	HistoryLimit   int     `mapstructure:"history_limit"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:       "info",
		Epsilon:        geometry.DefaultEpsilon,
		ViewCacheSize:  taskchain.DefaultViewCacheSize,
		MaxAnnotations: DefaultMaxAnnotations,
		HistoryLimit:   scene.DefaultHistoryLimit,
	}
}

// SetDefaults registers the defaults of every key on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyEpsilon, d.Epsilon)
	v.SetDefault(KeyViewCacheSize, d.ViewCacheSize)
	v.SetDefault(KeyMaxAnnotations, d.MaxAnnotations)
	v.SetDefault(KeyHistoryLimit, d.HistoryLimit)
}

// Load reads settings into v from the config file at path, if any, and from
// the environment, then decodes and validates them. Flags bound to v before
// the call take precedence over both.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must not be negative, got %g", ErrInvalidConfig, c.Epsilon)
	}
	if c.ViewCacheSize < 1 {
		return fmt.Errorf("%w: view_cache_size must be at least 1, got %d", ErrInvalidConfig, c.ViewCacheSize)
	}
	if c.MaxAnnotations < 1 {
		return fmt.Errorf("%w: max_annotations must be at least 1, got %d", ErrInvalidConfig, c.MaxAnnotations)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("%w: history_limit must be at least 1, got %d", ErrInvalidConfig, c.HistoryLimit)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}
