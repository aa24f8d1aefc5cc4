// Package config - previewd configuration management.
//
// Uses Viper to merge, from highest to lowest priority:
// 1. Environment variables (PREVIEWD_ prefix, plus a few short aliases)
// 2. Config file (previewd.yaml, optional)
// 3. Built-in defaults
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ============================================
// Main Configuration
// ============================================

// Config is the root configuration for the preview server.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Static  StaticConfig  `mapstructure:"static"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ============================================
// App Configuration
// ============================================

// AppConfig identifies the tool in the startup banner.
type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
}

// ============================================
// Server Configuration
// ============================================

// ServerConfig - HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ============================================
// Static Configuration
// ============================================

// StaticConfig - what to serve and from where.
//
// Root may be empty, in which case the caller resolves it to the
// directory containing the executable before building the handler.
type StaticConfig struct {
	Root  string `mapstructure:"root"`
	Index string `mapstructure:"index" validate:"required"`
}

// ============================================
// CORS Configuration
// ============================================

// CORSConfig - headers attached to every response.
type CORSConfig struct {
	AllowOrigin  string   `mapstructure:"allow_origin" validate:"required"`
	AllowMethods []string `mapstructure:"allow_methods" validate:"min=1"`
	AllowHeaders []string `mapstructure:"allow_headers" validate:"min=1"`
	CacheControl string   `mapstructure:"cache_control" validate:"required"`
}

// ============================================
// Log Configuration
// ============================================

// LogConfig - request log settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ============================================
// Metrics Configuration
// ============================================

// MetricsConfig - Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ============================================
// Configuration Loading
// ============================================

// Load reads configuration from an optional file plus environment variables.
//
// configPath is the directory to search (e.g. "."), configName the file name
// without extension (e.g. "previewd"). A missing file is not an error; the
// defaults and environment take over.
func Load(configPath, configName string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	v.SetEnvPrefix("PREVIEWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv builds configuration from defaults and environment only.
func LoadFromEnv() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PREVIEWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the built-in defaults.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "previewd")
	v.SetDefault("app.version", "dev")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Static defaults. Root intentionally empty: resolved to the
	// executable's directory at startup when not configured.
	v.SetDefault("static.root", "")
	v.SetDefault("static.index", "index.html")

	// CORS defaults for local SPA development
	v.SetDefault("cors.allow_origin", "*")
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.cache_control", "no-store, no-cache, must-revalidate")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// bindEnvVars binds the short env aliases used in scripts and CI.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PREVIEWD_SERVER_PORT", "PORT")
	_ = v.BindEnv("static.root", "PREVIEWD_STATIC_ROOT", "PREVIEWD_ROOT")
	_ = v.BindEnv("static.index", "PREVIEWD_STATIC_INDEX")
	_ = v.BindEnv("log.level", "PREVIEWD_LOG_LEVEL")
}

// ============================================
// Configuration Validation
// ============================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration before any socket is opened.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	return nil
}

// ============================================
// Development Helpers
// ============================================

// Development returns a ready-to-use configuration for tests and local runs.
func Development() *Config {
	return &Config{
		App: AppConfig{
			Name:    "previewd",
			Version: "dev",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Static: StaticConfig{
			Root:  ".",
			Index: "index.html",
		},
		CORS: CORSConfig{
			AllowOrigin:  "*",
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
			CacheControl: "no-store, no-cache, must-revalidate",
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}
