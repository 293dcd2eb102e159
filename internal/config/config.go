// Package config handles configuration loading for AgriSense.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Catalog  CatalogConfig  `mapstructure:"catalog"  yaml:"catalog"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// PipelineConfig holds the assessment run settings.
type PipelineConfig struct {
	TotalTimeoutMS     int     `mapstructure:"total_timeout_ms"    yaml:"total_timeout_ms"`
	StageTimeoutMS     int     `mapstructure:"stage_timeout_ms"    yaml:"stage_timeout_ms"` // 0 = bounded by the run deadline only
	FallbackConfidence float64 `mapstructure:"fallback_confidence" yaml:"fallback_confidence"`
}

// TotalTimeout returns the run deadline as a duration.
func (p PipelineConfig) TotalTimeout() time.Duration {
	return time.Duration(p.TotalTimeoutMS) * time.Millisecond
}

// StageTimeout returns the per-attempt cap as a duration.
func (p PipelineConfig) StageTimeout() time.Duration {
	return time.Duration(p.StageTimeoutMS) * time.Millisecond
}

// SourcesConfig holds the external collaborator endpoints. An empty
// URL disables that live source; the pipeline then falls back for
// every request.
type SourcesConfig struct {
	Mandi    MandiConfig    `mapstructure:"mandi"    yaml:"mandi"`
	Advisory AdvisoryConfig `mapstructure:"advisory" yaml:"advisory"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
}

// MandiConfig points at the mandi price-board site.
type MandiConfig struct {
	BaseURL     string `mapstructure:"base_url"      yaml:"base_url"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// AdvisoryConfig points at the district weather bulletin RSS feed.
type AdvisoryConfig struct {
	FeedURL     string `mapstructure:"feed_url"      yaml:"feed_url"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// RegistryConfig selects the driver registry backend: "static" (seed
// fleet), "http" (fleet service), or "mongo".
type RegistryConfig struct {
	Backend  string `mapstructure:"backend"   yaml:"backend"`
	BaseURL  string `mapstructure:"base_url"  yaml:"base_url"`  // http backend
	MongoURI string `mapstructure:"mongo_uri" yaml:"mongo_uri"` // mongo backend
	MongoDB  string `mapstructure:"mongo_db"  yaml:"mongo_db"`
}

// CatalogConfig holds the crop profile catalog settings.
type CatalogConfig struct {
	// ProfilesFile optionally merges crop profile overrides over the
	// built-in table.
	ProfilesFile string `mapstructure:"profiles_file" yaml:"profiles_file"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.agrisense/config.yaml (home directory)
//  3. /etc/agrisense/config.yaml (system)
//
// Environment variables override config file values.
// Format: AGRISENSE_<SECTION>_<KEY>, e.g., AGRISENSE_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".agrisense"))
	v.AddConfigPath("/etc/agrisense")

	v.SetEnvPrefix("AGRISENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, cfg.validate()
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("AGRISENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Pipeline.TotalTimeoutMS <= 0 {
		return fmt.Errorf("pipeline.total_timeout_ms must be positive, got %d", c.Pipeline.TotalTimeoutMS)
	}
	if c.Pipeline.FallbackConfidence <= 0 || c.Pipeline.FallbackConfidence > 1 {
		return fmt.Errorf("pipeline.fallback_confidence must be in (0,1], got %v", c.Pipeline.FallbackConfidence)
	}
	switch c.Sources.Registry.Backend {
	case "static", "http", "mongo":
	default:
		return fmt.Errorf("sources.registry.backend must be static, http, or mongo, got %q", c.Sources.Registry.Backend)
	}
	if c.Sources.Registry.Backend == "http" && c.Sources.Registry.BaseURL == "" {
		return fmt.Errorf("sources.registry.base_url is required for the http backend")
	}
	if c.Sources.Registry.Backend == "mongo" && c.Sources.Registry.MongoURI == "" {
		return fmt.Errorf("sources.registry.mongo_uri is required for the mongo backend")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.total_timeout_ms", 800)
	v.SetDefault("pipeline.stage_timeout_ms", 0)
	v.SetDefault("pipeline.fallback_confidence", 0.7)

	// Source defaults: no live endpoints configured out of the box
	v.SetDefault("sources.mandi.base_url", "")
	v.SetDefault("sources.mandi.cache_ttl_sec", 300) // 5 minutes
	v.SetDefault("sources.advisory.feed_url", "")
	v.SetDefault("sources.advisory.cache_ttl_sec", 900) // 15 minutes
	v.SetDefault("sources.registry.backend", "static")
	v.SetDefault("sources.registry.mongo_db", "agrisense")

	// Catalog defaults
	v.SetDefault("catalog.profiles_file", "")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
