// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Assist    AssistConfig    `yaml:"assist" mapstructure:"assist"`
	Knowledge KnowledgeConfig `yaml:"knowledge" mapstructure:"knowledge"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the durable cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite database file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BoundingBox is the fixed geographic query scope, in Overpass order
// (south, west, north, east).
type BoundingBox struct {
	South float64 `yaml:"south" mapstructure:"south"`
	West  float64 `yaml:"west" mapstructure:"west"`
	North float64 `yaml:"north" mapstructure:"north"`
	East  float64 `yaml:"east" mapstructure:"east"`
}

// OverpassConfig configures the remote open-geodata source.
type OverpassConfig struct {
	Endpoints   []string    `yaml:"endpoints" mapstructure:"endpoints"`
	TimeoutSecs int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BBox        BoundingBox `yaml:"bbox" mapstructure:"bbox"`
	Amenities   []string    `yaml:"amenities" mapstructure:"amenities"`
	RateLimit   float64     `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
}

// Timeout returns the per-endpoint attempt timeout.
func (c OverpassConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheConfig configures cache freshness policy.
type CacheConfig struct {
	FreshnessWindowHours int `yaml:"freshness_window_hours" mapstructure:"freshness_window_hours"`
}

// FreshnessWindow returns the threshold past which cached data is reported
// as stale. Exceeding it is informational only; stale data is still served.
func (c CacheConfig) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowHours) * time.Hour
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// AssistConfig holds the completion API settings for the ask command.
type AssistConfig struct {
	AnthropicKey string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model        string `yaml:"model" mapstructure:"model"`
	MaxTokens    int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// KnowledgeConfig configures snippet retrieval.
type KnowledgeConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHELTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "shelter.db")
	v.SetDefault("overpass.endpoints", []string{
		"https://overpass-api.de/api/interpreter",
		"https://overpass.kumi.systems/api/interpreter",
		"https://overpass.osm.ch/api/interpreter",
	})
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("overpass.rate_limit", 1.0)
	v.SetDefault("overpass.amenities", []string{"hospital", "pharmacy", "fire_station", "police"})
	v.SetDefault("overpass.bbox.south", 44.70)
	v.SetDefault("overpass.bbox.west", 20.25)
	v.SetDefault("overpass.bbox.north", 44.93)
	v.SetDefault("overpass.bbox.east", 20.65)
	v.SetDefault("cache.freshness_window_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("assist.model", "claude-haiku-4-5-20251001")
	v.SetDefault("assist.max_tokens", 1024)
	v.SetDefault("knowledge.top_k", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
