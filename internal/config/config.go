// Package config loads application configuration from an optional
// config.yaml plus VISIBILITY_-prefixed environment variables, and
// initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// MonitoringConfig configures scan-health metrics and thresholds.
type MonitoringConfig struct {
	LookbackHours int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	MaxFailRate   float64 `yaml:"max_fail_rate" mapstructure:"max_fail_rate"`
	MaxCostUSD    float64 `yaml:"max_cost_usd" mapstructure:"max_cost_usd"`
	MinFinished   int     `yaml:"min_finished" mapstructure:"min_finished"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// ScanConfig tunes the provider fan-out.
type ScanConfig struct {
	MaxOutputTokens int     `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	CallTimeoutSecs int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	ProviderRPS     float64 `yaml:"provider_rps" mapstructure:"provider_rps"`
	ProviderBurst   int     `yaml:"provider_burst" mapstructure:"provider_burst"`
}

// ScoringConfig points at an optional heuristics tuning file.
type ScoringConfig struct {
	HeuristicsPath string `yaml:"heuristics_path" mapstructure:"heuristics_path"`
}

// PricingConfig holds per-provider pricing rates.
type PricingConfig struct {
	Anthropic  map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     map[string]ModelPricing `yaml:"openai" mapstructure:"openai"`
	Gemini     map[string]ModelPricing `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityPricing       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityPricing holds Perplexity flat per-query pricing.
type PerplexityPricing struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("VISIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys that default to empty still need a SetDefault so
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "visibility.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 0)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("openai.key", "")
	v.SetDefault("gemini.key", "")
	v.SetDefault("perplexity.key", "")
	v.SetDefault("scoring.heuristics_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("scan.max_output_tokens", 500)
	v.SetDefault("scan.call_timeout_secs", 0)
	v.SetDefault("scan.provider_rps", 0)
	v.SetDefault("scan.provider_burst", 1)
	v.SetDefault("monitoring.lookback_hours", 24)
	v.SetDefault("monitoring.max_fail_rate", 0.5)
	v.SetDefault("monitoring.max_cost_usd", 0)
	v.SetDefault("monitoring.min_finished", 5)
	v.SetDefault("pricing.anthropic", map[string]any{
		"claude-haiku-4-5-20251001":  map[string]any{"input": 0.80, "output": 4.00},
		"claude-sonnet-4-5-20250929": map[string]any{"input": 3.00, "output": 15.00},
	})
	v.SetDefault("pricing.openai", map[string]any{
		"gpt-4o-mini": map[string]any{"input": 0.15, "output": 0.60},
		"gpt-4o":      map[string]any{"input": 2.50, "output": 10.00},
	})
	v.SetDefault("pricing.gemini", map[string]any{
		"gemini-2.0-flash": map[string]any{"input": 0.10, "output": 0.40},
		"gemini-2.5-pro":   map[string]any{"input": 1.25, "output": 10.00},
	})
	v.SetDefault("pricing.perplexity.per_query", 0.005)

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
