// Package config provides configuration management for the extraction
// engine and its CLI driver.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SearchConfig holds search/MCTS tuning parameters, corresponding to
// MctsConfig in the original engine plus the knobs this port adds.
type SearchConfig struct {
	// PlayoutsPerRound is how many selection/expansion/simulation/
	// backpropagation cycles run before committing the most-visited child
	// of the root and advancing to the next class.
	PlayoutsPerRound int `mapstructure:"playouts_per_round"`
	// TermsToSample is how many independent random rollouts are averaged
	// into a single utility estimate at each newly-expanded node.
	TermsToSample int `mapstructure:"terms_to_sample"`
	// ExplorationConstant is the c term in the UCT formula. The original
	// engine hardcodes sqrt(2); this port exposes it.
	ExplorationConstant float64 `mapstructure:"exploration_constant"`
	// MaxRolloutResamples caps how many times a single rollout sample is
	// retried (from the snapshot it started at) after hitting an empty
	// class or a cycle, before contributing the zero Utility.
	MaxRolloutResamples int `mapstructure:"max_rollout_resamples"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// TelemetryConfig holds telemetry settings read from the config file.
// pkg/telemetry loads its own settings only from environment variables (see
// pkg/telemetry.LoadFromEnv), and the CLI does not pass these fields to it:
// setting Enabled or ServiceName here does not turn tracing on or rename the
// service; OTEL_ENABLED and OTEL_SERVICE_NAME do.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mctsextract")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("search.playouts_per_round", 32)
	v.SetDefault("search.terms_to_sample", 1)
	v.SetDefault("search.exploration_constant", 1.4142135623730951) // sqrt(2)
	v.SetDefault("search.max_rollout_resamples", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "mcts-extract")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Search.PlayoutsPerRound < 1 {
		return fmt.Errorf("search.playouts_per_round must be at least 1")
	}
	if c.Search.TermsToSample < 1 {
		return fmt.Errorf("search.terms_to_sample must be at least 1")
	}
	if c.Search.ExplorationConstant < 0 {
		return fmt.Errorf("search.exploration_constant must not be negative")
	}
	if c.Search.MaxRolloutResamples < 1 {
		return fmt.Errorf("search.max_rollout_resamples must be at least 1")
	}
	return nil
}
