package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// General application configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// Configuration for the API server
type APIConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Configuration for the payoff engine defaults
type EngineConfig struct {
	GridLowFactor    float64   `mapstructure:"grid_low_factor"`
	GridHighFactor   float64   `mapstructure:"grid_high_factor"`
	GridSamples      int       `mapstructure:"grid_samples"`
	DecayCheckpoints []float64 `mapstructure:"decay_checkpoints"`
	RiskFreeRate     float64   `mapstructure:"risk_free_rate"`
}

// Configuration for publishing evaluation results to Kafka
type StreamConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Configuration for Prometheus metrics
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Loads the configuration from a file and environment variables. An empty
// path falls back to PAYOFF_CONFIG_PATH and then to ./config/config.yaml;
// only the fallback file is allowed to be missing.
func Load(path string) (*Config, error) {
	setDefaults()

	if path == "" {
		path = os.Getenv("PAYOFF_CONFIG_PATH")
	}

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		if err := viper.ReadInConfig(); err != nil {
			// A missing file is fine; defaults and env vars still apply.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	viper.SetEnvPrefix("PAYOFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "payoff-engine")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "10s")
	viper.SetDefault("api.shutdown_timeout", "30s")

	// Engine defaults
	viper.SetDefault("engine.grid_low_factor", 0.6)
	viper.SetDefault("engine.grid_high_factor", 1.4)
	viper.SetDefault("engine.grid_samples", 250)
	viper.SetDefault("engine.decay_checkpoints", []float64{0.1, 0.3, 0.5, 0.8})
	viper.SetDefault("engine.risk_free_rate", 0.02)

	// Stream defaults
	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.brokers", []string{"localhost:9092"})
	viper.SetDefault("stream.topic", "payoff.evaluations")
	viper.SetDefault("stream.write_timeout", "5s")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}
