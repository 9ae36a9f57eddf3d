package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"probecov/internal/paths"
)

// Config represents the complete probecov configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Aggregation AggregationConfig `json:"aggregation" mapstructure:"aggregation"`
	Risk        RiskConfig        `json:"risk" mapstructure:"risk"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
	Baseline    BaselineConfig    `json:"baseline" mapstructure:"baseline"`
}

// AggregationConfig controls bundle aggregation
type AggregationConfig struct {
	Lenient     bool `json:"lenient" mapstructure:"lenient"`
	Parallelism int  `json:"parallelism" mapstructure:"parallelism"`
}

// RiskConfig contains risk scoring weights and level thresholds
type RiskConfig struct {
	HighThreshold   float64     `json:"highThreshold" mapstructure:"highThreshold"`
	MediumThreshold float64     `json:"mediumThreshold" mapstructure:"mediumThreshold"`
	Weights         RiskWeights `json:"weights" mapstructure:"weights"`
}

// RiskWeights contains the weight of each risk factor
type RiskWeights struct {
	CoverageGap float64 `json:"coverageGap" mapstructure:"coverageGap"`
	ChangeKind  float64 `json:"changeKind" mapstructure:"changeKind"`
	MethodSize  float64 `json:"methodSize" mapstructure:"methodSize"`
}

// StorageConfig contains snapshot store configuration
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// BaselineConfig locates the baseline declaration file
type BaselineConfig struct {
	File string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Aggregation: AggregationConfig{
			Lenient:     false,
			Parallelism: 0,
		},
		Risk: RiskConfig{
			HighThreshold:   0.7,
			MediumThreshold: 0.4,
			Weights: RiskWeights{
				CoverageGap: 0.5,
				ChangeKind:  0.3,
				MethodSize:  0.2,
			},
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "probecov.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
		Baseline: BaselineConfig{
			File: "BASELINE.toml",
		},
	}
}

// LoadConfig loads configuration from .probecov/config.json.
// Environment variables prefixed PROBECOV_ override file values,
// e.g. PROBECOV_AGGREGATION_LENIENT=true.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Every key needs a default for environment overrides to apply
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.StateDir(root))

	v.SetEnvPrefix("PROBECOV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("aggregation.lenient", d.Aggregation.Lenient)
	v.SetDefault("aggregation.parallelism", d.Aggregation.Parallelism)
	v.SetDefault("risk.highThreshold", d.Risk.HighThreshold)
	v.SetDefault("risk.mediumThreshold", d.Risk.MediumThreshold)
	v.SetDefault("risk.weights.coverageGap", d.Risk.Weights.CoverageGap)
	v.SetDefault("risk.weights.changeKind", d.Risk.Weights.ChangeKind)
	v.SetDefault("risk.weights.methodSize", d.Risk.Weights.MethodSize)
	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("baseline.file", d.Baseline.File)
}

// Save writes the configuration to .probecov/config.json
func (c *Config) Save(root string) error {
	if _, err := paths.EnsureStateDir(root); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.ConfigPath(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Aggregation.Parallelism < 0 {
		return &ConfigError{Field: "aggregation.parallelism", Message: "must not be negative"}
	}

	w := c.Risk.Weights
	for field, value := range map[string]float64{
		"risk.weights.coverageGap": w.CoverageGap,
		"risk.weights.changeKind":  w.ChangeKind,
		"risk.weights.methodSize":  w.MethodSize,
	} {
		if value < 0 || value > 1 {
			return &ConfigError{Field: field, Message: "must be between 0 and 1"}
		}
	}
	if sum := w.CoverageGap + w.ChangeKind + w.MethodSize; sum > 1.0001 {
		return &ConfigError{Field: "risk.weights", Message: fmt.Sprintf("weights sum to %.2f, must not exceed 1", sum)}
	}
	if c.Risk.MediumThreshold <= 0 || c.Risk.MediumThreshold >= c.Risk.HighThreshold || c.Risk.HighThreshold > 1 {
		return &ConfigError{Field: "risk", Message: "thresholds must satisfy 0 < medium < high <= 1"}
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
