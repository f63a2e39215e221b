// Package config loads the entitymodel CLI configuration
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config represents the entitymodel configuration
type Config struct {
	Naming NamingConfig `mapstructure:"naming"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// NamingConfig controls default table and column names
type NamingConfig struct {
	Strategy      string `mapstructure:"strategy"`
	DefaultSchema string `mapstructure:"default_schema"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig controls how commands render their results
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Load loads the configuration from entitymodel.yml or entitymodel.yaml in
// the working directory. ENTITYMODEL_ environment variables override it.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from dir
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("naming.strategy", string(relational.NamingEntity))
	v.SetDefault("naming.default_schema", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.color", true)

	v.SetConfigName("entitymodel")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("ENTITYMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	if _, err := relational.ParseNamingStrategy(c.Naming.Strategy); err != nil {
		return fmt.Errorf("naming.strategy: %w", err)
	}
	switch strings.ToLower(c.Output.Format) {
	case FormatText, FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("output.format must be one of text, yaml, json, got: %s", c.Output.Format)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NamingStrategy returns the validated naming strategy
func (c *Config) NamingStrategy() relational.NamingStrategy {
	s, _ := relational.ParseNamingStrategy(c.Naming.Strategy)
	return s
}

// OutputFormat returns the output format in lower case
func (c *Config) OutputFormat() string {
	return strings.ToLower(c.Output.Format)
}

// NewLogger builds a console logger writing to stderr at the configured level
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	if !c.Output.Color {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}
