package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entitymodel.yml"), []byte(content), 0o644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, relational.NamingEntity, cfg.NamingStrategy())
	assert.Empty(t, cfg.Naming.DefaultSchema)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, FormatText, cfg.OutputFormat())
	assert.True(t, cfg.Output.Color)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := writeConfig(t, `
naming:
  strategy: snake
  default_schema: blog
log:
  level: debug
output:
  format: YAML
  color: false
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, relational.NamingSnake, cfg.NamingStrategy())
	assert.Equal(t, "blog", cfg.Naming.DefaultSchema)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FormatYAML, cfg.OutputFormat())
	assert.False(t, cfg.Output.Color)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENTITYMODEL_OUTPUT_FORMAT", "json")
	t.Setenv("ENTITYMODEL_NAMING_STRATEGY", "snake")

	cfg, err := LoadFrom(writeConfig(t, "output:\n  format: yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.OutputFormat())
	assert.Equal(t, relational.NamingSnake, cfg.NamingStrategy())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown strategy", "naming:\n  strategy: camel\n", "naming.strategy: unknown naming strategy"},
		{"unknown format", "output:\n  format: xml\n", "output.format must be one of text, yaml, json, got: xml"},
		{"unknown level", "log:\n  level: loud\n", "log.level"},
		{"malformed file", "naming: [\n", "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "warn"}}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	cfg.Log.Level = "verbose"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
