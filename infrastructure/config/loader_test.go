package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string        `env:"SAMPLE_NAME"    yaml:"name"`
	Port    int           `env:"SAMPLE_PORT"    yaml:"port"`
	Wait    time.Duration `env:"SAMPLE_WAIT"    yaml:"wait"`
	Ratio   float64       `env:"SAMPLE_RATIO"   yaml:"ratio"`
	Enabled bool          `env:"SAMPLE_ENABLED" yaml:"enabled"`
	Tags    []string      `env:"SAMPLE_TAGS"    yaml:"tags"`
	Nested  struct {
		Key string `env:"SAMPLE_NESTED_KEY" yaml:"key"`
	} `yaml:"nested"`
}

func (s *sample) Validate() error {
	return config.ValidatePort("port", s.Port)
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ParsesYAMLAndAppliesEnv(t *testing.T) {
	path := writeYAML(t, "name: file\nport: 8080\nwait: 30s\nratio: 0.05\nnested:\n  key: a\n")

	t.Setenv("SAMPLE_NAME", "env")
	t.Setenv("SAMPLE_TAGS", "x, y")
	t.Setenv("SAMPLE_NESTED_KEY", "b")
	t.Setenv("SAMPLE_ENABLED", "yes")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, "env", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Wait)
	assert.InDelta(t, 0.05, cfg.Ratio, 1e-9)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"x", "y"}, cfg.Tags)
	assert.Equal(t, "b", cfg.Nested.Key)
}

func TestLoadWithDefaults_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SAMPLE_WAIT", "5s")

	cfg, err := config.LoadWithDefaults[sample](filepath.Join(t.TempDir(), "absent.yml"), func(s *sample) {
		s.Port = 9090
		s.Wait = time.Second
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Wait, "env wins over defaults")
}

func TestLoadWithDefaults_RunsValidation(t *testing.T) {
	path := writeYAML(t, "port: 70000\n")

	_, err := config.LoadWithDefaults[sample](path, nil)

	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "port", verr.Field)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeYAML(t, "port: [unterminated\n")

	_, err := config.Load[sample](path)
	assert.Error(t, err)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/extractor.yml")
	assert.Equal(t, "/etc/extractor.yml", config.GetConfigPath("config.yml"))
}
