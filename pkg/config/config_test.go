package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/pkg/config"
)

type settings struct {
	Version string        `env:"TEST_APP_VERSION" envDefault:"dev" yaml:"version"`
	CheckIP bool          `env:"TEST_CHECK_IP" envDefault:"true" yaml:"check_ip"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"5s" yaml:"timeout"`
	Name    string        `env:"TEST_NAME" yaml:"name"`
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Tests below use t.Setenv and therefore cannot run in parallel.

func TestLoad_Defaults(t *testing.T) {
	var s settings
	require.NoError(t, config.Load(&s))
	assert.Equal(t, "dev", s.Version)
	assert.True(t, s.CheckIP)
	assert.Equal(t, 5*time.Second, s.Timeout)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TEST_APP_VERSION", "1.4.0")
	t.Setenv("TEST_CHECK_IP", "false")

	var s settings
	require.NoError(t, config.Load(&s))
	assert.Equal(t, "1.4.0", s.Version)
	assert.False(t, s.CheckIP)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "soon")

	var s settings
	require.ErrorIs(t, config.Load(&s), config.ErrParse)
}

func TestLoadFile(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeYAML(t, "version: \"2.0\"\ncheck_ip: false\nname: demo\n")

		var s settings
		require.NoError(t, config.LoadFile(path, &s))
		assert.Equal(t, "2.0", s.Version)
		assert.False(t, s.CheckIP)
		assert.Equal(t, "demo", s.Name)
		assert.Equal(t, 5*time.Second, s.Timeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TEST_APP_VERSION", "3.1")
		path := writeYAML(t, "version: \"2.0\"\n")

		var s settings
		require.NoError(t, config.LoadFile(path, &s))
		assert.Equal(t, "3.1", s.Version)
	})

	t.Run("missing file falls back to environment", func(t *testing.T) {
		var s settings
		require.NoError(t, config.LoadFile(filepath.Join(t.TempDir(), "none.yaml"), &s))
		assert.Equal(t, "dev", s.Version)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeYAML(t, "version: [unterminated\n")

		var s settings
		require.ErrorIs(t, config.LoadFile(path, &s), config.ErrReadFile)
	})
}
