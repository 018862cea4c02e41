// Package config loads configuration structs from the environment and,
// optionally, a YAML file.
//
// Fields are described with caarlos0/env tags; a .env file in the working
// directory is loaded once before the first parse:
//
//	type Settings struct {
//		AppVersion string `env:"APP_VERSION" envDefault:"dev" yaml:"app_version"`
//		CheckIP    bool   `env:"CHECK_IP" envDefault:"true" yaml:"check_ip"`
//	}
//
//	var s Settings
//	if err := config.LoadFile("servant.yaml", &s); err != nil {
//		return err
//	}
//
// Precedence is tag defaults, then the YAML file, then variables actually set
// in the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrParse    = errors.New("config: failed to parse environment")
	ErrReadFile = errors.New("config: failed to read config file")
)

// noDefaults names a tag no field carries, which makes env skip defaults.
const noDefaults = "config-no-default"

var dotenvOnce sync.Once

func loadDotenv() {
	dotenvOnce.Do(func() {
		// A missing .env is normal outside development.
		_ = godotenv.Load()
	})
}

// Load fills cfg from environment variables.
func Load(cfg any) error {
	loadDotenv()
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParse, err)
	}
	return nil
}

// MustLoad is Load that panics on failure, for use in main.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFile fills cfg from defaults, the YAML file at path and the
// environment. An empty path or a missing file behaves like Load.
func LoadFile(path string, cfg any) error {
	if err := Load(cfg); err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrReadFile, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Join(ErrReadFile, fmt.Errorf("%s: %w", path, err))
	}

	// Re-apply explicitly set variables over the file.
	if err := env.ParseWithOptions(cfg, env.Options{DefaultValueTagName: noDefaults}); err != nil {
		return errors.Join(ErrParse, err)
	}
	return nil
}
