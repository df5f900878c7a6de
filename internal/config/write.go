package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout. Durations are kept as strings so both
// encoders write "30s" rather than nanoseconds.
type fileConfig struct {
	ServerURL string        `yaml:"server_url" toml:"server_url"`
	APIPath   string        `yaml:"api_path" toml:"api_path"`
	Timeout   string        `yaml:"timeout" toml:"timeout"`
	LogFile   string        `yaml:"log_file,omitempty" toml:"log_file,omitempty"`
	NoColor   bool          `yaml:"no_color" toml:"no_color"`
	Web       fileWebConfig `yaml:"web" toml:"web"`
}

type fileWebConfig struct {
	Port int `yaml:"port" toml:"port"`
}

func toFile(c *Config) fileConfig {
	return fileConfig{
		ServerURL: c.ServerURL,
		APIPath:   c.APIPath,
		Timeout:   c.Timeout.String(),
		LogFile:   c.LogFile,
		NoColor:   c.NoColor,
		Web:       fileWebConfig{Port: c.Web.Port},
	}
}

// Encode renders c in the given format ("yaml" or "toml").
func Encode(c *Config, format string) ([]byte, error) {
	fc := toFile(c)

	switch strings.ToLower(format) {
	case "yaml", "yml":
		data, err := yaml.Marshal(fc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return data, nil

	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
	}
}

// WriteFile writes c to path, choosing the format from the extension. An
// existing file is only replaced when overwrite is set.
func WriteFile(path string, c *Config, overwrite bool) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Encode(c, format)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
