// Package config loads mhs settings from defaults, an optional config file,
// MHS_* environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "MHS"

	DefaultServerURL = "http://127.0.0.1:8000"
	DefaultAPIPath   = "/api/mahasiswa"
	DefaultWebPort   = 8080

	// configName is the base name searched for when no --config is given.
	configName = "config"
)

// Config is the resolved configuration.
type Config struct {
	ServerURL string        `mapstructure:"server_url"`
	APIPath   string        `mapstructure:"api_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogFile   string        `mapstructure:"log_file"`
	NoColor   bool          `mapstructure:"no_color"`
	Web       WebConfig     `mapstructure:"web"`
}

// WebConfig configures the browser front end.
type WebConfig struct {
	Port int `mapstructure:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerURL: DefaultServerURL,
		APIPath:   DefaultAPIPath,
		Web:       WebConfig{Port: DefaultWebPort},
	}
}

// Loader resolves a Config. Flags bound with BindFlag override every other
// source when they were set on the command line.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment binding in place.
func NewLoader() *Loader {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("server_url", def.ServerURL)
	v.SetDefault("api_path", def.APIPath)
	v.SetDefault("timeout", "0s")
	v.SetDefault("log_file", "")
	v.SetDefault("no_color", false)
	v.SetDefault("web.port", def.Web.Port)

	return &Loader{v: v}
}

// BindFlag makes flag override key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for key %s", key)
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
	}
	return nil
}

// Load reads path, or searches the default locations when path is empty,
// and decodes the result. A missing file is only an error when path was
// given explicitly.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(configName)
		if dir, err := DefaultDir(); err == nil {
			l.v.AddConfigPath(dir)
		}
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	decodeHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)

	config := &Config{}
	if err := l.v.Unmarshal(config, viper.DecodeHook(decodeHooks)); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// File returns the config file that was read, or "" when none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %v)", c.Timeout)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 0 and 65535 (got %d)", c.Web.Port)
	}
	return nil
}

// DefaultDir is $XDG_CONFIG_HOME/mhs (or the platform equivalent).
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mhs"), nil
}
