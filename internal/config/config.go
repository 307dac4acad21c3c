// Package config resolves dockers settings from defaults, a config file,
// DOCKERS_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rickgorman/dockers/internal/logging"
)

const (
	// AppName is used for the config directory and the environment prefix.
	AppName = "dockers"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
)

// Config holds every dockers setting.
type Config struct {
	// Host is the engine endpoint, e.g. unix:///var/run/docker.sock. Empty means DOCKER_HOST or the platform default.
	Host    string `mapstructure:"host"`
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`
	Stats   Stats  `mapstructure:"stats"`
}

// Stats configures the stats dashboard.
type Stats struct {
	DiscoveryInterval time.Duration `mapstructure:"discovery_interval"`
	RenderInterval    time.Duration `mapstructure:"render_interval"`
	KeepScreen        bool          `mapstructure:"keep_screen"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Stats: Stats{
			DiscoveryInterval: time.Second,
			RenderInterval:    100 * time.Millisecond,
		},
	}
}

// LogLevel returns the log level implied by the settings.
func (c Config) LogLevel() string {
	if c.Debug {
		return logging.LevelDebug
	}
	return logging.LevelWarn
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"host":        "host",
	"debug":       "debug",
	"log-file":    "log_file",
	"keep-screen": "stats.keep_screen",
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// File is an explicit config file. It must exist.
	File string
	// Dir overrides the directory searched for config.yaml. Empty means Dir().
	Dir string
	// Flags are bound over every other source when set on the command line.
	Flags *pflag.FlagSet
}

// Dir returns $XDG_CONFIG_HOME/dockers, defaulting to ~/.config/dockers.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// Load resolves the settings. It returns the config file that was read, or
// an empty string when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("stats.discovery_interval", defaults.Stats.DiscoveryInterval)
	v.SetDefault("stats.render_interval", defaults.Stats.RenderInterval)
	v.SetDefault("stats.keep_screen", defaults.Stats.KeepScreen)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	used, err := readConfigFile(v, opts)
	if err != nil {
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
		return opts.File, nil
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return "", err
		}
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

func (c Config) validate() error {
	if c.Stats.DiscoveryInterval <= 0 {
		return fmt.Errorf("stats.discovery_interval must be positive, got %s", c.Stats.DiscoveryInterval)
	}
	if c.Stats.RenderInterval <= 0 {
		return fmt.Errorf("stats.render_interval must be positive, got %s", c.Stats.RenderInterval)
	}
	return nil
}
