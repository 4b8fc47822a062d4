// Package config loads the CLI configuration from a YAML file with
// environment variable overrides and optional hot reload.
package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the full CLI configuration.
type Config struct {
	// DefaultEnvironment names the profile used when --env is not given.
	DefaultEnvironment string `mapstructure:"default_environment"`

	LogLevel  string `mapstructure:"log_level"`
	UserAgent string `mapstructure:"user_agent"`

	Archive      ArchiveConfig       `mapstructure:"archive"`
	Environments []EnvironmentConfig `mapstructure:"environments"`
}

// ArchiveConfig configures the local replay archive and its HTTP API.
type ArchiveConfig struct {
	DBPath string `mapstructure:"db_path"`
	Port   int    `mapstructure:"port"`
	Token  string `mapstructure:"token"`
}

// EnvironmentConfig is one named RGS environment (dev, staging, prod).
// SessionID is usually left empty here and stored in the credential store;
// the field exists for throwaway dev setups.
type EnvironmentConfig struct {
	Name       string `mapstructure:"name"`
	ServerHost string `mapstructure:"server_host"`
	SessionID  string `mapstructure:"session_id"`
	Language   string `mapstructure:"language"`
	Currency   string `mapstructure:"currency"`
}

// Loader owns a loaded configuration and its reload machinery.
type Loader struct {
	v   *viper.Viper
	log zerolog.Logger

	mu  sync.RWMutex
	cfg *Config
}

// Load reads and validates the configuration at path. Environment variables
// with the RGS_ prefix override file values; RGS_SESSION_ID and RGS_URL map
// onto the default environment's session and host.
func Load(path string, log zerolog.Logger) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvPrefix("RGS")
	v.BindEnv("default_environment", "RGS_ENVIRONMENT")
	v.BindEnv("log_level", "RGS_LOG_LEVEL")
	v.BindEnv("archive.port", "RGS_ARCHIVE_PORT")
	v.BindEnv("archive.token", "RGS_ARCHIVE_TOKEN")

	v.SetDefault("default_environment", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("archive.db_path", "replays.db")
	v.SetDefault("archive.port", 8090)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Loader{v: v, log: log, cfg: &cfg}, nil
}

// Config returns the current configuration. Safe to call concurrently with
// a reload.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch reloads the configuration when the file changes. A config that fails
// to parse or validate is logged and dropped; the previous one stays active.
func (l *Loader) Watch() {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.log.Info().Str("file", e.Name).Msg("config file changed, reloading")

		var newCfg Config
		if err := l.v.Unmarshal(&newCfg); err != nil {
			l.log.Error().Err(err).Msg("config reload failed")
			return
		}
		if err := validate(&newCfg); err != nil {
			l.log.Error().Err(err).Msg("new config invalid, keeping previous")
			return
		}

		l.mu.Lock()
		l.cfg = &newCfg
		l.mu.Unlock()
		l.log.Info().Msg("config reloaded")
	})
	l.v.WatchConfig()
}

// Environment returns the named environment profile, or the default one when
// name is empty.
func (c *Config) Environment(name string) (*EnvironmentConfig, error) {
	if name == "" {
		name = c.DefaultEnvironment
	}
	for i := range c.Environments {
		if c.Environments[i].Name == name {
			return &c.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("config: environment %q not defined", name)
}

func validate(cfg *Config) error {
	if len(cfg.Environments) == 0 {
		return fmt.Errorf("at least one environment must be configured")
	}
	seen := map[string]bool{}
	for i, env := range cfg.Environments {
		if env.Name == "" {
			return fmt.Errorf("environments[%d]: name is required", i)
		}
		if seen[env.Name] {
			return fmt.Errorf("environments[%d]: duplicate name %q", i, env.Name)
		}
		seen[env.Name] = true
		if env.ServerHost == "" {
			return fmt.Errorf("environments[%d] (%s): server_host is required", i, env.Name)
		}
	}
	if !seen[cfg.DefaultEnvironment] {
		return fmt.Errorf("default_environment %q is not defined", cfg.DefaultEnvironment)
	}
	if cfg.Archive.Port < 0 || cfg.Archive.Port > 65535 {
		return fmt.Errorf("archive.port %d out of range", cfg.Archive.Port)
	}
	return nil
}
