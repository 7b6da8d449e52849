package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds Otter's runtime options. User settings such as the Home
// Assistant URL live in the settings store, not here.
type Config struct {
	SettingsBackend string        `mapstructure:"settings_backend"`
	SettingsPath    string        `mapstructure:"settings_path"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	Theme           string        `mapstructure:"theme"`
	APIAddr         string        `mapstructure:"api_addr"`
	NATSURL         string        `mapstructure:"nats_url"`
	NATSSubject     string        `mapstructure:"nats_subject"`
	NotifyDedupe    time.Duration `mapstructure:"notify_dedupe"`
}

const (
	defaultConfigPath = "~/.config/otter/config.toml"
	defaultLogFile    = "~/.local/state/otter/otter.log"
	defaultAPIAddr    = "127.0.0.1:8765"
	defaultBackend    = "toml"
	defaultLogLevel   = "info"
	defaultSubject    = "otter.notifications"
	defaultDedupe     = 10 * time.Minute

	envPrefix = "OTTER"
)

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields defaults. OTTER_* environment variables
// override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("settings_backend", defaultBackend)
	v.SetDefault("settings_path", "")
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_file", defaultLogFile)
	v.SetDefault("theme", "")
	v.SetDefault("api_addr", defaultAPIAddr)
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", defaultSubject)
	v.SetDefault("notify_dedupe", defaultDedupe)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(resolved); err == nil {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	cfg.SettingsBackend = strings.ToLower(strings.TrimSpace(cfg.SettingsBackend))
	if cfg.SettingsBackend == "" {
		cfg.SettingsBackend = defaultBackend
	}
	if p := strings.TrimSpace(cfg.SettingsPath); p != "" {
		cfg.SettingsPath = mustExpand(p)
	} else {
		cfg.SettingsPath = ""
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	cfg.Theme = strings.TrimSpace(cfg.Theme)
	cfg.APIAddr = strings.TrimSpace(cfg.APIAddr)
	if cfg.APIAddr == "" {
		cfg.APIAddr = defaultAPIAddr
	}
	cfg.NATSURL = strings.TrimSpace(cfg.NATSURL)
	cfg.NATSSubject = strings.TrimSpace(cfg.NATSSubject)
	if cfg.NATSSubject == "" {
		cfg.NATSSubject = defaultSubject
	}
	if cfg.NotifyDedupe < 0 {
		cfg.NotifyDedupe = 0
	}
	return cfg
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
