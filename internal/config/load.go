package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load builds the configuration from multiple sources in priority order:
//  1. Defaults
//  2. User config file (~/.plannersync/plannersync.toml)
//  3. Project config file (plannersync.toml or .plannersync.toml in cwd)
//  4. Environment variables (PLANNERSYNC_*)
//
// CLI flags override individual fields after Load, in the commands.
func Load() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load pinned to one explicit config file, for --config.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	loadFromEnv(cfg)
	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("PLANNERSYNC_VAULT"); v != "" {
		cfg.VaultPath = v
	}
	if v := os.Getenv("PLANNERSYNC_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("PLANNERSYNC_DATA_FORMAT"); v != "" {
		cfg.DataFormat = v
	}
	if v := os.Getenv("PLANNERSYNC_DONE_STATUS"); v != "" {
		cfg.DoneStatus = v
	}
	if v := os.Getenv("PLANNERSYNC_DEFAULT_STATUS"); v != "" {
		cfg.DefaultStatus = v
	}
	if v := os.Getenv("PLANNERSYNC_DEFAULT_PRIORITY"); v != "" {
		cfg.DefaultPriority = v
	}
	if v := os.Getenv("PLANNERSYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PLANNERSYNC_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PLANNERSYNC_SUPPRESSION_WINDOW_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.SuppressionWindowMS = i
		}
	}
	if v := os.Getenv("PLANNERSYNC_CREATE_DELAY_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.CreateDelayMS = i
		}
	}
	if v := os.Getenv("PLANNERSYNC_SCAN_COOLDOWN_MINUTES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.ScanCooldownMinutes = i
		}
	}
	if v := os.Getenv("PLANNERSYNC_FILE_PAUSE_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.FilePauseMS = i
		}
	}
	if v := os.Getenv("PLANNERSYNC_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = boolFromString(v)
	}
	if v := os.Getenv("PLANNERSYNC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PLANNERSYNC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PLANNERSYNC_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = i
		}
	}
	if v := os.Getenv("PLANNERSYNC_REDIS_NAMESPACE"); v != "" {
		cfg.Redis.Namespace = v
	}
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// finalize expands paths and validates the assembled configuration.
func finalize(cfg *Config) error {
	cfg.VaultPath = expandPath(cfg.VaultPath)
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.DataFormat = strings.ToLower(strings.TrimSpace(cfg.DataFormat))
	return validate(cfg)
}

// Finalize re-runs path expansion and validation, for callers that lay
// flag overrides on top of a loaded config.
func (c *Config) Finalize() error { return finalize(c) }
