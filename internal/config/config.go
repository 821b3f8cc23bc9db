// Package config handles configuration loading and defaults.
package config

import "time"

// Default values.
const (
	DefaultVaultPath       = "~/Planner"
	DefaultDataFile        = "~/.plannersync/state.json"
	DefaultDataFormat      = "json"
	DefaultDoneStatus      = "Completed"
	DefaultStatus          = "Not Started"
	DefaultPriority        = "Medium"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisNamespace  = "default"
	DefaultWindowMS        = 2000
	DefaultCreateDelayMS   = 500
	DefaultCooldownMinutes = 5
	DefaultFilePauseMS     = 50
)

// DefaultStatuses returns the stock status ladder.
func DefaultStatuses() []string {
	return []string{"Not Started", "In Progress", "Blocked", "Completed"}
}

// Config holds the full configuration for plannersync. TOML tags name the
// file keys, JSON tags feed the schema validator.
type Config struct {
	// Paths
	VaultPath  string `toml:"vault_path" json:"vault_path"`
	DataFile   string `toml:"data_file" json:"data_file"`
	DataFormat string `toml:"data_format" json:"data_format"`

	// Status model
	DoneStatus      string   `toml:"done_status" json:"done_status"`
	DefaultStatus   string   `toml:"default_status" json:"default_status"`
	DefaultPriority string   `toml:"default_priority" json:"default_priority"`
	Statuses        []string `toml:"statuses" json:"statuses"`

	// Logging
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`

	Sync  SyncConfig  `toml:"sync" json:"sync"`
	Redis RedisConfig `toml:"redis" json:"redis"`
}

// SyncConfig tunes the vault sync coordinator.
type SyncConfig struct {
	SuppressionWindowMS int `toml:"suppression_window_ms" json:"suppression_window_ms"`
	CreateDelayMS       int `toml:"create_delay_ms" json:"create_delay_ms"`
	ScanCooldownMinutes int `toml:"scan_cooldown_minutes" json:"scan_cooldown_minutes"`
	FilePauseMS         int `toml:"file_pause_ms" json:"file_pause_ms"`
}

func (s SyncConfig) Window() time.Duration { return time.Duration(s.SuppressionWindowMS) * time.Millisecond }

func (s SyncConfig) CreateDelay() time.Duration {
	return time.Duration(s.CreateDelayMS) * time.Millisecond
}

func (s SyncConfig) ScanCooldown() time.Duration {
	return time.Duration(s.ScanCooldownMinutes) * time.Minute
}

func (s SyncConfig) FilePause() time.Duration { return time.Duration(s.FilePauseMS) * time.Millisecond }

// RedisConfig switches persistence from the data file to a shared Redis
// instance when enabled.
type RedisConfig struct {
	Enabled   bool   `toml:"enabled" json:"enabled"`
	Addr      string `toml:"addr" json:"addr"`
	Password  string `toml:"password" json:"password"`
	DB        int    `toml:"db" json:"db"`
	Namespace string `toml:"namespace" json:"namespace"`
}

func setDefaults(cfg *Config) {
	cfg.VaultPath = DefaultVaultPath
	cfg.DataFile = DefaultDataFile
	cfg.DataFormat = DefaultDataFormat
	cfg.DoneStatus = DefaultDoneStatus
	cfg.DefaultStatus = DefaultStatus
	cfg.DefaultPriority = DefaultPriority
	cfg.Statuses = DefaultStatuses()
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Sync = SyncConfig{
		SuppressionWindowMS: DefaultWindowMS,
		CreateDelayMS:       DefaultCreateDelayMS,
		ScanCooldownMinutes: DefaultCooldownMinutes,
		FilePauseMS:         DefaultFilePauseMS,
	}
	cfg.Redis = RedisConfig{
		Addr:      DefaultRedisAddr,
		Namespace: DefaultRedisNamespace,
	}
}

// KnownStatus reports whether status appears in the configured ladder.
// An empty ladder accepts everything.
func (c *Config) KnownStatus(status string) bool {
	if len(c.Statuses) == 0 {
		return true
	}
	for _, s := range c.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
