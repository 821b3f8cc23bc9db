package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every PLANNERSYNC_* variable the loader reads so host
// environments cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PLANNERSYNC_VAULT", "PLANNERSYNC_DATA_FILE", "PLANNERSYNC_DATA_FORMAT",
		"PLANNERSYNC_DONE_STATUS", "PLANNERSYNC_DEFAULT_STATUS", "PLANNERSYNC_DEFAULT_PRIORITY",
		"PLANNERSYNC_LOG_LEVEL", "PLANNERSYNC_LOG_FORMAT",
		"PLANNERSYNC_SUPPRESSION_WINDOW_MS", "PLANNERSYNC_CREATE_DELAY_MS",
		"PLANNERSYNC_SCAN_COOLDOWN_MINUTES", "PLANNERSYNC_FILE_PAUSE_MS",
		"PLANNERSYNC_REDIS_ENABLED", "PLANNERSYNC_REDIS_ADDR", "PLANNERSYNC_REDIS_PASSWORD",
		"PLANNERSYNC_REDIS_DB", "PLANNERSYNC_REDIS_NAMESPACE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, DefaultVaultPath, cfg.VaultPath)
	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, "json", cfg.DataFormat)
	assert.Equal(t, "Completed", cfg.DoneStatus)
	assert.Equal(t, "Not Started", cfg.DefaultStatus)
	assert.Equal(t, "Medium", cfg.DefaultPriority)
	assert.Equal(t, DefaultStatuses(), cfg.Statuses)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2000, cfg.Sync.SuppressionWindowMS)
}

func TestSyncDurations(t *testing.T) {
	s := SyncConfig{
		SuppressionWindowMS: 2000,
		CreateDelayMS:       500,
		ScanCooldownMinutes: 5,
		FilePauseMS:         50,
	}
	assert.Equal(t, 2*time.Second, s.Window())
	assert.Equal(t, 500*time.Millisecond, s.CreateDelay())
	assert.Equal(t, 5*time.Minute, s.ScanCooldown())
	assert.Equal(t, 50*time.Millisecond, s.FilePause())
}

func TestKnownStatus(t *testing.T) {
	cfg := &Config{Statuses: []string{"Not Started", "Done"}}
	assert.True(t, cfg.KnownStatus("Done"))
	assert.False(t, cfg.KnownStatus("done"), "ladder is case-sensitive")
	assert.False(t, cfg.KnownStatus("Waiting"))

	open := &Config{}
	assert.True(t, open.KnownStatus("Anything"), "empty ladder accepts everything")
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "plannersync.toml")
	body := `
vault_path = "~/CustomVault"
data_format = "yaml"
done_status = "Done"

[sync]
suppression_window_ms = 750

[redis]
enabled = true
namespace = "team"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "CustomVault"), cfg.VaultPath, "~ expanded")
	assert.Equal(t, "yaml", cfg.DataFormat)
	assert.Equal(t, "Done", cfg.DoneStatus)
	assert.Equal(t, 750, cfg.Sync.SuppressionWindowMS)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "team", cfg.Redis.Namespace)

	// Untouched keys keep their defaults.
	assert.Equal(t, "Not Started", cfg.DefaultStatus)
	assert.Equal(t, 500, cfg.Sync.CreateDelayMS)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLANNERSYNC_VAULT", "/srv/vault")
	t.Setenv("PLANNERSYNC_DATA_FORMAT", "yaml")
	t.Setenv("PLANNERSYNC_SUPPRESSION_WINDOW_MS", "125")
	t.Setenv("PLANNERSYNC_REDIS_ENABLED", "yes")
	t.Setenv("PLANNERSYNC_REDIS_DB", "3")
	t.Setenv("PLANNERSYNC_SCAN_COOLDOWN_MINUTES", "not a number")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg)

	assert.Equal(t, "/srv/vault", cfg.VaultPath)
	assert.Equal(t, "yaml", cfg.DataFormat)
	assert.Equal(t, 125, cfg.Sync.SuppressionWindowMS)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, DefaultCooldownMinutes, cfg.Sync.ScanCooldownMinutes, "unparsable int ignored")
}

func TestBoolFromString(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on", " True "} {
		assert.True(t, boolFromString(v), "%q", v)
	}
	for _, v := range []string{"", "0", "false", "no", "off", "banana"} {
		assert.False(t, boolFromString(v), "%q", v)
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		assert.NoError(t, validate(cfg))
	})

	t.Run("bad data format", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.DataFormat = "xml"
		err := validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data_format")
	})

	t.Run("negative sync duration", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.Sync.SuppressionWindowMS = -1
		err := validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "suppression_window_ms")
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.LogLevel = "noisy"
		assert.Error(t, validate(cfg))
	})
}

func TestExampleConfigRoundTrip(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	_, err := toml.Decode(ExampleConfig(), cfg)
	require.NoError(t, err, "example config must stay parsable")
	assert.NoError(t, validate(cfg), "example config must stay schema-valid")
	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, "Completed", cfg.DoneStatus)
}
