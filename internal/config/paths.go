package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	userConfigDir  = ".plannersync"
	configFileName = "plannersync.toml"
)

// UserConfigPath is where init scaffolds the config file.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

func findUserConfigFile() string {
	path := UserConfigPath()
	if fileExists(path) {
		return path
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{configFileName, "." + configFileName} {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// expandPath expands a leading ~ and environment variables in paths.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
