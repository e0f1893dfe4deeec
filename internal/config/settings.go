// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/spf13/viper"
)

// Viper keys for the engine settings.
const (
	KeyCheckAllAccounts = "engine.check_all_accounts"
	KeyPollInterval     = "engine.poll_interval_seconds"
	KeyPrepareWorkers   = "engine.prepare_workers"
	KeyDatabasePath     = "database.path"
	KeyKeygenCommand    = "keygen.command"
)

// Source reads engine settings from viper. The scheduler consults it once
// per cycle, so edits to the config take effect on the next poll.
type Source struct{}

// Settings returns the current engine settings, falling back to defaults
// for anything unset.
func (Source) Settings() model.Settings {
	settings := model.DefaultSettings()

	if viper.IsSet(KeyCheckAllAccounts) {
		settings.CheckAllAccounts = viper.GetBool(KeyCheckAllAccounts)
	}
	if seconds := viper.GetInt(KeyPollInterval); seconds > 0 {
		settings.PollInterval = time.Duration(seconds) * time.Second
	}
	if workers := viper.GetInt(KeyPrepareWorkers); workers > 0 {
		settings.PrepareWorkers = workers
	}

	return settings
}

// DatabasePath returns the configured SQLite path, defaulting to the
// standard config directory.
func DatabasePath() string {
	if path := viper.GetString(KeyDatabasePath); path != "" {
		return ExpandPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "sleeper.db"
	}
	return filepath.Join(home, ".config", "sleeper", "sleeper.db")
}

// KeygenCommand returns the configured external key-generator command.
func KeygenCommand() string {
	return viper.GetString(KeyKeygenCommand)
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
