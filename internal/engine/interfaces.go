package engine

import (
	"context"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
)

// SessionGuard validates and repairs an account session before use.
type SessionGuard interface {
	EnsureUsable(ctx context.Context, account *model.Account) (session.Status, error)
}

// SettingsSource provides the global engine settings. It is read once at
// the start of every poll cycle so configuration changes take effect on
// the next cycle without a restart.
type SettingsSource interface {
	Settings() model.Settings
}

// StaticSettings is a SettingsSource returning a fixed settings value.
type StaticSettings model.Settings

// Settings returns the wrapped settings value.
func (s StaticSettings) Settings() model.Settings {
	return model.Settings(s)
}
