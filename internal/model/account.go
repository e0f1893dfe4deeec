// Package model defines the core domain types shared across the application.
package model

import "time"

// Account represents a single Steam Guard account known to the manifest
// store. Identity fields are owned by the store; the engine only ever
// mutates the session (via the session guard) and the policy flags (via
// the policy commands).
type Account struct {
	ID          string
	Name        string
	SteamID     string
	DeviceID    string
	Session     Session
	Policy      AccountPolicy
	Active      bool
	LastUpdated time.Time
}

// AccountPolicy holds the per-account auto-confirmation flags.
type AccountPolicy struct {
	AutoConfirmTrades             bool
	AutoConfirmMarketTransactions bool
}

// Settings holds the global engine settings loaded from configuration at
// the start of each poll cycle.
type Settings struct {
	CheckAllAccounts bool
	PollInterval     time.Duration
	PrepareWorkers   int
}

// DefaultSettings returns the engine settings used when configuration is
// absent.
func DefaultSettings() Settings {
	return Settings{
		CheckAllAccounts: false,
		PollInterval:     5 * time.Second,
		PrepareWorkers:   4,
	}
}
