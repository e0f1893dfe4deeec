// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
)

// ConfirmationService is the account-facing API for listing and resolving
// pending confirmations. Implementations own all wire concerns; callers
// must ensure the account session is usable first (see the session guard).
type ConfirmationService interface {
	ListConfirmations(ctx context.Context, account *model.Account) ([]model.ConfirmationItem, error)
	Accept(ctx context.Context, account *model.Account, item model.ConfirmationItem) (bool, error)
	Deny(ctx context.Context, account *model.Account, item model.ConfirmationItem) (bool, error)
	RefreshAccessToken(ctx context.Context, account *model.Account) error
}

// AccountStore is the persistence contract for the account manifest.
// ListAccounts returns accounts in a stable order so poll cycles are
// deterministic.
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, name string) (*model.Account, error)
	SaveAccount(ctx context.Context, account *model.Account) error
	ActiveAccount(ctx context.Context) (*model.Account, error)
	SetActiveAccount(ctx context.Context, name string) error
	Migrate(ctx context.Context) error
	Close() error
}

// IconResolver fetches the optional icon decoration for a confirmation
// item. Resolution failures degrade the item, never the batch.
type IconResolver interface {
	Resolve(ctx context.Context, url string) ([]byte, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
