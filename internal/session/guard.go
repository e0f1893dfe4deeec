// Package session validates and repairs account credentials before any
// confirmation call is made on their behalf.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/service"
)

// Status is the outcome of a session check.
type Status int

// Session statuses.
const (
	// StatusReady means the session can be used as-is.
	StatusReady Status = iota
	// StatusNeedsUserLogin means the refresh token has expired and only
	// an external re-login can restore the session. The account is
	// skipped, not retried.
	StatusNeedsUserLogin
	// StatusRefreshFailed means the access-token refresh failed this
	// cycle; the account will be retried on the next one.
	StatusRefreshFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusNeedsUserLogin:
		return "needs-user-login"
	case StatusRefreshFailed:
		return "refresh-failed"
	default:
		return "unknown"
	}
}

// Guard checks and repairs an account session before use. It must run
// before every fetch and before any accept/deny initiated outside a
// freshly-validated poll cycle.
type Guard struct {
	svc   service.ConfirmationService
	store service.AccountStore
	retry service.RetryOptions
}

// NewGuard creates a session guard backed by the given confirmation
// service and account store.
func NewGuard(svc service.ConfirmationService, store service.AccountStore) *Guard {
	return &Guard{
		svc:   svc,
		store: store,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// EnsureUsable checks the account credentials in order: an expired
// refresh token means the user must log in again; an expired access token
// is refreshed in place and the repaired session persisted.
func (g *Guard) EnsureUsable(ctx context.Context, account *model.Account) (Status, error) {
	if account.Session.IsRefreshTokenExpired() {
		slog.Warn("Session expired, re-login required", "account", account.Name)
		return StatusNeedsUserLogin, common.ErrCredentialExpired
	}

	if !account.Session.IsAccessTokenExpired() {
		return StatusReady, nil
	}

	slog.Info("Refreshing session", "account", account.Name)

	refreshErr := common.WithRetry(ctx, func() error {
		if err := g.svc.RefreshAccessToken(ctx, account); err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}, g.retry)

	if refreshErr != nil {
		return StatusRefreshFailed, fmt.Errorf("%w: %v", common.ErrCredentialRefresh, refreshErr)
	}

	// Persist the repaired session so a restart does not redo the refresh.
	if err := g.store.SaveAccount(ctx, account); err != nil {
		slog.Warn("Failed to persist refreshed session",
			"account", account.Name,
			"error", err)
	}

	return StatusReady, nil
}
