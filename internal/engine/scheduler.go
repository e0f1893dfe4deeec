// Package engine implements the confirmation synchronization engine: the
// single-flight poll scheduler, the policy classifier, the action
// executor, and the manual-review queue.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/service"
)

// Scheduler drives poll cycles across all accounts under policy. It owns
// the system-wide single-flight permit: a Tick issued while a cycle is
// running is dropped, not queued, regardless of whether the trigger was a
// timer, a key press, or a test harness.
type Scheduler struct {
	guard    SessionGuard
	svc      service.ConfirmationService
	store    service.AccountStore
	settings SettingsSource
	queue    *ReviewQueue
	executor *Executor
	permit   chan struct{}
}

// NewScheduler creates a scheduler with its own review queue and executor.
func NewScheduler(guard SessionGuard, svc service.ConfirmationService, store service.AccountStore, settings SettingsSource) *Scheduler {
	queue := NewReviewQueue()
	return &Scheduler{
		guard:    guard,
		svc:      svc,
		store:    store,
		settings: settings,
		queue:    queue,
		executor: NewExecutor(guard, svc, queue),
		permit:   make(chan struct{}, 1),
	}
}

// Queue returns the review queue fed by this scheduler.
func (s *Scheduler) Queue() *ReviewQueue {
	return s.queue
}

// Executor returns the executor bound to this scheduler's queue.
func (s *Scheduler) Executor() *Executor {
	return s.executor
}

// Tick attempts one poll cycle. It returns false immediately when a cycle
// is already in flight. A started cycle runs to completion over its
// account list; per-account failures are absorbed and logged, never
// propagated, so nothing can escape Tick or wedge the permit.
func (s *Scheduler) Tick(ctx context.Context) bool {
	select {
	case s.permit <- struct{}{}:
	default:
		return false
	}
	defer func() { <-s.permit }()

	s.runCycle(ctx)
	return true
}

func (s *Scheduler) runCycle(ctx context.Context) {
	settings := s.settings.Settings()

	accounts, err := s.targetAccounts(ctx, settings)
	if err != nil {
		slog.Error("Failed to resolve poll targets", "error", err)
		return
	}
	if len(accounts) == 0 {
		slog.Debug("No accounts to poll")
		return
	}

	type autoBatch struct {
		account *model.Account
		items   []model.ConfirmationItem
	}
	var autoBatches []autoBatch

	for i := range accounts {
		account := &accounts[i]

		auto, manual, pollErr := s.pollAccount(ctx, account)
		if pollErr != nil {
			if errors.Is(pollErr, common.ErrCredentialExpired) {
				slog.Error("Account needs re-login, skipping",
					"account", account.Name)
			} else {
				slog.Error("Account poll failed",
					"account", account.Name,
					"error", pollErr)
			}
			continue
		}

		// The fetched snapshot is authoritative: publish the manual
		// bucket even when empty so resolved items disappear.
		s.queue.Replace(account.ID, manual)

		if len(auto) > 0 {
			autoBatches = append(autoBatches, autoBatch{account: account, items: auto})
		}

		slog.Debug("Polled account",
			"account", account.Name,
			"auto", len(auto),
			"manual", len(manual))
	}

	for _, batch := range autoBatches {
		s.executor.ResolveAuto(ctx, batch.account, batch.items)
	}
}

// pollAccount runs the per-account pipeline: session guard, fetch,
// classify.
func (s *Scheduler) pollAccount(ctx context.Context, account *model.Account) (auto, manual []model.ConfirmationItem, err error) {
	if _, guardErr := s.guard.EnsureUsable(ctx, account); guardErr != nil {
		return nil, nil, guardErr
	}

	items, fetchErr := s.svc.ListConfirmations(ctx, account)
	if fetchErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrFetchFailed, fetchErr)
	}

	auto, manual = Classify(account.Policy, items)
	return auto, manual, nil
}

// targetAccounts resolves the account set for this cycle: every account
// when the check-all policy is on, otherwise just the active one.
func (s *Scheduler) targetAccounts(ctx context.Context, settings model.Settings) ([]model.Account, error) {
	if settings.CheckAllAccounts {
		return s.store.ListAccounts(ctx)
	}

	active, err := s.store.ActiveAccount(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoActiveAccount) {
			return nil, nil
		}
		return nil, err
	}
	return []model.Account{*active}, nil
}
