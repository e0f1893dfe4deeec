package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/service"
)

// Executor applies accept/deny decisions through the confirmation
// service and keeps the review queue consistent with the outcomes.
type Executor struct {
	guard SessionGuard
	svc   service.ConfirmationService
	queue *ReviewQueue
}

// NewExecutor creates an executor bound to the given guard, service, and
// queue.
func NewExecutor(guard SessionGuard, svc service.ConfirmationService, queue *ReviewQueue) *Executor {
	return &Executor{
		guard: guard,
		svc:   svc,
		queue: queue,
	}
}

// Apply performs a single accept/deny call. A service response of false
// without an error still counts as a failure: the confirmation was not
// resolved.
func (e *Executor) Apply(ctx context.Context, account *model.Account, item model.ConfirmationItem, action model.ConfirmationAction) error {
	var ok bool
	var err error

	switch action {
	case model.ActionAccept:
		ok, err = e.svc.Accept(ctx, account, item)
	case model.ActionDeny:
		ok, err = e.svc.Deny(ctx, account, item)
	default:
		return fmt.Errorf("apply: unknown action %q", action)
	}

	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", common.ErrActionFailed, action, item.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s: rejected by service", common.ErrActionFailed, action, item.ID)
	}
	return nil
}

// ResolveAuto accepts every item in the auto bucket. Failures are logged
// and not retried within the cycle: an item still pending simply
// reappears on the next poll's fetch, which is the retry mechanism.
func (e *Executor) ResolveAuto(ctx context.Context, account *model.Account, items []model.ConfirmationItem) {
	for _, item := range items {
		if err := e.Apply(ctx, account, item, model.ActionAccept); err != nil {
			slog.Error("Auto-accept failed",
				"account", account.Name,
				"confirmation_id", item.ID,
				"type", item.Type,
				"error", err)
			continue
		}
		slog.Info("Auto-accepted confirmation",
			"account", account.Name,
			"confirmation_id", item.ID,
			"type", item.Type)
	}
}

// ResolveEntry performs the armed action on a review entry. The entry
// must have gone through Arm first; success removes it from the queue and
// failure marks it Failed in place. The session is re-validated before
// the call: a confirm can arrive long after the poll that queued the
// entry, and the token may have expired in between.
func (e *Executor) ResolveEntry(ctx context.Context, account *model.Account, entryID string) error {
	entry, action, err := e.queue.ConfirmArmed(entryID)
	if err != nil {
		return err
	}

	if _, guardErr := e.guard.EnsureUsable(ctx, account); guardErr != nil {
		e.queue.MarkFailed(entryID, action)
		return guardErr
	}

	if applyErr := e.Apply(ctx, account, entry.Item, action); applyErr != nil {
		e.queue.MarkFailed(entryID, action)
		return applyErr
	}

	e.queue.RemoveResolved(account.ID, entry.Item.ID, entryID)
	slog.Info("Resolved confirmation",
		"account", account.Name,
		"confirmation_id", entry.Item.ID,
		"action", action)
	return nil
}
