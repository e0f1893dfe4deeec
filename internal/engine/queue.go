package engine

import (
	"fmt"
	"sync"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/google/uuid"
)

// ReviewQueue holds manual-review entries per account and enforces the
// two-step arm/confirm interaction. Arming never performs a network call;
// only a confirm on an already-armed entry hands the entry to the
// executor. All mutations for an account are serialized under one lock so
// a poll replacing the queue can never interleave with an action.
type ReviewQueue struct {
	mu      sync.Mutex
	entries map[string][]*model.ReviewEntry
}

// NewReviewQueue creates an empty review queue.
func NewReviewQueue() *ReviewQueue {
	return &ReviewQueue{
		entries: make(map[string][]*model.ReviewEntry),
	}
}

// Replace swaps the queue contents for an account with fresh entries for
// the given items. Each poll snapshot is authoritative: prior entries,
// including Failed ones, are dropped and every new entry starts Idle.
func (q *ReviewQueue) Replace(accountID string, items []model.ConfirmationItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	fresh := make([]*model.ReviewEntry, len(items))
	for i, item := range items {
		fresh[i] = &model.ReviewEntry{
			ID:        uuid.NewString(),
			AccountID: accountID,
			Item:      item,
			State:     model.EntryIdle,
		}
	}
	q.entries[accountID] = fresh
}

// Entries returns a snapshot of the queue for an account in FIFO order.
func (q *ReviewQueue) Entries(accountID string) []model.ReviewEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]model.ReviewEntry, len(q.entries[accountID]))
	for i, entry := range q.entries[accountID] {
		snapshot[i] = *entry
	}
	return snapshot
}

// Active returns the entry currently presented for interaction: the head
// of the account's FIFO.
func (q *ReviewQueue) Active(accountID string) (model.ReviewEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.entries[accountID]
	if len(entries) == 0 {
		return model.ReviewEntry{}, false
	}
	return *entries[0], true
}

// Arm marks the entry as armed for the given action. The first request
// for an action is a soft arm only; callers must present the changed
// state ("press again to confirm") and call ConfirmArmed on the second
// request. Arming an entry that is already armed for the other action
// re-arms it for the new one.
func (q *ReviewQueue) Arm(entryID string, action model.ConfirmationAction) (model.ReviewEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(entryID)
	if entry == nil {
		return model.ReviewEntry{}, fmt.Errorf("arm %s: %w", entryID, common.ErrEntryNotFound)
	}
	if entry.State == model.EntryInFlight {
		return model.ReviewEntry{}, fmt.Errorf("arm %s: action already in flight", entryID)
	}

	switch action {
	case model.ActionAccept:
		entry.State = model.EntryArmedAccept
	case model.ActionDeny:
		entry.State = model.EntryArmedDeny
	default:
		return model.ReviewEntry{}, fmt.Errorf("arm %s: unknown action %q", entryID, action)
	}
	return *entry, nil
}

// ConfirmArmed transitions an armed entry to in-flight and returns the
// entry together with the armed action. The caller owns performing the
// action and reporting the outcome via Remove or MarkFailed.
func (q *ReviewQueue) ConfirmArmed(entryID string) (model.ReviewEntry, model.ConfirmationAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(entryID)
	if entry == nil {
		return model.ReviewEntry{}, "", fmt.Errorf("confirm %s: %w", entryID, common.ErrEntryNotFound)
	}

	var action model.ConfirmationAction
	switch entry.State {
	case model.EntryArmedAccept:
		action = model.ActionAccept
	case model.EntryArmedDeny:
		action = model.ActionDeny
	default:
		return model.ReviewEntry{}, "", fmt.Errorf("confirm %s: entry not armed (state %s)", entryID, entry.State)
	}

	entry.State = model.EntryInFlight
	return *entry, action, nil
}

// Remove deletes an entry from the queue. Removing an entry that is
// already gone is a no-op, which makes successful actions idempotent from
// the queue's perspective.
func (q *ReviewQueue) Remove(entryID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(entryID)
}

// RemoveResolved removes a successfully resolved entry. A poll may
// replace the queue while the action is in flight, minting a fresh entry
// ID for the same item; when the original ID is gone, the replacement
// entry for that item is removed instead so an item that just resolved is
// not offered again.
func (q *ReviewQueue) RemoveResolved(accountID, itemID, entryID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.removeLocked(entryID) {
		return true
	}
	for _, entry := range q.entries[accountID] {
		if entry.Item.ID == itemID {
			return q.removeLocked(entry.ID)
		}
	}
	return false
}

// removeLocked deletes an entry by ID. Caller must hold the lock.
func (q *ReviewQueue) removeLocked(entryID string) bool {
	for accountID, entries := range q.entries {
		for i, entry := range entries {
			if entry.ID == entryID {
				q.entries[accountID] = append(entries[:i], entries[i+1:]...)
				return true
			}
		}
	}
	return false
}

// MarkFailed records a failed action on an entry. The entry stays visible
// with the triggering action labeled failed; the user may re-arm and
// retry, or wait for the next poll to replace the queue.
func (q *ReviewQueue) MarkFailed(entryID string, action model.ConfirmationAction) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(entryID)
	if entry == nil {
		return
	}
	entry.State = model.EntryFailed
	entry.FailedAction = action
}

// Dismiss removes an entry at the user's request without acting on it.
func (q *ReviewQueue) Dismiss(entryID string) bool {
	return q.Remove(entryID)
}

// ResetArms clears any armed state for an account, leaving Failed entries
// failed. Called when the review surface is closed so a stale arm cannot
// carry over to the next viewing.
func (q *ReviewQueue) ResetArms(accountID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.entries[accountID] {
		if entry.State.Armed() {
			entry.State = model.EntryIdle
		}
	}
}

// Len returns the number of pending entries for an account.
func (q *ReviewQueue) Len(accountID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries[accountID])
}

// find locates an entry by ID. Caller must hold the lock.
func (q *ReviewQueue) find(entryID string) *model.ReviewEntry {
	for _, entries := range q.entries {
		for _, entry := range entries {
			if entry.ID == entryID {
				return entry
			}
		}
	}
	return nil
}
