package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *model.Account {
	return &model.Account{ID: "acc", Name: "alice", SteamID: "76561198000000001"}
}

func TestExecutor_Apply(t *testing.T) {
	tests := []struct {
		name      string
		action    model.ConfirmationAction
		actionOK  bool
		actionErr error
		wantErr   error
	}{
		{
			name:     "accept succeeds",
			action:   model.ActionAccept,
			actionOK: true,
		},
		{
			name:     "deny succeeds",
			action:   model.ActionDeny,
			actionOK: true,
		},
		{
			name:      "service error",
			action:    model.ActionAccept,
			actionErr: errors.New("boom"),
			wantErr:   common.ErrActionFailed,
		},
		{
			name:     "false without error still fails",
			action:   model.ActionDeny,
			actionOK: false,
			wantErr:  common.ErrActionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockConfirmationService()
			svc.ActionOK = tt.actionOK
			svc.ActionErr = tt.actionErr
			exec := NewExecutor(NewMockGuard(), svc, NewReviewQueue())

			err := exec.Apply(context.Background(), testAccount(), model.ConfirmationItem{ID: "1"}, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecutor_ResolveAutoContinuesPastFailures(t *testing.T) {
	svc := NewMockConfirmationService()
	svc.ActionErr = errors.New("network down")
	exec := NewExecutor(NewMockGuard(), svc, NewReviewQueue())

	items := []model.ConfirmationItem{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	exec.ResolveAuto(context.Background(), testAccount(), items)

	// Every item is attempted even when earlier ones fail.
	assert.Equal(t, []string{"1", "2", "3"}, svc.AcceptCalls())
	assert.Empty(t, svc.DenyCalls())
}

func TestExecutor_ResolveEntrySuccessRemovesEntry(t *testing.T) {
	svc := NewMockConfirmationService()
	queue := NewReviewQueue()
	exec := NewExecutor(NewMockGuard(), svc, queue)

	entries := seedQueue(t, queue, "acc", "1", "2")

	// Arming alone never touches the service.
	_, err := queue.Arm(entries[0].ID, model.ActionDeny)
	require.NoError(t, err)
	assert.Empty(t, svc.AcceptCalls())
	assert.Empty(t, svc.DenyCalls())

	require.NoError(t, exec.ResolveEntry(context.Background(), testAccount(), entries[0].ID))

	assert.Equal(t, []string{"1"}, svc.DenyCalls())
	assert.Equal(t, 1, queue.Len("acc"))

	active, ok := queue.Active("acc")
	require.True(t, ok)
	assert.Equal(t, "2", active.Item.ID)
}

func TestExecutor_ResolveEntryFailureMarksFailed(t *testing.T) {
	svc := NewMockConfirmationService()
	svc.ActionOK = false
	queue := NewReviewQueue()
	exec := NewExecutor(NewMockGuard(), svc, queue)

	entries := seedQueue(t, queue, "acc", "1")
	_, err := queue.Arm(entries[0].ID, model.ActionAccept)
	require.NoError(t, err)

	err = exec.ResolveEntry(context.Background(), testAccount(), entries[0].ID)
	assert.ErrorIs(t, err, common.ErrActionFailed)

	// The entry stays in the queue, marked failed with the attempted
	// action, waiting for the next poll or a manual retry.
	entry, ok := queue.Active("acc")
	require.True(t, ok)
	assert.Equal(t, model.EntryFailed, entry.State)
	assert.Equal(t, model.ActionAccept, entry.FailedAction)
}

// TestExecutor_ResolveEntryRefreshesExpiredSession runs the real session
// guard: a confirm issued after the access token expired repairs the
// session before the action goes out.
func TestExecutor_ResolveEntryRefreshesExpiredSession(t *testing.T) {
	account := testAccount()
	account.Session.Token.AccessToken = expClaimToken(time.Now().Add(-time.Minute))
	account.Session.Token.RefreshToken = expClaimToken(time.Now().Add(24 * time.Hour))

	svc := NewMockConfirmationService()
	store := NewMockAccountStore(*account)
	queue := NewReviewQueue()
	exec := NewExecutor(session.NewGuard(svc, store), svc, queue)

	entries := seedQueue(t, queue, "acc", "1")
	_, err := queue.Arm(entries[0].ID, model.ActionAccept)
	require.NoError(t, err)

	require.NoError(t, exec.ResolveEntry(context.Background(), account, entries[0].ID))

	assert.Equal(t, []string{"acc"}, svc.RefreshCalls(), "session repaired before the action")
	assert.Equal(t, []string{"1"}, svc.AcceptCalls())
	assert.Equal(t, 0, queue.Len("acc"))
}

func TestExecutor_ResolveEntryDeadSessionMarksFailed(t *testing.T) {
	svc := NewMockConfirmationService()
	guard := NewMockGuard()
	guard.Statuses["acc"] = session.StatusNeedsUserLogin
	queue := NewReviewQueue()
	exec := NewExecutor(guard, svc, queue)

	entries := seedQueue(t, queue, "acc", "1")
	_, err := queue.Arm(entries[0].ID, model.ActionDeny)
	require.NoError(t, err)

	err = exec.ResolveEntry(context.Background(), testAccount(), entries[0].ID)
	assert.ErrorIs(t, err, common.ErrCredentialExpired)
	assert.Empty(t, svc.DenyCalls(), "no action on an unusable session")

	entry, ok := queue.Active("acc")
	require.True(t, ok)
	assert.Equal(t, model.EntryFailed, entry.State)
	assert.Equal(t, model.ActionDeny, entry.FailedAction)
}

// TestExecutor_ResolveEntrySurvivesConcurrentReplace exercises a poll
// landing between confirm and completion: the snapshot mints a fresh
// entry ID for the in-flight item, and success must still remove it.
func TestExecutor_ResolveEntrySurvivesConcurrentReplace(t *testing.T) {
	queue := NewReviewQueue()
	item := model.ConfirmationItem{ID: "1", Type: model.ConfirmationTypeOther}
	svc := &replacingService{queue: queue, item: item}
	exec := NewExecutor(NewMockGuard(), svc, queue)

	queue.Replace("acc", []model.ConfirmationItem{item})
	entries := queue.Entries("acc")
	require.Len(t, entries, 1)
	_, err := queue.Arm(entries[0].ID, model.ActionAccept)
	require.NoError(t, err)

	require.NoError(t, exec.ResolveEntry(context.Background(), testAccount(), entries[0].ID))
	assert.Equal(t, 0, queue.Len("acc"), "replacement entry for the resolved item is removed")
}

func TestExecutor_ResolveEntryRequiresArm(t *testing.T) {
	svc := NewMockConfirmationService()
	queue := NewReviewQueue()
	exec := NewExecutor(NewMockGuard(), svc, queue)

	entries := seedQueue(t, queue, "acc", "1")

	err := exec.ResolveEntry(context.Background(), testAccount(), entries[0].ID)
	assert.Error(t, err)
	assert.Empty(t, svc.AcceptCalls())
	assert.Empty(t, svc.DenyCalls())
}

// replacingService swaps the queue contents mid-action, simulating a
// poll snapshot landing while the accept is in flight.
type replacingService struct {
	queue *ReviewQueue
	item  model.ConfirmationItem
}

func (r *replacingService) ListConfirmations(_ context.Context, _ *model.Account) ([]model.ConfirmationItem, error) {
	return nil, nil
}

func (r *replacingService) Accept(_ context.Context, account *model.Account, _ model.ConfirmationItem) (bool, error) {
	r.queue.Replace(account.ID, []model.ConfirmationItem{r.item})
	return true, nil
}

func (r *replacingService) Deny(_ context.Context, _ *model.Account, _ model.ConfirmationItem) (bool, error) {
	return true, nil
}

func (r *replacingService) RefreshAccessToken(_ context.Context, _ *model.Account) error {
	return nil
}
