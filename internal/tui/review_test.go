package tui

import (
	"context"
	"testing"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/engine"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewFixture(t *testing.T, items ...model.ConfirmationItem) (ReviewModel, *engine.MockConfirmationService) {
	t.Helper()

	account := model.Account{ID: "acc", Name: "alice"}
	svc := engine.NewMockConfirmationService()
	store := engine.NewMockAccountStore(account)
	sched := engine.NewScheduler(engine.NewMockGuard(), svc, store, engine.StaticSettings(model.Settings{}))
	sched.Queue().Replace(account.ID, items)

	return NewReview(context.Background(), &account, sched), svc
}

func press(m ReviewModel, key string) (ReviewModel, tea.Cmd) {
	var msg tea.Msg
	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(ReviewModel), cmd
}

func TestReviewView_EmptyQueue(t *testing.T) {
	m, _ := reviewFixture(t)

	view := m.View()
	assert.Contains(t, view, "Nothing to confirm or cancel")
	assert.Contains(t, view, "alice")
}

func TestReviewView_ShowsActiveEntry(t *testing.T) {
	m, _ := reviewFixture(t,
		model.ConfirmationItem{ID: "1", Headline: "Trade with bob", Summary: []string{"You give: knife"}},
		model.ConfirmationItem{ID: "2", Headline: "Sell card"},
	)

	view := m.View()
	assert.Contains(t, view, "Trade with bob")
	assert.Contains(t, view, "You give: knife")
	assert.NotContains(t, view, "Sell card", "only the head of the queue is shown")
	assert.Contains(t, view, "1 of 2 pending")
}

func TestReviewFirstPressArmsOnly(t *testing.T) {
	m, svc := reviewFixture(t, model.ConfirmationItem{ID: "1", Headline: "Trade"})

	m, cmd := press(m, "a")
	assert.Nil(t, cmd, "arming produces no command")
	assert.Contains(t, m.View(), "Press a again to accept")
	assert.Empty(t, svc.AcceptCalls(), "first press never reaches the service")
}

func TestReviewSecondPressConfirms(t *testing.T) {
	m, svc := reviewFixture(t, model.ConfirmationItem{ID: "1", Headline: "Trade"})

	m, _ = press(m, "d")
	m, cmd := press(m, "d")
	require.NotNil(t, cmd, "second matching press dispatches the action")

	msg := cmd()
	result, ok := msg.(actionResultMsg)
	require.True(t, ok)
	assert.NoError(t, result.err)
	assert.Equal(t, []string{"1"}, svc.DenyCalls())
}

func TestReviewSwitchingActionRearms(t *testing.T) {
	m, svc := reviewFixture(t, model.ConfirmationItem{ID: "1", Headline: "Trade"})

	m, _ = press(m, "a")
	m, cmd := press(m, "d")
	assert.Nil(t, cmd, "switching sides re-arms instead of confirming")
	assert.Contains(t, m.View(), "Press d again to deny")
	assert.Empty(t, svc.AcceptCalls())
	assert.Empty(t, svc.DenyCalls())
}

func TestReviewDismissAdvancesQueue(t *testing.T) {
	m, _ := reviewFixture(t,
		model.ConfirmationItem{ID: "1", Headline: "First"},
		model.ConfirmationItem{ID: "2", Headline: "Second"},
	)

	m, _ = press(m, "x")
	view := m.View()
	assert.Contains(t, view, "Second")
	assert.Contains(t, view, "1 of 1 pending")
}

func TestReviewQuitClearsArmedState(t *testing.T) {
	m, _ := reviewFixture(t, model.ConfirmationItem{ID: "1", Headline: "Trade"})

	m, _ = press(m, "a")
	m, cmd := press(m, "esc")
	require.NotNil(t, cmd)

	entry, ok := m.queue.Active("acc")
	require.True(t, ok)
	assert.Equal(t, model.EntryIdle, entry.State, "armed state does not survive the surface")
	assert.Empty(t, m.View(), "quitting view is blank")
}

func TestReviewFailedEntryShowsRetryHint(t *testing.T) {
	m, _ := reviewFixture(t, model.ConfirmationItem{ID: "1", Headline: "Trade"})

	entries := m.queue.Entries("acc")
	m.queue.MarkFailed(entries[0].ID, model.ActionAccept)

	// A retry is a full arm/confirm cycle, and the label says so.
	assert.Contains(t, m.View(), "press twice to retry")
}

func TestReviewHintsUseItemLabels(t *testing.T) {
	m, _ := reviewFixture(t, model.ConfirmationItem{
		ID:          "1",
		Headline:    "Sell card",
		AcceptLabel: "Create Listing",
		CancelLabel: "Cancel Listing",
	})

	view := m.View()
	assert.Contains(t, view, "[a] Create Listing")
	assert.Contains(t, view, "[d] Cancel Listing")
}
