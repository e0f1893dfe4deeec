package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/engine"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// actionResultMsg reports the outcome of a confirmed action.
type actionResultMsg struct {
	err error
}

// pollDoneMsg reports a manual re-poll attempt.
type pollDoneMsg struct {
	started bool
}

// ReviewModel is the bubbletea model for the manual-review queue. It is
// a pure consumer: every state transition goes through the engine queue,
// so the two-step arm/confirm law is enforced there, not here.
type ReviewModel struct {
	ctx       context.Context
	account   *model.Account
	queue     *engine.ReviewQueue
	executor  *engine.Executor
	scheduler *engine.Scheduler
	spinner   spinner.Model
	status    string
	width     int
	quitting  bool
}

// NewReview creates the review surface for an account.
func NewReview(ctx context.Context, account *model.Account, scheduler *engine.Scheduler) ReviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	return ReviewModel{
		ctx:       ctx,
		account:   account,
		queue:     scheduler.Queue(),
		executor:  scheduler.Executor(),
		scheduler: scheduler,
		spinner:   s,
		width:     80,
	}
}

// Init starts the spinner.
func (m ReviewModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case actionResultMsg:
		if msg.err != nil {
			m.status = FailedStyle.Render("Failed...")
		} else {
			m.status = StatusStyle.Render("Done")
		}
		return m, nil

	case pollDoneMsg:
		if msg.started {
			m.status = StatusStyle.Render("Refreshed")
		} else {
			m.status = HintStyle.Render("A poll is already running")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ReviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		// Closing the surface clears any armed state.
		m.queue.ResetArms(m.account.ID)
		m.quitting = true
		return m, tea.Quit

	case "a":
		return m.requestAction(model.ActionAccept)

	case "d":
		return m.requestAction(model.ActionDeny)

	case "x":
		if entry, ok := m.queue.Active(m.account.ID); ok && entry.State != model.EntryInFlight {
			m.queue.Dismiss(entry.ID)
			m.status = ""
		}
		return m, nil

	case "r":
		return m, func() tea.Msg {
			return pollDoneMsg{started: m.scheduler.Tick(m.ctx)}
		}
	}

	return m, nil
}

// requestAction arms the active entry on the first request and confirms
// on the second matching one.
func (m ReviewModel) requestAction(action model.ConfirmationAction) (tea.Model, tea.Cmd) {
	entry, ok := m.queue.Active(m.account.ID)
	if !ok || entry.State == model.EntryInFlight {
		return m, nil
	}

	armed := entry.State == model.EntryArmedAccept && action == model.ActionAccept ||
		entry.State == model.EntryArmedDeny && action == model.ActionDeny

	if !armed {
		if _, err := m.queue.Arm(entry.ID, action); err != nil {
			m.status = FailedStyle.Render(err.Error())
			return m, nil
		}
		m.status = ""
		return m, nil
	}

	entryID := entry.ID
	m.status = ""
	return m, func() tea.Msg {
		return actionResultMsg{err: m.executor.ResolveEntry(m.ctx, m.account, entryID)}
	}
}

// View renders the active entry and queue position.
func (m ReviewModel) View() string {
	if m.quitting {
		return ""
	}

	title := TitleStyle.Render(fmt.Sprintf("Confirmations for %s", m.account.Name))

	entries := m.queue.Entries(m.account.ID)
	if len(entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"Nothing to confirm or cancel.",
			"",
			HintStyle.Render("[r] Refresh  [q] Quit"),
		)
	}

	entry := entries[0]
	body := m.renderEntry(entry)
	position := HintStyle.Render(fmt.Sprintf("1 of %d pending", len(entries)))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		position,
		m.renderStatus(entry),
		m.renderHints(entry),
	)
}

func (m ReviewModel) renderEntry(entry model.ReviewEntry) string {
	lines := []string{HeadlineStyle.Render(entry.Item.Headline)}
	if entry.Item.Creator != "" {
		lines = append(lines, entry.Item.Creator)
	}
	for _, summary := range entry.Item.Summary {
		lines = append(lines, SummaryStyle.Render(summary))
	}
	return BoxStyle.Width(min(m.width-4, 70)).Render(strings.Join(lines, "\n"))
}

func (m ReviewModel) renderStatus(entry model.ReviewEntry) string {
	switch entry.State {
	case model.EntryArmedAccept:
		return ArmedStyle.Render("Press a again to accept")
	case model.EntryArmedDeny:
		return ArmedStyle.Render("Press d again to deny")
	case model.EntryInFlight:
		return m.spinner.View() + " Working..."
	case model.EntryFailed:
		return FailedStyle.Render(fmt.Sprintf("%s failed, press twice to retry", entry.FailedAction))
	default:
		return m.status
	}
}

func (m ReviewModel) renderHints(entry model.ReviewEntry) string {
	accept := entry.Item.AcceptLabel
	if accept == "" {
		accept = "Accept"
	}
	deny := entry.Item.CancelLabel
	if deny == "" {
		deny = "Deny"
	}

	return HintStyle.Render(fmt.Sprintf(
		"[a] %s  [d] %s  [x] Dismiss  [r] Refresh  [q] Quit", accept, deny))
}
