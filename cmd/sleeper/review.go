package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review pending confirmations for the active account",
		Long: `Fetch the active account's pending confirmations and open the manual
review surface. Accepting or denying takes two presses of the same key: the
first arms the action, the second performs it.`,
		RunE: runReview,
	}

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close account store", "error", closeErr)
		}
	}()

	account, err := store.ActiveAccount(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoActiveAccount) {
			return common.NewUserError("no active account; run 'sleeper accounts use <name>' first", err)
		}
		return fmt.Errorf("failed to load active account: %w", err)
	}

	scheduler := buildScheduler(store)

	// Populate the queue before showing anything.
	scheduler.Tick(ctx)

	program := tea.NewProgram(tui.NewReview(ctx, account, scheduler))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("review surface failed: %w", err)
	}
	return nil
}
