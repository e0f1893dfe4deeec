package main

import (
	"log/slog"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/config"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll accounts for pending confirmations on a timer",
		Long: `Run the confirmation poll loop. Each cycle checks the active account (or
every account when engine.check_all_accounts is set), auto-accepts what the
per-account policy allows, and logs what is left for manual review.

Run 'sleeper review' to act on the manual queue.`,
		RunE: runWatch,
	}

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	scheduler := buildScheduler(store)
	settings := config.Source{}.Settings()

	slog.Info("Watching for confirmations",
		"interval", settings.PollInterval,
		"check_all_accounts", settings.CheckAllAccounts)

	ticker := time.NewTicker(settings.PollInterval)
	defer ticker.Stop()

	// First cycle immediately, then on the timer.
	scheduler.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch stopped")
			return nil
		case <-ticker.C:
			scheduler.Tick(ctx)

			// Pick up interval changes without a restart.
			if next := (config.Source{}).Settings().PollInterval; next != settings.PollInterval {
				settings.PollInterval = next
				ticker.Reset(next)
				slog.Info("Poll interval updated", "interval", next)
			}
		}
	}
}
