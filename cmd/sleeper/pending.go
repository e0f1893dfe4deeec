package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/config"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/engine"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/steam"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/tui"
)

func pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List the active account's pending confirmations",
		Long: `Fetch and print the pending confirmations for the active account without
opening the review surface. Nothing is accepted or denied.`,
		RunE: runPending,
	}

	return cmd
}

func runPending(cmd *cobra.Command, _ []string) error {
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

	client := steam.NewClient(steam.NewCommandKeySource(config.KeygenCommand()))
	guard := session.NewGuard(client, store)
	settings := config.Source{}.Settings()
	preparer := engine.NewPreparer(guard, client, steam.NewIconFetcher(), settings.PrepareWorkers)

	result := preparer.FetchAndPrepare(ctx, account)
	if result.Err != nil {
		switch result.Status {
		case session.StatusNeedsUserLogin:
			return common.NewUserError(
				fmt.Sprintf("session for %s has expired; log in again with the authenticator", account.Name),
				result.Err)
		case session.StatusRefreshFailed:
			return common.NewUserError(
				fmt.Sprintf("could not refresh the session for %s; try again shortly", account.Name),
				result.Err)
		default:
			return fmt.Errorf("failed to fetch confirmations for %s: %w", account.Name, result.Err)
		}
	}

	fmt.Println(tui.TitleStyle.Render(fmt.Sprintf("Confirmations for %s", account.Name))) //nolint:forbidigo // User-facing output

	if len(result.Items) == 0 {
		fmt.Println("Nothing to confirm or cancel.") //nolint:forbidigo // User-facing output
		return nil
	}

	for _, item := range result.Items {
		lines := []string{tui.HeadlineStyle.Render(item.Headline)}
		if item.Creator != "" {
			lines = append(lines, item.Creator)
		}
		for _, summary := range item.Summary {
			lines = append(lines, tui.SummaryStyle.Render(summary))
		}
		if len(item.IconData) > 0 {
			lines = append(lines, tui.HintStyle.Render(fmt.Sprintf("icon: %d bytes", len(item.IconData))))
		}
		fmt.Println(tui.BoxStyle.Render(strings.Join(lines, "\n"))) //nolint:forbidigo // User-facing output
	}

	fmt.Println(tui.HintStyle.Render(fmt.Sprintf("%d pending. Run 'sleeper review' to act on them.", len(result.Items)))) //nolint:forbidigo // User-facing output
	return nil
}
