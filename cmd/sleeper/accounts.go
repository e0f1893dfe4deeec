package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/tui"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the accounts known to the manifest store",
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsUseCmd())

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE:  runAccountsList,
	}
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
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

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println(tui.HintStyle.Render("No accounts yet. Use 'sleeper import' to add some.")) //nolint:forbidigo // User-facing output
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Name"),
		headerStyle.Render("Steam ID"),
		headerStyle.Render("Active"),
		headerStyle.Render("Auto Trades"),
		headerStyle.Render("Auto Market")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 20),
		strings.Repeat("─", 18),
		strings.Repeat("─", 6),
		strings.Repeat("─", 11),
		strings.Repeat("─", 11)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, account := range accounts {
		active := ""
		if account.Active {
			active = "✓"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			account.Name,
			account.SteamID,
			active,
			boolMark(account.Policy.AutoConfirmTrades),
			boolMark(account.Policy.AutoConfirmMarketTransactions)); err != nil {
			return fmt.Errorf("failed to write account row: %w", err)
		}
	}

	return nil
}

func accountsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Mark an account as the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := store.SetActiveAccount(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to set active account: %w", err)
			}

			fmt.Println(tui.StatusStyle.Render(fmt.Sprintf("Active account is now %s", args[0]))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func boolMark(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
