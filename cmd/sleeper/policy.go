package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/tui"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show or change per-account auto-confirmation policy",
	}

	cmd.AddCommand(policyShowCmd())
	cmd.AddCommand(policySetCmd())

	return cmd
}

func policyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Show an account's auto-confirmation flags",
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

			account, err := store.GetAccount(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load account: %w", err)
			}

			fmt.Printf("auto-confirm trades: %s\n", boolMark(account.Policy.AutoConfirmTrades))                       //nolint:forbidigo // User-facing output
			fmt.Printf("auto-confirm market transactions: %s\n", boolMark(account.Policy.AutoConfirmMarketTransactions)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func policySetCmd() *cobra.Command {
	var autoTrades, autoMarket bool

	cmd := &cobra.Command{
		Use:   "set <account>",
		Short: "Set an account's auto-confirmation flags",
		Long: `Set the per-account auto-confirmation flags. Auto-confirmed items are
accepted without review on every poll; leave these off unless you trust
every trade and listing this account makes.`,
		Args: cobra.ExactArgs(1),
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

			account, err := store.GetAccount(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load account: %w", err)
			}

			if cmd.Flags().Changed("auto-trades") {
				account.Policy.AutoConfirmTrades = autoTrades
			}
			if cmd.Flags().Changed("auto-market") {
				account.Policy.AutoConfirmMarketTransactions = autoMarket
			}

			if err := store.SaveAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to save policy: %w", err)
			}

			fmt.Println(tui.StatusStyle.Render(fmt.Sprintf("Policy updated for %s", account.Name))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoTrades, "auto-trades", false, "auto-accept trade confirmations")
	cmd.Flags().BoolVar(&autoMarket, "auto-market", false, "auto-accept market listing confirmations")

	return cmd
}
