package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/mafile"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/tui"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import accounts from maFiles",
		Long: `Import Steam Desktop Authenticator account files into the store. The path
may be a single maFile or a directory; directories are read through their
manifest.json when present. Encrypted manifests are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close account store", "error", closeErr)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var paths []string
	var manifest *mafile.Manifest
	if info.IsDir() {
		paths, err = mafile.FindAccountFiles(path)
		if err != nil {
			return err
		}
		if manifestPath := filepath.Join(path, "manifest.json"); fileExists(manifestPath) {
			manifest, err = mafile.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
		}
	} else {
		paths = []string{path}
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing accounts..."),
	)

	imported := 0
	for _, accountPath := range paths {
		account, loadErr := mafile.LoadAccount(accountPath)
		if loadErr != nil {
			slog.Warn("Skipping account file",
				"path", accountPath,
				"error", loadErr)
			_ = bar.Add(1)
			continue
		}

		// Carry the manifest's auto-confirm flags onto each imported
		// account; they become per-account policy here.
		if manifest != nil {
			account.Policy.AutoConfirmTrades = manifest.AutoConfirmTrades
			account.Policy.AutoConfirmMarketTransactions = manifest.AutoConfirmMarketTransactions
		}

		if saveErr := store.SaveAccount(ctx, account); saveErr != nil {
			slog.Warn("Failed to save imported account",
				"account", account.Name,
				"error", saveErr)
			_ = bar.Add(1)
			continue
		}

		imported++
		_ = bar.Add(1)
	}

	fmt.Println() //nolint:forbidigo // User-facing output
	fmt.Println(tui.StatusStyle.Render(fmt.Sprintf("Imported %d of %d accounts", imported, len(paths)))) //nolint:forbidigo // User-facing output

	// Make the first imported account active if nothing is yet.
	if imported > 0 {
		if _, activeErr := store.ActiveAccount(ctx); activeErr != nil {
			accounts, listErr := store.ListAccounts(ctx)
			if listErr == nil && len(accounts) > 0 {
				if setErr := store.SetActiveAccount(ctx, accounts[0].Name); setErr == nil {
					fmt.Println(tui.HintStyle.Render(fmt.Sprintf("Active account set to %s", accounts[0].Name))) //nolint:forbidigo // User-facing output
				}
			}
		}
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
