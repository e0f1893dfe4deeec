// Package mafile reads Steam Desktop Authenticator account files
// (maFiles) and their manifest for import into the account store.
package mafile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/google/uuid"
)

// Manifest mirrors the manifest.json that indexes a maFile directory.
type Manifest struct {
	Encrypted                     bool            `json:"encrypted"`
	Entries                       []ManifestEntry `json:"entries"`
	AutoConfirmMarketTransactions bool            `json:"auto_confirm_market_transactions"`
	AutoConfirmTrades             bool            `json:"auto_confirm_trades"`
	CheckAllAccounts              bool            `json:"check_all_accounts"`
	PeriodicCheckingInterval      int             `json:"periodic_checking_interval"`
}

// ManifestEntry points at one account file.
type ManifestEntry struct {
	Filename string `json:"filename"`
	SteamID  uint64 `json:"steamid"`
}

// maFile is the on-disk account format. Secret material is deliberately
// not mapped: code generation and key derivation live in an external
// collaborator, and importing secrets here would only leak them into the
// store.
type maFile struct {
	AccountName string `json:"account_name"`
	DeviceID    string `json:"device_id"`
	Session     struct {
		SessionID    string `json:"SessionID"`
		AccessToken  string `json:"AccessToken"`
		RefreshToken string `json:"RefreshToken"`
		SteamID      uint64 `json:"SteamID"`
	} `json:"Session"`
}

// LoadManifest reads a manifest.json. Encrypted manifests are rejected:
// credential decryption belongs to the external storage collaborator.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Encrypted {
		return nil, fmt.Errorf("encrypted manifests are not supported; decrypt with the authenticator first")
	}
	return &manifest, nil
}

// LoadAccount reads one maFile into an account.
func LoadAccount(path string) (*model.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read maFile: %w", err)
	}

	var file maFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse maFile %s: %w", filepath.Base(path), err)
	}
	if file.AccountName == "" {
		return nil, fmt.Errorf("maFile %s has no account name", filepath.Base(path))
	}

	account := &model.Account{
		Name:        file.AccountName,
		DeviceID:    file.DeviceID,
		LastUpdated: time.Now(),
	}

	if file.Session.SteamID != 0 {
		account.SteamID = strconv.FormatUint(file.Session.SteamID, 10)
		account.ID = account.SteamID
	} else {
		account.ID = uuid.NewString()
	}

	account.Session.SessionID = file.Session.SessionID
	account.Session.Token.AccessToken = file.Session.AccessToken
	account.Session.Token.RefreshToken = file.Session.RefreshToken

	return account, nil
}

// FindAccountFiles returns the maFile paths under dir, preferring the
// manifest's entry order when a manifest is present and falling back to a
// directory glob otherwise.
func FindAccountFiles(dir string) ([]string, error) {
	manifestPath := filepath.Join(dir, "manifest.json")
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, loadErr := LoadManifest(manifestPath)
		if loadErr != nil {
			return nil, loadErr
		}
		paths := make([]string, 0, len(manifest.Entries))
		for _, entry := range manifest.Entries {
			paths = append(paths, filepath.Join(dir, entry.Filename))
		}
		return paths, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.maFile"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no maFiles found in %s", dir)
	}
	return paths, nil
}
