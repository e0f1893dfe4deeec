package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
)

const accountColumns = `id, name, steam_id, device_id, access_token, refresh_token,
	token_expiry, session_id, auto_confirm_trades, auto_confirm_market, active, last_updated`

// ListAccounts returns all accounts in insertion order so poll cycles are
// deterministic.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM accounts ORDER BY rowid", accountColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns the account with the given name.
func (s *SQLiteStorage) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM accounts WHERE name = ?", accountColumns), name)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrAccountNotFound, name)
	}
	return account, err
}

// SaveAccount inserts or updates an account and its session.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account cannot be nil")
	}
	if err := validateString(account.ID, "account.ID"); err != nil {
		return err
	}
	if err := validateString(account.Name, "account.Name"); err != nil {
		return err
	}

	var expiry any
	if !account.Session.Token.Expiry.IsZero() {
		expiry = account.Session.Token.Expiry
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, steam_id, device_id, access_token, refresh_token,
			token_expiry, session_id, auto_confirm_trades, auto_confirm_market, active, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			steam_id = excluded.steam_id,
			device_id = excluded.device_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expiry = excluded.token_expiry,
			session_id = excluded.session_id,
			auto_confirm_trades = excluded.auto_confirm_trades,
			auto_confirm_market = excluded.auto_confirm_market,
			last_updated = excluded.last_updated`,
		account.ID,
		account.Name,
		account.SteamID,
		account.DeviceID,
		account.Session.Token.AccessToken,
		account.Session.Token.RefreshToken,
		expiry,
		account.Session.SessionID,
		account.Policy.AutoConfirmTrades,
		account.Policy.AutoConfirmMarketTransactions,
		account.Active,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.Name, err)
	}
	return nil
}

// ActiveAccount returns the account currently marked active.
func (s *SQLiteStorage) ActiveAccount(ctx context.Context) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM accounts WHERE active = 1 ORDER BY rowid LIMIT 1", accountColumns))

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoActiveAccount
	}
	return account, err
}

// SetActiveAccount marks the named account active and clears the flag on
// every other account.
func (s *SQLiteStorage) SetActiveAccount(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "UPDATE accounts SET active = 0"); err != nil {
		return fmt.Errorf("failed to clear active flags: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE accounts SET active = 1 WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to set active account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check active update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrAccountNotFound, name)
	}

	return tx.Commit()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*model.Account, error) {
	var account model.Account
	var steamID, deviceID, accessToken, refreshToken, sessionID sql.NullString
	var expiry sql.NullTime
	var lastUpdated sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.Name,
		&steamID,
		&deviceID,
		&accessToken,
		&refreshToken,
		&expiry,
		&sessionID,
		&account.Policy.AutoConfirmTrades,
		&account.Policy.AutoConfirmMarketTransactions,
		&account.Active,
		&lastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	account.SteamID = steamID.String
	account.DeviceID = deviceID.String
	account.Session.Token.AccessToken = accessToken.String
	account.Session.Token.RefreshToken = refreshToken.String
	account.Session.SessionID = sessionID.String
	if expiry.Valid {
		account.Session.Token.Expiry = expiry.Time
	}
	if lastUpdated.Valid {
		account.LastUpdated = lastUpdated.Time
	}
	return &account, nil
}
