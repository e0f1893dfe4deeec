package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/storage"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetAccount(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	account := model.Account{
		ID:       "id-1",
		Name:     "alice",
		SteamID:  "76561198000000001",
		DeviceID: "android:device",
		Policy: model.AccountPolicy{
			AutoConfirmTrades: true,
		},
	}
	account.Session.SessionID = "sess-1"
	account.Session.Token.AccessToken = "access"
	account.Session.Token.RefreshToken = "refresh"
	account.Session.Token.Expiry = time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, store.SaveAccount(ctx, &account))

	got, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, account.SteamID, got.SteamID)
	assert.Equal(t, account.DeviceID, got.DeviceID)
	assert.Equal(t, "sess-1", got.Session.SessionID)
	assert.Equal(t, "access", got.Session.Token.AccessToken)
	assert.Equal(t, "refresh", got.Session.Token.RefreshToken)
	assert.True(t, account.Session.Token.Expiry.Equal(got.Session.Token.Expiry))
	assert.True(t, got.Policy.AutoConfirmTrades)
	assert.False(t, got.Policy.AutoConfirmMarketTransactions)
	assert.False(t, got.LastUpdated.IsZero())
}

func TestSaveAccountUpserts(t *testing.T) {
	store := testutil.SetupTestStore(t, testutil.TestAccount("alice"))
	ctx := context.Background()

	account, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)

	account.Policy.AutoConfirmMarketTransactions = true
	account.Session.Token.AccessToken = "rotated"
	require.NoError(t, store.SaveAccount(ctx, account))

	got, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Policy.AutoConfirmMarketTransactions)
	assert.Equal(t, "rotated", got.Session.Token.AccessToken)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1, "save by existing ID must not create a row")
}

func TestGetAccountNotFound(t *testing.T) {
	store := testutil.SetupTestStore(t)

	_, err := store.GetAccount(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestSaveAccountValidation(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveAccount(ctx, nil))
	assert.Error(t, store.SaveAccount(ctx, &model.Account{Name: "no-id"}))
	assert.Error(t, store.SaveAccount(ctx, &model.Account{ID: "no-name"}))
}

func TestListAccountsPreservesInsertionOrder(t *testing.T) {
	store := testutil.SetupTestStore(t,
		testutil.TestAccount("charlie"),
		testutil.TestAccount("alice"),
		testutil.TestAccount("bob"),
	)

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	names := []string{accounts[0].Name, accounts[1].Name, accounts[2].Name}
	assert.Equal(t, []string{"charlie", "alice", "bob"}, names)
}

func TestActiveAccountLifecycle(t *testing.T) {
	store := testutil.SetupTestStore(t,
		testutil.TestAccount("alice"),
		testutil.TestAccount("bob"),
	)
	ctx := context.Background()

	_, err := store.ActiveAccount(ctx)
	assert.ErrorIs(t, err, common.ErrNoActiveAccount)

	require.NoError(t, store.SetActiveAccount(ctx, "alice"))
	active, err := store.ActiveAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", active.Name)

	// Switching moves the flag; exactly one account is ever active.
	require.NoError(t, store.SetActiveAccount(ctx, "bob"))
	active, err = store.ActiveAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", active.Name)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, account := range accounts {
		if account.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestSetActiveAccountUnknownName(t *testing.T) {
	store := testutil.SetupTestStore(t, testutil.TestAccount("alice"))
	ctx := context.Background()
	require.NoError(t, store.SetActiveAccount(ctx, "alice"))

	err := store.SetActiveAccount(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrAccountNotFound)

	// The failed switch must not have cleared the existing flag.
	active, err := store.ActiveAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", active.Name)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "second migrate is a no-op")

	account := testutil.TestAccount("alice")
	require.NoError(t, store.SaveAccount(ctx, &account))
}
