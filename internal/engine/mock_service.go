package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
)

// MockConfirmationService is a test implementation of the confirmation
// service with scriptable per-account results and call recording.
type MockConfirmationService struct {
	mu sync.Mutex

	// Confirmations maps account ID to the items returned by
	// ListConfirmations.
	Confirmations map[string][]model.ConfirmationItem
	// ListErr, when set, fails every ListConfirmations call.
	ListErr error
	// ActionOK is the result of Accept/Deny calls; defaults to true via
	// NewMockConfirmationService.
	ActionOK bool
	// ActionErr, when set, fails every Accept/Deny call.
	ActionErr error
	// RefreshErr, when set, fails every RefreshAccessToken call.
	RefreshErr error

	listCalls    []string
	acceptCalls  []string
	denyCalls    []string
	refreshCalls []string
}

// NewMockConfirmationService creates a mock that succeeds by default.
func NewMockConfirmationService() *MockConfirmationService {
	return &MockConfirmationService{
		Confirmations: make(map[string][]model.ConfirmationItem),
		ActionOK:      true,
	}
}

// ListConfirmations returns the scripted items for the account.
func (m *MockConfirmationService) ListConfirmations(_ context.Context, account *model.Account) ([]model.ConfirmationItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, account.ID)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	items := make([]model.ConfirmationItem, len(m.Confirmations[account.ID]))
	copy(items, m.Confirmations[account.ID])
	return items, nil
}

// Accept records the call and returns the scripted result.
func (m *MockConfirmationService) Accept(_ context.Context, _ *model.Account, item model.ConfirmationItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptCalls = append(m.acceptCalls, item.ID)
	return m.ActionOK, m.ActionErr
}

// Deny records the call and returns the scripted result.
func (m *MockConfirmationService) Deny(_ context.Context, _ *model.Account, item model.ConfirmationItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denyCalls = append(m.denyCalls, item.ID)
	return m.ActionOK, m.ActionErr
}

// RefreshAccessToken records the call and returns the scripted error.
func (m *MockConfirmationService) RefreshAccessToken(_ context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls = append(m.refreshCalls, account.ID)
	return m.RefreshErr
}

// ListCalls returns the account IDs passed to ListConfirmations.
func (m *MockConfirmationService) ListCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.listCalls...)
}

// AcceptCalls returns the item IDs passed to Accept.
func (m *MockConfirmationService) AcceptCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acceptCalls...)
}

// DenyCalls returns the item IDs passed to Deny.
func (m *MockConfirmationService) DenyCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.denyCalls...)
}

// RefreshCalls returns the account IDs passed to RefreshAccessToken.
func (m *MockConfirmationService) RefreshCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.refreshCalls...)
}

// MockGuard is a scriptable session guard.
type MockGuard struct {
	mu sync.Mutex

	// Statuses maps account ID to the returned status; missing accounts
	// are Ready.
	Statuses map[string]session.Status

	calls []string
}

// NewMockGuard creates a guard that reports every session as ready.
func NewMockGuard() *MockGuard {
	return &MockGuard{Statuses: make(map[string]session.Status)}
}

// EnsureUsable returns the scripted status with the matching sentinel
// error, mirroring the real guard's contract.
func (m *MockGuard) EnsureUsable(_ context.Context, account *model.Account) (session.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, account.ID)

	status := m.Statuses[account.ID]
	switch status {
	case session.StatusNeedsUserLogin:
		return status, common.ErrCredentialExpired
	case session.StatusRefreshFailed:
		return status, common.ErrCredentialRefresh
	default:
		return session.StatusReady, nil
	}
}

// Calls returns the account IDs checked so far.
func (m *MockGuard) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockAccountStore is an in-memory account store preserving insertion
// order for deterministic polls.
type MockAccountStore struct {
	mu       sync.Mutex
	accounts []model.Account
	active   string
}

// NewMockAccountStore creates a store seeded with the given accounts. The
// first account marked Active becomes the active one.
func NewMockAccountStore(accounts ...model.Account) *MockAccountStore {
	store := &MockAccountStore{accounts: accounts}
	for _, account := range accounts {
		if account.Active {
			store.active = account.Name
			break
		}
	}
	return store
}

// ListAccounts returns accounts in insertion order.
func (m *MockAccountStore) ListAccounts(_ context.Context) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Account(nil), m.accounts...), nil
}

// GetAccount returns the account with the given name.
func (m *MockAccountStore) GetAccount(_ context.Context, name string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Name == name {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrAccountNotFound
}

// SaveAccount inserts or updates an account.
func (m *MockAccountStore) SaveAccount(_ context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Name == account.Name {
			m.accounts[i] = *account
			return nil
		}
	}
	m.accounts = append(m.accounts, *account)
	return nil
}

// ActiveAccount returns the currently active account.
func (m *MockAccountStore) ActiveAccount(_ context.Context) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Name == m.active {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrNoActiveAccount
}

// SetActiveAccount marks the named account active.
func (m *MockAccountStore) SetActiveAccount(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].Name == name {
			m.active = name
			return nil
		}
	}
	return common.ErrAccountNotFound
}

// Migrate is a no-op for the in-memory store.
func (m *MockAccountStore) Migrate(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MockAccountStore) Close() error { return nil }
