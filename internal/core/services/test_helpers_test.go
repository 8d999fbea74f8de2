package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// mockIdentityClient implements driven.IdentityClient for testing.
// Every call is recorded so tests can assert which paths were taken.
type mockIdentityClient struct {
	mu sync.Mutex

	accounts      []domain.Account
	accountsErr   error
	accountsCalls int

	silentResult *domain.AuthResult
	silentErr    error

	interactiveResult *domain.AuthResult
	interactiveErr    error
	// interactiveGate, when set, blocks interactive calls until closed.
	interactiveGate chan struct{}

	redirectURL string
	redirectErr error

	completeResult *domain.AuthResult
	completeErr    error

	removeErr error

	silentCalls      []domain.TokenRequest
	interactiveCalls []domain.TokenRequest
	redirectCalls    []domain.TokenRequest
	completeCalls    []string
	removed          []domain.Account
}

func (m *mockIdentityClient) Accounts(_ context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountsCalls++
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	return append([]domain.Account(nil), m.accounts...), nil
}

func (m *mockIdentityClient) AcquireTokenSilent(
	_ context.Context, req domain.TokenRequest,
) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silentCalls = append(m.silentCalls, req)
	if m.silentErr != nil {
		return nil, m.silentErr
	}
	return m.silentResult, nil
}

func (m *mockIdentityClient) AcquireTokenInteractive(
	_ context.Context, req domain.TokenRequest,
) (*domain.AuthResult, error) {
	m.mu.Lock()
	m.interactiveCalls = append(m.interactiveCalls, req)
	gate := m.interactiveGate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if m.interactiveErr != nil {
		return nil, m.interactiveErr
	}
	return m.interactiveResult, nil
}

func (m *mockIdentityClient) BeginRedirect(_ context.Context, req domain.TokenRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirectCalls = append(m.redirectCalls, req)
	if m.redirectErr != nil {
		return "", m.redirectErr
	}
	return m.redirectURL, nil
}

func (m *mockIdentityClient) CompleteRedirect(_ context.Context, callbackURL string) (*domain.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCalls = append(m.completeCalls, callbackURL)
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return m.completeResult, nil
}

func (m *mockIdentityClient) RemoveAccount(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, account)
	kept := m.accounts[:0]
	for _, a := range m.accounts {
		if a.HomeAccountID != account.HomeAccountID {
			kept = append(kept, a)
		}
	}
	m.accounts = kept
	return nil
}

func (m *mockIdentityClient) interactiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.interactiveCalls)
}

// mockNavigator implements driven.Navigator for testing.
type mockNavigator struct {
	opened []string
	err    error
}

func (m *mockNavigator) Open(url string) error {
	if m.err != nil {
		return m.err
	}
	m.opened = append(m.opened, url)
	return nil
}

// mockFetcher implements driven.ResourceFetcher for testing.
type mockFetcher struct {
	calls []fetchCall
	err   error
	// respond fills v for a successful call.
	respond func(url string, v any)
}

type fetchCall struct {
	url   string
	token string
}

func (m *mockFetcher) FetchJSON(_ context.Context, url, token string, v any) error {
	m.calls = append(m.calls, fetchCall{url: url, token: token})
	if m.err != nil {
		return m.err
	}
	if m.respond != nil {
		m.respond(url, v)
	}
	return nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	cfg     *domain.Config
	loadErr error
	saveErr error
	saved   *domain.Config
}

func (m *mockConfigStore) Load() (*domain.Config, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cfg == nil {
		return domain.DefaultConfig(), nil
	}
	cfg := *m.cfg
	return &cfg, nil
}

func (m *mockConfigStore) Save(cfg *domain.Config) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	saved := *cfg
	m.saved = &saved
	m.cfg = &saved
	return nil
}

func (m *mockConfigStore) Path() string {
	return "/tmp/graph/config.toml"
}

var testAccount = domain.Account{
	HomeAccountID: "uid.utid",
	Username:      "adele@contoso.com",
	Name:          "Adele Vance",
	TenantID:      "utid",
}
