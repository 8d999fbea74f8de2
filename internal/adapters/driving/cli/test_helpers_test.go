package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// mockGraphService implements driving.GraphService for testing.
type mockGraphService struct {
	account    *domain.Account
	signInErr  error
	signOutErr error
	userName   string
	token      string
	tokenErr   error
	profile    *domain.UserInfo
	mail       *domain.MailInfo
	claims     *domain.IDTokenClaims
	err        error

	signInCalls int
}

func (m *mockGraphService) SignIn(_ context.Context) (*domain.Account, error) {
	m.signInCalls++
	return m.account, m.signInErr
}

func (m *mockGraphService) SignOut(_ context.Context) error {
	return m.signOutErr
}

func (m *mockGraphService) UserName(_ context.Context) string {
	return m.userName
}

func (m *mockGraphService) GetToken(_ context.Context) (string, error) {
	return m.token, m.tokenErr
}

func (m *mockGraphService) GetProfile(_ context.Context) (*domain.UserInfo, error) {
	return m.profile, m.err
}

func (m *mockGraphService) GetMail(_ context.Context) (*domain.MailInfo, error) {
	return m.mail, m.err
}

func (m *mockGraphService) Claims(_ context.Context) (*domain.IDTokenClaims, error) {
	return m.claims, m.err
}

// mockSessionService implements driving.SessionService for testing.
type mockSessionService struct {
	cached      *domain.Account
	completed   *domain.Account
	completeErr error
	signInErr   error

	callbacks   []string
	signInFlows []domain.Flow
}

func (m *mockSessionService) CompleteRedirectIfPending(
	_ context.Context, callbackURL string,
) (*domain.Account, error) {
	m.callbacks = append(m.callbacks, callbackURL)
	if callbackURL == "" {
		return m.cached, nil
	}
	return m.completed, m.completeErr
}

func (m *mockSessionService) ResolveActiveAccount(_ context.Context) (*domain.Account, error) {
	return m.cached, nil
}

func (m *mockSessionService) ActiveAccount() *domain.Account {
	return m.cached
}

func (m *mockSessionService) SignIn(_ context.Context, flow domain.Flow) (*domain.Account, error) {
	m.signInFlows = append(m.signInFlows, flow)
	return nil, m.signInErr
}

func (m *mockSessionService) SignOut(_ context.Context) error {
	return nil
}

func (m *mockSessionService) AcquireToken(_ context.Context, _ []string, _ domain.Flow) (string, error) {
	return "", nil
}

func (m *mockSessionService) GetProfileToken(_ context.Context, _ domain.Flow) (string, error) {
	return "", nil
}

func (m *mockSessionService) GetMailToken(_ context.Context, _ domain.Flow) (string, error) {
	return "", nil
}

func (m *mockSessionService) GetIDToken(_ context.Context, _ domain.Flow) (string, error) {
	return "", nil
}

// cachedIdentityClient implements driven.IdentityClient over a token cache
// that already holds one signed-in account.
type cachedIdentityClient struct {
	account domain.Account
	token   string

	silentCalls      int
	interactiveCalls int
	redirectCalls    int
}

func (c *cachedIdentityClient) Accounts(_ context.Context) ([]domain.Account, error) {
	return []domain.Account{c.account}, nil
}

func (c *cachedIdentityClient) AcquireTokenSilent(
	_ context.Context, req domain.TokenRequest,
) (*domain.AuthResult, error) {
	c.silentCalls++
	if req.Account() == nil {
		return nil, domain.ErrInteractionRequired
	}
	return &domain.AuthResult{Account: c.account, AccessToken: c.token}, nil
}

func (c *cachedIdentityClient) AcquireTokenInteractive(
	_ context.Context, _ domain.TokenRequest,
) (*domain.AuthResult, error) {
	c.interactiveCalls++
	return &domain.AuthResult{Account: c.account, AccessToken: "interactive-token"}, nil
}

func (c *cachedIdentityClient) BeginRedirect(_ context.Context, _ domain.TokenRequest) (string, error) {
	c.redirectCalls++
	return "https://login.example/authorize", nil
}

func (c *cachedIdentityClient) CompleteRedirect(_ context.Context, _ string) (*domain.AuthResult, error) {
	return nil, nil
}

func (c *cachedIdentityClient) RemoveAccount(_ context.Context, _ domain.Account) error {
	return nil
}

// mockNavigator implements driven.Navigator.
type mockNavigator struct {
	opened []string
}

func (n *mockNavigator) Open(url string) error {
	n.opened = append(n.opened, url)
	return nil
}

// recordingFetcher implements driven.ResourceFetcher and records tokens.
type recordingFetcher struct {
	tokens []string
}

func (f *recordingFetcher) FetchJSON(_ context.Context, _, token string, v any) error {
	f.tokens = append(f.tokens, token)
	if info, ok := v.(*domain.UserInfo); ok {
		info.DisplayName = "Adele Vance"
	}
	return nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	cfg    *domain.Config
	setErr error
	sets   map[string]string
}

func (m *mockSettingsService) Get() (*domain.Config, error) {
	if m.cfg == nil {
		return domain.DefaultConfig(), nil
	}
	return m.cfg, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.sets == nil {
		m.sets = map[string]string{}
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) Path() string {
	return "/home/user/.graph/config.toml"
}

var testAccount = &domain.Account{
	HomeAccountID: "uid.utid",
	Username:      "adele@contoso.com",
	Name:          "Adele Vance",
}

// withServices installs services for one test and restores the previous
// ones afterwards.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	oldGraph, oldSession, oldSettings, oldTools, oldErr := graphService, sessionService, settingsService, toolService, setupErr
	t.Cleanup(func() {
		graphService, sessionService, settingsService, toolService, setupErr = oldGraph, oldSession, oldSettings, oldTools, oldErr
	})
	graphService, sessionService, settingsService, toolService, setupErr = nil, nil, nil, nil, nil
	SetServices(s)
}

// withStdin replaces standard input for one test.
func withStdin(t *testing.T, input string, terminal bool) {
	t.Helper()
	oldIn, oldTerm := stdin, stdinIsTerminal
	t.Cleanup(func() { stdin, stdinIsTerminal = oldIn, oldTerm })
	stdin = strings.NewReader(input)
	stdinIsTerminal = func() bool { return terminal }
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	err := ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so that values and
// Changed marks do not leak between executions.
func resetFlags() {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}
