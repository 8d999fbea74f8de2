package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// Services holds injected service implementations for CLI commands.
	graphService    driving.GraphService
	sessionService  driving.SessionService
	settingsService driving.SettingsService

	// toolService backs MCP tools and never prompts.
	toolService driving.GraphService

	// setupErr explains why the Graph services could not be built.
	setupErr error
)

// Services holds configuration for CLI commands.
type Services struct {
	Graph    driving.GraphService
	Session  driving.SessionService
	Settings driving.SettingsService

	// Tools serves MCP tool calls. It must acquire tokens silently only.
	Tools driving.GraphService

	// SetupErr is reported by commands that need Graph or Session when
	// those could not be constructed, usually because client_id is unset.
	SetupErr error
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	graphService = s.Graph
	sessionService = s.Session
	settingsService = s.Settings
	toolService = s.Tools
	setupErr = s.SetupErr
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "graph",
	Short: "Read your Microsoft Graph profile and mail from the terminal",
	Long: `Graph signs you in with the Microsoft identity platform and reads your
profile and mail from Microsoft Graph.

Tokens are acquired silently when possible; the browser is opened only
when you need to sign in or consent.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requireGraph returns an error when the Graph services are unavailable.
func requireGraph() error {
	if setupErr != nil {
		return withHint(setupErr)
	}
	if graphService == nil || sessionService == nil {
		return errors.New("graph service not configured")
	}
	return nil
}

// withHint appends the next step a user can take to err.
func withHint(err error) error {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return fmt.Errorf("%w\nSet your application ID with 'graph config set client_id <id>'", err)
	case errors.Is(err, domain.ErrRedirectPending):
		return fmt.Errorf("%w\nAfter signing in, run 'graph signin complete <url>' with the URL your browser landed on", err)
	case errors.Is(err, domain.ErrNoAccount):
		return fmt.Errorf("%w\nRun 'graph signin' first", err)
	case errors.Is(err, domain.ErrRedirectState):
		return fmt.Errorf("%w\nStart again with 'graph signin --redirect'", err)
	default:
		return err
	}
}
