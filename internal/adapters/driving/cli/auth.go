package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with your Microsoft account",
	Long: `Sign in with your Microsoft account.

By default the browser opens and the CLI waits for you on a local port.
With --redirect the browser is sent to the sign-in page and you finish by
pasting the address it lands on, either at the prompt or later with
'graph signin complete'.`,
	Example: `  graph signin
  graph signin --redirect
  graph signin --callback 'http://localhost/?code=...&state=...'`,
	Args: cobra.NoArgs,
	RunE: runSignIn,
}

var signinCompleteCmd = &cobra.Command{
	Use:   "complete [callback-url]",
	Short: "Finish a redirect sign-in",
	Long: `Finish a redirect sign-in with the URL your browser was sent to.
The URL is read from standard input when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSignInComplete,
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and remove cached tokens",
	Args:  cobra.NoArgs,
	RunE:  runSignOut,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// Flags for signin and whoami.
var (
	signinRedirect bool
	signinCallback string
	whoamiClaims   bool
)

// stdin and stdinIsTerminal are replaced in tests.
var (
	stdin           io.Reader = os.Stdin
	stdinIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

func init() {
	signinCmd.Flags().BoolVar(&signinRedirect, "redirect", false, "use the redirect flow instead of waiting on a local port")
	signinCmd.Flags().StringVar(&signinCallback, "callback", "", "complete a pending redirect with this URL")
	signinCmd.AddCommand(signinCompleteCmd)
	rootCmd.AddCommand(signinCmd)

	rootCmd.AddCommand(signoutCmd)

	whoamiCmd.Flags().BoolVar(&whoamiClaims, "claims", false, "show claims from the ID token")
	rootCmd.AddCommand(whoamiCmd)
}

func runSignIn(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if signinCallback != "" {
		return completeSignIn(cmd, signinCallback)
	}

	var (
		account *domain.Account
		err     error
	)
	if signinRedirect {
		account, err = sessionService.CompleteRedirectIfPending(ctx, "")
		if err == nil && account == nil {
			account, err = sessionService.SignIn(ctx, domain.FlowRedirect)
		}
	} else {
		account, err = graphService.SignIn(ctx)
	}

	if errors.Is(err, domain.ErrRedirectPending) {
		return awaitRedirect(cmd, err)
	}
	if err != nil {
		return withHint(err)
	}
	printSignedIn(cmd, account)
	return nil
}

// awaitRedirect prompts for the callback URL when attached to a terminal.
// Otherwise it leaves the redirect pending for 'graph signin complete'.
func awaitRedirect(cmd *cobra.Command, pending error) error {
	if !stdinIsTerminal() {
		return withHint(pending)
	}

	cmd.Printf("Paste the address your browser was sent to (expires in %s):\n> ",
		domain.RedirectTTL.Round(time.Minute))
	line, err := readLine(stdin)
	if err != nil {
		return fmt.Errorf("read callback URL: %w", err)
	}
	if line == "" {
		return withHint(pending)
	}
	return completeSignIn(cmd, line)
}

func runSignInComplete(cmd *cobra.Command, args []string) error {
	if err := requireGraph(); err != nil {
		return err
	}

	callback := ""
	if len(args) == 1 {
		callback = args[0]
	} else {
		line, err := readLine(stdin)
		if err != nil {
			return fmt.Errorf("read callback URL: %w", err)
		}
		callback = line
	}
	if callback == "" {
		return fmt.Errorf("%w: callback URL is required", domain.ErrInvalidInput)
	}
	return completeSignIn(cmd, callback)
}

func completeSignIn(cmd *cobra.Command, callback string) error {
	account, err := sessionService.CompleteRedirectIfPending(commandContext(cmd), callback)
	if err != nil {
		return withHint(err)
	}
	if account == nil {
		return withHint(domain.ErrNoAccount)
	}
	printSignedIn(cmd, account)
	return nil
}

func printSignedIn(cmd *cobra.Command, account *domain.Account) {
	cmd.Println(okStyle.Render("Signed in as " + account.Username))
}

func runSignOut(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}

	err := graphService.SignOut(commandContext(cmd))
	if errors.Is(err, domain.ErrNoAccount) {
		cmd.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	name := graphService.UserName(ctx)
	if name == "" {
		cmd.Println("Not signed in.")
		return nil
	}
	cmd.Println(titleStyle.Render(name))

	if !whoamiClaims {
		return nil
	}
	claims, err := graphService.Claims(ctx)
	if err != nil {
		return withHint(err)
	}
	cmd.Println(renderFields([]field{
		{"Name", claims.Name},
		{"Username", claims.PreferredUsername},
		{"Object ID", claims.ObjectID},
		{"Tenant ID", claims.TenantID},
		{"Issuer", claims.Issuer},
		{"Audience", strings.Join(claims.Audience, ", ")},
		{"Issued", formatTime(claims.IssuedAt)},
		{"Expires", formatTime(claims.ExpiresAt)},
	}))
	return nil
}

// readLine reads one trimmed line from r.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC1123)
}
