package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graph-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your Microsoft Graph profile",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "List your most recent messages",
	Long: `List your most recent messages.
With --browse the messages open in a full-screen browser where you can
read previews and refresh.`,
	Args: cobra.NoArgs,
	RunE: runMail,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for Microsoft Graph",
	Long: `Print an access token for the profile endpoint to standard output.
The token is acquired silently when possible.`,
	Example: `  curl -H "Authorization: Bearer $(graph token)" https://graph.microsoft.com/v1.0/me`,
	Args:    cobra.NoArgs,
	RunE:    runToken,
}

// Flags for profile and mail.
var (
	profileJSON bool
	mailJSON    bool
	mailBrowse  bool
)

// runInbox is replaced in tests.
var runInbox = tui.RunInbox

func init() {
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "print the raw profile as JSON")
	rootCmd.AddCommand(profileCmd)

	mailCmd.Flags().BoolVar(&mailJSON, "json", false, "print the raw messages as JSON")
	mailCmd.Flags().BoolVar(&mailBrowse, "browse", false, "browse messages in a full-screen view")
	mailCmd.MarkFlagsMutuallyExclusive("json", "browse")
	rootCmd.AddCommand(mailCmd)

	rootCmd.AddCommand(tokenCmd)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}

	info, err := graphService.GetProfile(commandContext(cmd))
	if err != nil {
		return withHint(err)
	}

	out := cmd.OutOrStdout()
	if profileJSON {
		return writeJSON(out, info)
	}
	_, err = fmt.Fprintln(out, renderFields([]field{
		{"Name", info.DisplayName},
		{"Email", info.GetUserEmail()},
		{"Job title", info.JobTitle},
		{"Office", info.OfficeLocation},
		{"Mobile", info.MobilePhone},
		{"Phone", strings.Join(info.BusinessPhones, ", ")},
		{"Language", info.PreferredLanguage},
		{"ID", info.ID},
	}))
	return err
}

func runMail(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}

	mail, err := graphService.GetMail(commandContext(cmd))
	if err != nil {
		return withHint(err)
	}

	out := cmd.OutOrStdout()
	if mailJSON {
		return writeJSON(out, mail)
	}
	if mailBrowse {
		return runInbox(commandContext(cmd), graphService, mail, tui.Options{
			Input:  cmd.InOrStdin(),
			Output: out,
		})
	}
	if len(mail.Value) == 0 {
		cmd.Println("No messages.")
		return nil
	}

	rows := make([][]string, 0, len(mail.Value))
	for i := range mail.Value {
		m := &mail.Value[i]
		rows = append(rows, []string{
			formatReceived(m.ReceivedDateTime),
			truncate(m.Sender(), 32),
			truncate(m.Subject, 60),
			unreadMarker(m.IsRead),
		})
	}
	_, err = fmt.Fprintln(out, renderTable([]string{"Received", "From", "Subject", ""}, rows))
	return err
}

func runToken(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}

	token, err := graphService.GetToken(commandContext(cmd))
	if err != nil {
		return withHint(err)
	}
	if token == "" {
		return fmt.Errorf("%w: failed to acquire profile token", domain.ErrTokenAcquisition)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}

// formatReceived renders a Graph timestamp in local time.
func formatReceived(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}

func unreadMarker(read bool) string {
	if read {
		return ""
	}
	return "●"
}
