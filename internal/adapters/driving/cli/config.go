package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Long: `Show the effective settings. Values from GRAPH_CLIENT_ID, GRAPH_AUTHORITY
and GRAPH_REDIRECT_URI override the file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  graph config set client_id 11111111-2222-3333-4444-555555555555
  graph config set authority https://login.microsoftonline.com/contoso.onmicrosoft.com
  graph config set prefer_redirect_flow true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return err
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = mutedStyle.Render("(not set)")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, [][]string{
		{"client_id", clientID},
		{"authority", cfg.Authority},
		{"redirect_uri", cfg.RedirectURI},
		{"cache_location", string(cfg.CacheLocation)},
		{"persist_across_sessions", strconv.FormatBool(cfg.PersistAcrossSessions)},
		{"prefer_redirect_flow", strconv.FormatBool(cfg.PreferRedirectFlow)},
		{"graph_base_url", cfg.GraphBaseURL},
	}))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		cmd.Println(mutedStyle.Render(err.Error()))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), settingsService.Path())
	return err
}
