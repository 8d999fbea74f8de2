package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graph-cli/internal/adapters/driving/mcpserver"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve profile and mail as MCP tools over stdio",
	Long: `Serve the signed-in user's profile and mail as Model Context Protocol
tools over standard input and output. Sign in first with 'graph signin';
tools that need a new sign-in report an error instead of prompting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireGraph(); err != nil {
		return err
	}
	if toolService == nil {
		return errors.New("tool service not configured")
	}
	// stdout carries the protocol; keep logs on stderr only.
	logger.SetOutput(cmd.ErrOrStderr())
	return mcpserver.New(toolService, version).Run(commandContext(cmd))
}
