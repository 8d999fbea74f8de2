// Package tui provides the full-screen mail browser.
package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/graph-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/graph-cli/internal/adapters/driving/tui/views/inbox"
	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
)

// Options configures the program's terminal.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// RunInbox shows mail in a full-screen browser until the user quits.
// Mail is the first page, fetched before the terminal is taken over so that
// any sign-in prompt happens on the normal screen.
func RunInbox(ctx context.Context, graph driving.GraphService, mail *domain.MailInfo, opts Options) error {
	view := inbox.NewView(ctx, styles.DefaultStyles(), graph, mail)

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	_, err := tea.NewProgram(view, programOpts...).Run()
	return err
}
