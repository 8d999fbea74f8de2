// Package browser opens URLs in the user's web browser.
package browser

import (
	"fmt"
	"io"

	"github.com/pkg/browser"

	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Ensure Navigator implements the interface.
var _ driven.Navigator = (*Navigator)(nil)

// Navigator opens URLs with the system browser and always prints the URL
// so it can be opened by hand when no browser is available.
type Navigator struct {
	out  io.Writer
	open func(url string) error
}

// NewNavigator creates a Navigator that prints to out.
func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out, open: browser.OpenURL}
}

// Open prints url and tries to open it. A browser that cannot be launched
// is not an error; the printed URL is enough to continue.
func (n *Navigator) Open(url string) error {
	if _, err := fmt.Fprintf(n.out, "Opening your browser to sign in. If it does not open, visit:\n\n  %s\n\n", url); err != nil {
		return err
	}
	if err := n.open(url); err != nil {
		logger.Warn("could not open browser: %v", err)
	}
	return nil
}
