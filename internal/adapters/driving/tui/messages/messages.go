// Package messages defines the tea.Msg types passed between TUI views.
package messages

import "github.com/custodia-labs/graph-cli/internal/core/domain"

// MailLoaded carries the result of a mail fetch.
type MailLoaded struct {
	Mail *domain.MailInfo
	Err  error
}

// ErrorOccurred reports an error that is not tied to a fetch.
type ErrorOccurred struct {
	Err error
}
