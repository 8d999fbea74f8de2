// Package inbox implements the message list and preview view.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/graph-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/graph-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
)

// Mode is what the view is showing.
type Mode int

const (
	// ModeList shows the message list.
	ModeList Mode = iota
	// ModePreview shows one message.
	ModePreview
)

// chrome is the number of lines used by the title and help.
const chrome = 4

// View is the inbox bubbletea model.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	graph  driving.GraphService

	mail     []domain.MailItem
	selected int
	mode     Mode
	loading  bool
	err      error

	spinner spinner.Model
	preview viewport.Model
	width   int
	height  int
	ready   bool
}

// NewView creates the inbox. initial is shown without a fetch when set.
func NewView(ctx context.Context, s *styles.Styles, graph driving.GraphService, initial *domain.MailInfo) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &View{
		ctx:     ctx,
		styles:  s,
		graph:   graph,
		spinner: sp,
		preview: viewport.New(80, 20),
	}
	if initial != nil {
		v.mail = initial.Value
	} else {
		v.loading = true
	}
	return v
}

// Init fetches mail unless it was provided.
func (v *View) Init() tea.Cmd {
	if !v.loading {
		return nil
	}
	return tea.Batch(v.spinner.Tick, v.loadMail())
}

// loadMail returns a command that fetches the first page of mail.
func (v *View) loadMail() tea.Cmd {
	return func() tea.Msg {
		if v.graph == nil {
			return messages.ErrorOccurred{Err: errors.New("graph service not configured")}
		}
		mail, err := v.graph.GetMail(v.ctx)
		return messages.MailLoaded{Mail: mail, Err: err}
	}
}

// Update handles messages.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.preview.Width = msg.Width
		v.preview.Height = max(msg.Height-chrome, 1)
		v.ready = true
		return v, nil

	case messages.MailLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil && msg.Mail != nil {
			v.mail = msg.Mail.Value
			v.selected = min(v.selected, max(len(v.mail)-1, 0))
		}
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return v, tea.Quit
	}

	if v.mode == ModePreview {
		switch key {
		case "esc", "backspace", "h":
			v.mode = ModeList
			return v, nil
		case "q":
			return v, tea.Quit
		}
		var cmd tea.Cmd
		v.preview, cmd = v.preview.Update(msg)
		return v, cmd
	}

	switch key {
	case "q", "esc":
		return v, tea.Quit
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.mail)-1 {
			v.selected++
		}
	case "enter", "l":
		if len(v.mail) > 0 {
			v.mode = ModePreview
			v.preview.SetContent(v.renderMessage(&v.mail[v.selected]))
			v.preview.GotoTop()
		}
	case "r":
		if !v.loading {
			v.loading = true
			v.err = nil
			return v, tea.Batch(v.spinner.Tick, v.loadMail())
		}
	}
	return v, nil
}

// View renders the current mode.
func (v *View) View() string {
	if v.mode == ModePreview {
		return v.preview.View() + "\n" + v.styles.Help.Render("esc back • ↑/↓ scroll • q quit")
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Inbox"))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.spinner.View() + " Loading mail...\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(v.err.Error()) + "\n")
	case len(v.mail) == 0:
		b.WriteString(v.styles.Muted.Render("No messages.") + "\n")
	default:
		v.renderList(&b)
	}

	b.WriteString(v.styles.Help.Render("↑/↓ move • enter open • r refresh • q quit"))
	return b.String()
}

func (v *View) renderList(b *strings.Builder) {
	start, end := v.window()
	for i := start; i < end; i++ {
		m := &v.mail[i]
		marker := "  "
		if !m.IsRead {
			marker = v.styles.Unread.Render("● ")
		}
		line := fmt.Sprintf("%-16s  %-24s  %s",
			receivedShort(m.ReceivedDateTime), clip(m.Sender(), 24), clip(m.Subject, v.subjectWidth()))
		style := v.styles.Normal
		if i == v.selected {
			style = v.styles.Selected
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(marker + style.Render(line) + "\n")
	}
}

// window returns the slice of messages that fits on screen around the
// selection.
func (v *View) window() (int, int) {
	rows := len(v.mail)
	if v.ready {
		rows = max(v.height-chrome, 1)
	}
	if rows >= len(v.mail) {
		return 0, len(v.mail)
	}
	start := max(v.selected-rows+1, 0)
	return start, start + rows
}

func (v *View) subjectWidth() int {
	if v.width == 0 {
		return 60
	}
	return max(v.width-50, 10)
}

func (v *View) renderMessage(m *domain.MailItem) string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(m.Subject))
	b.WriteString("\n")
	fmt.Fprintf(&b, "From:     %s\n", m.Sender())
	fmt.Fprintf(&b, "Received: %s\n", receivedLong(m.ReceivedDateTime))
	if m.WebLink != "" {
		fmt.Fprintf(&b, "Link:     %s\n", v.styles.Muted.Render(m.WebLink))
	}
	b.WriteString("\n")
	b.WriteString(m.BodyPreview)
	return b.String()
}

// Selected returns the highlighted message, or nil.
func (v *View) Selected() *domain.MailItem {
	if v.selected < 0 || v.selected >= len(v.mail) {
		return nil
	}
	return &v.mail[v.selected]
}

func receivedShort(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}

func receivedLong(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format(time.RFC1123)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
