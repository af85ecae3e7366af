package chrome

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/tui"
)

// StatusBar renders the bottom bar: a transient status message on the
// left and key hints on the right.
type StatusBar struct {
	styles *tui.Styles
	width  int

	status   string
	isError  bool
	keyHints []key.Binding
	hints    []key.Binding // global hints, always shown
}

// NewStatusBar creates a status bar.
func NewStatusBar(styles *tui.Styles) StatusBar {
	return StatusBar{styles: styles}
}

// SetWidth sets the available width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetStatus sets the status text.
func (s *StatusBar) SetStatus(text string, isError bool) {
	s.status = text
	s.isError = isError
}

// SetKeyHints sets the view-specific key hints.
func (s *StatusBar) SetKeyHints(hints []key.Binding) {
	s.keyHints = hints
}

// SetGlobalHints sets the always-visible key hints.
func (s *StatusBar) SetGlobalHints(hints []key.Binding) {
	s.hints = hints
}

// View renders the status bar.
func (s StatusBar) View() string {
	theme := s.styles.Theme()

	statusStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	if s.isError {
		statusStyle = lipgloss.NewStyle().Foreground(theme.Error)
	}
	left := statusStyle.Render(" " + s.status)

	hintStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

	var parts []string
	for _, b := range append(append([]key.Binding{}, s.keyHints...), s.hints...) {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+hintStyle.Render(" "+h.Desc))
	}
	right := strings.Join(parts, hintStyle.Render("  ")) + " "

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
