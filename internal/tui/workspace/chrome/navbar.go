// Package chrome provides the workspace frame: navbar, status bar, and
// the notification banner.
package chrome

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/tui"
)

// Navbar renders the top-level view links. Exactly one link is marked
// active at a time.
type Navbar struct {
	styles *tui.Styles
	width  int
	items  []string
	active int
}

// NewNavbar creates a navbar with the given link labels.
func NewNavbar(styles *tui.Styles, items []string) Navbar {
	return Navbar{styles: styles, items: items}
}

// SetActive marks the link at index active and all others inactive.
// Out-of-range indexes are clamped.
func (n *Navbar) SetActive(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(n.items) {
		index = len(n.items) - 1
	}
	n.active = index
}

// Active returns the index of the active link.
func (n *Navbar) Active() int {
	return n.active
}

// SetWidth sets the available width.
func (n *Navbar) SetWidth(w int) {
	n.width = w
}

// View renders the navbar.
func (n Navbar) View() string {
	theme := n.styles.Theme()
	activeStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	sepStyle := lipgloss.NewStyle().Foreground(theme.Border)

	parts := make([]string, len(n.items))
	for i, item := range n.items {
		label := item
		if i == n.active {
			parts[i] = activeStyle.Render(label)
		} else {
			parts[i] = inactiveStyle.Render(label)
		}
	}

	bar := " " + strings.Join(parts, sepStyle.Render("  |  "))
	return lipgloss.NewStyle().Width(n.width).Render(bar)
}
