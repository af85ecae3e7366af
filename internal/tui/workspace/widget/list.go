// Package widget provides reusable sub-models for workspace views.
package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/tui"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
)

// ListItem represents a single item in an async list.
type ListItem struct {
	ID          string
	Title       string
	Description string
	Extra       string // right-aligned detail (progress badge, count, date)
	Marked      bool   // visual mark (all tasks done)
}

// FilterValue returns the string used for filtering.
func (i ListItem) FilterValue() string {
	return i.Title + " " + i.Description
}

// List is an async-capable list widget with filtering, scrolling, and
// selection.
type List struct {
	items    []ListItem
	filtered []ListItem
	cursor   int
	offset   int
	width    int
	height   int
	focused  bool
	loading  bool
	filter   string

	filtering bool

	styles *tui.Styles
	keys   workspace.ListKeyMap

	emptyText string
}

// NewList creates a new list widget.
func NewList(styles *tui.Styles) *List {
	return &List{
		styles:    styles,
		keys:      workspace.DefaultListKeyMap(),
		emptyText: "No items",
	}
}

// SetItems replaces the item list.
func (l *List) SetItems(items []ListItem) {
	l.items = items
	l.applyFilter()
	l.loading = false
	if l.cursor >= len(l.filtered) {
		l.cursor = max(0, len(l.filtered)-1)
	}
}

// SetLoading puts the list in loading state.
func (l *List) SetLoading(loading bool) {
	l.loading = loading
}

// SetEmptyText sets the message shown when no items exist.
func (l *List) SetEmptyText(text string) {
	l.emptyText = text
}

// SetSize updates dimensions.
func (l *List) SetSize(w, h int) {
	l.width = w
	l.height = h
}

// SetFocused sets focus state.
func (l *List) SetFocused(focused bool) {
	l.focused = focused
}

// Selected returns the currently highlighted item, or nil.
func (l *List) Selected() *ListItem {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return nil
	}
	item := l.filtered[l.cursor]
	return &item
}

// Len returns the number of visible items.
func (l *List) Len() int {
	return len(l.filtered)
}

// StartFilter enters interactive filter mode.
func (l *List) StartFilter() {
	l.filtering = true
	l.filter = ""
	l.applyFilter()
	l.cursor = 0
	l.offset = 0
}

// Filtering reports whether interactive filter mode is active.
func (l *List) Filtering() bool {
	return l.filtering
}

// Update handles key events for list navigation.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if l.filtering {
		l.handleFilterKey(km)
		return nil
	}

	visible := l.visibleHeight()

	switch {
	case key.Matches(km, l.keys.Up):
		l.moveCursor(-1)
	case key.Matches(km, l.keys.Down):
		l.moveCursor(1)
	case key.Matches(km, l.keys.Top):
		l.cursor = 0
		l.offset = 0
	case key.Matches(km, l.keys.Bottom):
		l.cursor = max(0, len(l.filtered)-1)
		if l.cursor >= visible {
			l.offset = l.cursor - visible + 1
		}
	case key.Matches(km, l.keys.PageDown):
		l.cursor = min(l.cursor+visible/2, max(0, len(l.filtered)-1))
		if l.cursor >= l.offset+visible {
			l.offset = l.cursor - visible + 1
		}
	case key.Matches(km, l.keys.PageUp):
		l.cursor = max(l.cursor-visible/2, 0)
		if l.cursor < l.offset {
			l.offset = l.cursor
		}
	}
	return nil
}

func (l *List) moveCursor(delta int) {
	n := len(l.filtered)
	if n == 0 {
		return
	}
	next := l.cursor + delta
	if next < 0 || next >= n {
		return
	}
	l.cursor = next
	visible := l.visibleHeight()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
}

func (l *List) handleFilterKey(km tea.KeyMsg) {
	switch km.String() {
	case "esc":
		l.filtering = false
		l.filter = ""
		l.applyFilter()
		l.cursor = 0
		l.offset = 0
	case "backspace":
		if l.filter == "" {
			l.filtering = false
		} else {
			runes := []rune(l.filter)
			l.filter = string(runes[:len(runes)-1])
			l.applyFilter()
			l.cursor = 0
			l.offset = 0
		}
	case "up", "k":
		l.moveCursor(-1)
	case "down", "j":
		l.moveCursor(1)
	case "enter":
		l.filtering = false // keep filter applied
	default:
		if km.Type == tea.KeyRunes {
			l.filter += string(km.Runes)
			l.applyFilter()
			l.cursor = 0
			l.offset = 0
		}
	}
}

func (l *List) visibleHeight() int {
	h := l.height
	if h <= 0 {
		h = 10
	}
	if l.filtering || l.filter != "" {
		h--
	}
	if len(l.filtered) > h {
		h-- // scroll indicator line
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (l *List) applyFilter() {
	if l.filter == "" {
		l.filtered = l.items
		return
	}
	l.filtered = nil
	for _, item := range l.items {
		if fuzzyMatch(item.FilterValue(), l.filter) {
			l.filtered = append(l.filtered, item)
		}
	}
}

// fuzzyMatch reports whether query is a case-insensitive subsequence
// of s.
func fuzzyMatch(s, query string) bool {
	s = strings.ToLower(s)
	queryRunes := []rune(strings.ToLower(query))
	qi := 0
	for _, r := range s {
		if qi < len(queryRunes) && r == queryRunes[qi] {
			qi++
		}
	}
	return qi == len(queryRunes)
}

// View renders the list.
func (l *List) View() string {
	if l.width <= 0 || l.height <= 0 {
		return ""
	}

	theme := l.styles.Theme()

	if l.loading {
		return lipgloss.NewStyle().
			Width(l.width).
			Foreground(theme.Muted).
			Render("Loading…")
	}

	var b strings.Builder

	if l.filtering || l.filter != "" {
		b.WriteString(l.renderFilterBar(theme))
		b.WriteString("\n")
	}

	if len(l.filtered) == 0 {
		text := l.emptyText
		if l.filter != "" {
			text = "No matches"
		}
		b.WriteString(lipgloss.NewStyle().
			Width(l.width).
			Foreground(theme.Muted).
			Render(text))
		return b.String()
	}

	visible := l.visibleHeight()
	end := min(l.offset+visible, len(l.filtered))

	for i := l.offset; i < end; i++ {
		b.WriteString(l.renderItem(l.filtered[i], i == l.cursor && l.focused, theme))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if len(l.filtered) > visible {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Muted).
			Render(fmt.Sprintf(" %d/%d", l.cursor+1, len(l.filtered))))
	}

	return b.String()
}

func (l *List) renderFilterBar(theme tui.Theme) string {
	prefix := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("/")
	cursor := ""
	if l.filtering {
		cursor = lipgloss.NewStyle().Foreground(theme.Primary).Render("█")
	}
	counts := lipgloss.NewStyle().Foreground(theme.Muted).
		Render(fmt.Sprintf("%d/%d", len(l.filtered), len(l.items)))

	left := prefix + l.filter + cursor
	gap := l.width - lipgloss.Width(left) - lipgloss.Width(counts)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + counts
}

func (l *List) renderItem(item ListItem, selected bool, theme tui.Theme) string {
	cursor := "  "
	titleStyle := lipgloss.NewStyle().Foreground(theme.Foreground)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("> ")
		titleStyle = titleStyle.Bold(true).Foreground(theme.Primary)
	}

	title := item.Title
	maxTitle := l.width - lipgloss.Width(cursor)
	if item.Marked {
		maxTitle -= 2
	}
	if item.Extra != "" {
		maxTitle -= lipgloss.Width(item.Extra) + 2
	}
	if maxTitle > 0 {
		title = Truncate(title, maxTitle)
	}

	if item.Marked {
		title = lipgloss.NewStyle().Foreground(theme.Success).Render("✓ ") + title
	}

	line := cursor + titleStyle.Render(title)

	if item.Extra != "" {
		extra := descStyle.Render(item.Extra)
		gap := l.width - lipgloss.Width(line) - lipgloss.Width(extra)
		if gap > 1 {
			if item.Description != "" && gap > 4 {
				desc := " " + Truncate(item.Description, gap-3)
				line += descStyle.Render(desc)
				gap = l.width - lipgloss.Width(line) - lipgloss.Width(extra)
			}
			if gap > 0 {
				line += strings.Repeat(" ", gap) + extra
			}
		}
		return line
	}

	if item.Description != "" {
		avail := l.width - lipgloss.Width(line)
		if avail > 3 {
			line += descStyle.Render(" " + Truncate(item.Description, avail-1))
		}
	}

	return line
}
