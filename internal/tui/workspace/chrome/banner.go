package chrome

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/tui"
)

// SuccessDuration is how long a success banner remains visible.
const SuccessDuration = 3 * time.Second

// bannerTickMsg expires a success banner. Seq guards against an old
// tick clearing a newer message.
type bannerTickMsg struct {
	seq uint64
}

// Banner renders notifications above the status bar. Error banners
// persist until dismissed so failures stay visible while the user
// retries; success banners expire on their own.
type Banner struct {
	styles  *tui.Styles
	width   int
	message string
	isError bool
	visible bool
	seq     uint64
}

// NewBanner creates a banner component.
func NewBanner(styles *tui.Styles) Banner {
	return Banner{styles: styles}
}

// ShowError displays a persistent error banner.
func (b *Banner) ShowError(message string) {
	b.seq++
	b.message = message
	b.isError = true
	b.visible = true
}

// ShowSuccess displays a success banner that expires after
// SuccessDuration.
func (b *Banner) ShowSuccess(message string) tea.Cmd {
	b.seq++
	b.message = message
	b.isError = false
	b.visible = true

	seq := b.seq
	return tea.Tick(SuccessDuration, func(time.Time) tea.Msg {
		return bannerTickMsg{seq: seq}
	})
}

// Dismiss hides the banner.
func (b *Banner) Dismiss() {
	b.visible = false
	b.message = ""
}

// Visible reports whether the banner is displayed.
func (b *Banner) Visible() bool {
	return b.visible
}

// IsError reports whether the visible banner is an error.
func (b *Banner) IsError() bool {
	return b.visible && b.isError
}

// SetWidth sets the available width.
func (b *Banner) SetWidth(w int) {
	b.width = w
}

// Update expires success banners on their tick. Stale ticks from a
// superseded banner are ignored, and errors never auto-expire.
func (b *Banner) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(bannerTickMsg); ok {
		if tick.seq == b.seq && !b.isError {
			b.Dismiss()
		}
	}
	return nil
}

// View renders the banner.
func (b Banner) View() string {
	if !b.visible || b.message == "" {
		return ""
	}

	theme := b.styles.Theme()
	fg := theme.Success
	text := b.message
	if b.isError {
		fg = theme.Error
		text += "  (x to dismiss)"
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Width(b.width).
		Render(" " + text)
}
