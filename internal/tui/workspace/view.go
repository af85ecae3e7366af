package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface all workspace views implement.
type View interface {
	tea.Model

	// Title returns the navbar label for this view.
	Title() string

	// ShortHelp returns key bindings shown in the status bar.
	ShortHelp() []key.Binding

	// SetSize updates the view's available dimensions.
	SetSize(width, height int)
}

// InputCapturer is an optional interface views implement to signal they
// are in text input mode. While active, the workspace skips single-key
// globals (q, r, 1-3) so those keys reach the input.
type InputCapturer interface {
	InputActive() bool
}

// ModalActive is an optional interface views implement to signal a
// modal sub-state (inline edit, armed delete). While active, Esc is
// forwarded to the view instead of quitting.
type ModalActive interface {
	IsModal() bool
}

// ViewFactory builds a fresh view for a route. Views are always built
// new on navigation; route state never survives route exit.
type ViewFactory func(route Route, session *Session) View
