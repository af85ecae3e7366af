package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderDescription renders a markdown description for the detail
// pane. Failures fall back to the raw text so a malformed description
// never disappears.
func renderDescription(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if width <= 0 {
		width = 78
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
