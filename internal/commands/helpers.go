package commands

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/dayplan/dayplan-cli/internal/presenter"
)

func presenterFor(_ *App) *presenter.Presenter {
	return presenter.New(presenter.DetectLocale())
}

// renderMarkdown renders a description through glamour for styled
// output. Rendering failures fall back to the raw text so a malformed
// description never hides content.
func renderMarkdown(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return ""
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
