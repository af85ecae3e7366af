// Package presenter formats tasks, projects, and dates for display.
package presenter

import (
	"fmt"
	"time"

	"github.com/dayplan/dayplan-cli/internal/models"
)

const isoLayout = "2006-01-02"

// Presenter renders model values as display strings using a locale.
type Presenter struct {
	locale Locale
}

// New creates a presenter with the given locale.
func New(locale Locale) *Presenter {
	return &Presenter{locale: locale}
}

// Date renders an ISO date for display. Today and adjacent days get
// relative labels; other dates use the locale's preferred layout.
// Unparseable input is shown verbatim rather than hidden.
func (p *Presenter) Date(isoDate string) string {
	return p.DateAt(isoDate, time.Now())
}

// DateAt is Date relative to a reference time.
func (p *Presenter) DateAt(isoDate string, now time.Time) string {
	t, err := time.Parse(isoLayout, isoDate)
	if err != nil {
		return isoDate
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch int(t.Sub(today).Hours() / 24) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return p.locale.FormatDate(t)
}

// Status renders a task status as a checkbox marker.
func (p *Presenter) Status(task models.Task) string {
	if task.Done() {
		return "[x]"
	}
	return "[ ]"
}

// Progress renders a completion ratio badge.
func (p *Presenter) Progress(prog models.Progress) string {
	return fmt.Sprintf("%d / %d", prog.Done, prog.Total)
}
