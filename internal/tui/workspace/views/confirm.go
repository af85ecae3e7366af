package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmWindow is how long an armed delete control waits for the
// confirming click before reverting.
const ConfirmWindow = 3000 * time.Millisecond

// confirmExpiredMsg disarms the control when the window elapses. Seq
// identifies the arming it belongs to, so a tick from a superseded
// arming cannot disarm a fresh one.
type confirmExpiredMsg struct {
	seq uint64
}

// Confirm is the two-phase destructive action controller. The first
// click arms it and starts the disarm timer; a second click within the
// window confirms. Re-arming supersedes any outstanding timer via the
// sequence number, so only one timer is ever live.
type Confirm struct {
	armed bool
	seq   uint64
}

// Click advances the controller. The first click arms and returns a
// disarm timer command; the second returns confirmed=true and resets
// to the initial state.
func (c *Confirm) Click() (confirmed bool, cmd tea.Cmd) {
	if c.armed {
		c.armed = false
		c.seq++ // invalidate the outstanding timer
		return true, nil
	}

	c.armed = true
	c.seq++
	seq := c.seq
	return false, tea.Tick(ConfirmWindow, func(time.Time) tea.Msg {
		return confirmExpiredMsg{seq: seq}
	})
}

// Update handles the disarm tick. Stale ticks are ignored.
func (c *Confirm) Update(msg tea.Msg) {
	if expired, ok := msg.(confirmExpiredMsg); ok {
		if expired.seq == c.seq {
			c.armed = false
		}
	}
}

// Armed reports whether the control is awaiting the confirming click.
func (c *Confirm) Armed() bool {
	return c.armed
}

// Disarm resets the control, invalidating any outstanding timer.
func (c *Confirm) Disarm() {
	c.armed = false
	c.seq++
}
