// Package views implements the workspace views: tasks, projects, and
// templates.
package views

import "strings"

// EditField identifies which task field an edit session targets.
type EditField int

const (
	FieldDescription EditField = iota
	FieldComment
)

// EditEvent is an input to the edit session state machine.
type EditEvent int

const (
	// EventCommit fires on Enter or on losing focus.
	EventCommit EditEvent = iota
	// EventCancel fires on Escape.
	EventCancel
	// EventSaved fires when the pending save settles.
	EventSaved
)

// EditEffect is the action the view must take after a transition.
type EditEffect int

const (
	// EffectNone means keep the session as is.
	EffectNone EditEffect = iota
	// EffectCommit means issue a partial update for the field.
	EffectCommit
	// EffectCancel means revert the cell without a network call.
	EffectCancel
	// EffectClose means the save settled and the session is done.
	EffectClose
)

// EditSession is the single live inline edit. At most one exists per
// view; opening another while one is live is a no-op enforced by the
// view.
type EditSession struct {
	TaskID   int64
	Field    EditField
	Original string
	Value    string
	Saving   bool
}

// NewEditSession opens a session over a cell's current value.
func NewEditSession(taskID int64, field EditField, original string) *EditSession {
	return &EditSession{
		TaskID:   taskID,
		Field:    field,
		Original: original,
		Value:    original,
	}
}

// Apply advances the session for an event and returns the effect.
// Commit degrades to cancel when the value is unchanged, or when a
// description would become empty; an empty comment is a valid update.
// While a save is outstanding every further event is ignored except
// the save settling, so Enter followed by the blur it causes cannot
// double-submit.
func (s *EditSession) Apply(event EditEvent) EditEffect {
	if s.Saving {
		if event == EventSaved {
			return EffectClose
		}
		return EffectNone
	}

	switch event {
	case EventCancel:
		return EffectCancel

	case EventCommit:
		if s.Value == s.Original {
			return EffectCancel
		}
		if s.Field == FieldDescription && strings.TrimSpace(s.Value) == "" {
			return EffectCancel
		}
		s.Saving = true
		return EffectCommit
	}

	return EffectNone
}
