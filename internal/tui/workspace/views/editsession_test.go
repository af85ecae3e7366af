package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditCommitChangedValue(t *testing.T) {
	s := NewEditSession(1, FieldDescription, "old")
	s.Value = "new"

	assert.Equal(t, EffectCommit, s.Apply(EventCommit))
	assert.True(t, s.Saving)
}

func TestEditCommitUnchangedIsCancel(t *testing.T) {
	s := NewEditSession(1, FieldDescription, "same")
	s.Value = "same"

	assert.Equal(t, EffectCancel, s.Apply(EventCommit))
	assert.False(t, s.Saving, "no network call for an unchanged value")
}

func TestEditCommitEmptyDescriptionIsCancel(t *testing.T) {
	s := NewEditSession(1, FieldDescription, "old")
	s.Value = "   "

	assert.Equal(t, EffectCancel, s.Apply(EventCommit))
	assert.False(t, s.Saving)
}

func TestEditCommitEmptyCommentIsValid(t *testing.T) {
	s := NewEditSession(1, FieldComment, "note")
	s.Value = ""

	assert.Equal(t, EffectCommit, s.Apply(EventCommit), "clearing a comment is a real update")
}

func TestEditCancelNeverSaves(t *testing.T) {
	s := NewEditSession(1, FieldDescription, "old")
	s.Value = "changed"

	assert.Equal(t, EffectCancel, s.Apply(EventCancel))
	assert.False(t, s.Saving)
}

func TestEditDoubleCommitIgnoredWhileSaving(t *testing.T) {
	s := NewEditSession(1, FieldDescription, "old")
	s.Value = "new"

	assert.Equal(t, EffectCommit, s.Apply(EventCommit))
	// Enter triggered the commit; the blur that follows must not
	// submit a second update.
	assert.Equal(t, EffectNone, s.Apply(EventCommit))
	assert.Equal(t, EffectNone, s.Apply(EventCancel))

	assert.Equal(t, EffectClose, s.Apply(EventSaved))
}
