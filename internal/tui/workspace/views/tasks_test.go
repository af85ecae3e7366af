package views

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/auth"
	"github.com/dayplan/dayplan-cli/internal/config"
	"github.com/dayplan/dayplan-cli/internal/dateparse"
	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
)

func newViewSession(t *testing.T, handler http.Handler) *workspace.Session {
	t.Helper()
	t.Setenv("DAYPLAN_TOKEN", "test-token")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.BaseURL = server.URL
	cfg.CacheEnabled = false

	return workspace.NewTestSessionWithClient(api.NewClient(cfg, auth.NewManager()))
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedTasks(v *Tasks, tasks ...models.Task) {
	v.Update(workspace.TasksLoadedMsg{Tasks: tasks})
}

func TestTasksFilterDefaultsToToday(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())

	filter := v.currentFilter()
	assert.Equal(t, dateparse.Today(), filter.Date)
	assert.Empty(t, filter.Start)
	assert.Empty(t, filter.End)
}

func TestTasksRangeRoundTripRestoresEndDate(t *testing.T) {
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})))
	v.singleDate = "2024-01-10"

	v.handleKey(keyRune('R'))
	require.True(t, v.rangeMode)
	assert.Equal(t, "2024-01-10", v.rangeStart, "range seeds from the single date")
	assert.Equal(t, "2024-01-10", v.rangeEnd)

	v.rangeEnd = "2024-01-20"

	v.handleKey(keyRune('R'))
	require.False(t, v.rangeMode)
	filter := v.currentFilter()
	assert.Equal(t, "2024-01-10", filter.Date, "single date survives the range detour")

	v.handleKey(keyRune('R'))
	require.True(t, v.rangeMode)
	assert.Equal(t, "2024-01-20", v.rangeEnd, "end date restored on re-entering range mode")
}

func TestTasksRangeFilterEncoding(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	v.rangeMode = true
	v.rangeStart = "2024-01-10"
	v.rangeEnd = "2024-01-20"

	filter := v.currentFilter()
	assert.Empty(t, filter.Date)
	assert.Equal(t, "2024-01-10", filter.Start)
	assert.Equal(t, "2024-01-20", filter.End)
}

func TestTasksLoadErrorClearsList(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "stale"})
	require.Len(t, v.tasks, 1)

	_, cmd := v.Update(workspace.TasksLoadedMsg{Err: errors.New("boom")})

	assert.Nil(t, v.tasks, "a failed reload must not leave stale rows visible")
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "loading tasks", msg.Context)
}

func TestTasksEmptyStatesNameTheFilter(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	v.SetSize(80, 24)
	v.singleDate = "2024-01-10"
	loadedTasks(v)

	assert.Contains(t, v.View(), "No tasks on 2024-01-10")

	v.rangeMode = true
	v.rangeStart = "2024-01-10"
	v.rangeEnd = "2024-01-20"
	assert.Contains(t, v.View(), "No tasks between 2024-01-10 and 2024-01-20")
}

func TestTasksCreateFlow(t *testing.T) {
	var posted map[string]any
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":7,"description":"Pay rent","date":"2024-01-10","status":"todo"}`))
			return
		}
		w.Write([]byte(`[]`))
	})))

	v.handleKey(keyRune('n'))
	require.Equal(t, tasksModeCreate, v.mode)
	assert.True(t, v.InputActive())

	v.descInput.SetValue("Pay rent")
	v.dateInput.SetValue("2024-01-10")

	_, cmd := v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, v.submitting)

	saved, ok := cmd().(workspace.TaskSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "Pay rent", posted["description"])
	assert.Equal(t, "2024-01-10", posted["date"])
	_, hasComment := posted["comment"]
	assert.False(t, hasComment, "blank comment is omitted from the create")

	_, reload := v.Update(saved)
	assert.False(t, v.submitting)
	assert.Empty(t, v.descInput.Value(), "form clears for the next entry")
	assert.Equal(t, "2024-01-10", v.dateInput.Value(), "date sticks between entries")
	assert.NotNil(t, reload)
}

func TestTasksCreateRequiresDescription(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	v.handleKey(keyRune('n'))
	v.descInput.SetValue("   ")

	_, cmd := v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.StatusMsg)
	require.True(t, ok)
	assert.True(t, msg.IsError)
	assert.False(t, v.submitting)
}

func TestTasksCreateWhileSubmittingIsNoOp(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	v.handleKey(keyRune('n'))
	v.descInput.SetValue("Pay rent")
	v.dateInput.SetValue("2024-01-10")
	v.submitting = true

	_, cmd := v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "enter while a create is outstanding must not double-submit")
}

func TestTasksToggleIssuesStatusUpdate(t *testing.T) {
	var patched map[string]any
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		}
		w.Write([]byte(`{"id":1,"description":"x","date":"2024-01-10","status":"done"}`))
	})))
	loadedTasks(v, models.Task{ID: 1, Description: "x", Date: "2024-01-10", Status: models.StatusTodo})

	_, cmd := v.handleKey(keyRune('x'))
	require.NotNil(t, cmd)

	saved, ok := cmd().(workspace.TaskSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "toggle", saved.Action)
	assert.Equal(t, map[string]any{"status": "done"}, patched, "only the status field is sent")
}

func TestTasksSecondEditSessionIsNoOp(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "first", Comment: "note"})

	require.NotNil(t, v.openEdit(FieldDescription))
	require.NotNil(t, v.edit)

	assert.Nil(t, v.openEdit(FieldComment))
	assert.Equal(t, FieldDescription, v.edit.Field, "a live session is never replaced")
}

func TestTasksEditCommitSendsOnlyEditedField(t *testing.T) {
	var patched map[string]any
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		}
		w.Write([]byte(`{"id":1,"description":"renamed","date":"2024-01-10","status":"todo"}`))
	})))
	loadedTasks(v, models.Task{ID: 1, Description: "old", Date: "2024-01-10"})

	v.openEdit(FieldDescription)
	v.editInput.SetValue("renamed")

	_, cmd := v.handleEditKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, v.edit.Saving)

	saved, ok := cmd().(workspace.TaskSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, map[string]any{"description": "renamed"}, patched)

	v.Update(saved)
	assert.Nil(t, v.edit, "session closes once the save settles")
	assert.Equal(t, tasksModeNormal, v.mode)
}

func TestTasksEditEscapeRevertsWithoutRequest(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "old"})

	v.openEdit(FieldDescription)
	v.editInput.SetValue("changed but abandoned")

	_, cmd := v.handleEditKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Nil(t, v.edit)
}

func TestTasksUnchangedCommitClosesWithoutRequest(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "same"})

	v.openEdit(FieldDescription)

	_, cmd := v.handleEditKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "committing an unchanged value is a cancel")
	assert.Nil(t, v.edit)
}

func TestTasksDeleteRequiresConfirmation(t *testing.T) {
	deleted := false
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`[]`))
	})))
	loadedTasks(v, models.Task{ID: 1, Description: "doomed"})

	v.handleKey(keyRune('d'))
	require.Equal(t, tasksModeConfirm, v.mode)
	v.SetSize(80, 24)
	assert.Contains(t, v.View(), `Delete "doomed"?`)

	// Declining leaves the task alone.
	_, cmd := v.handleKey(keyRune('n'))
	assert.Nil(t, cmd)
	assert.Equal(t, tasksModeNormal, v.mode)
	assert.False(t, deleted)

	v.handleKey(keyRune('d'))
	_, cmd = v.handleKey(keyRune('y'))
	require.NotNil(t, cmd)
	saved, ok := cmd().(workspace.TaskSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "delete", saved.Action)
	assert.True(t, deleted)
}

func TestTasksFilterDateInputAcceptsNaturalDates(t *testing.T) {
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})))

	v.handleKey(keyRune('s'))
	require.Equal(t, tasksModeEditDate, v.mode)

	v.filterInput.SetValue("tomorrow")
	_, cmd := v.handleDateKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	want, err := dateparse.Parse("tomorrow")
	require.NoError(t, err)
	assert.Equal(t, want, v.singleDate)
	assert.Equal(t, tasksModeNormal, v.mode)
}

func TestTasksFilterDateInputRejectsGarbage(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	v.singleDate = "2024-01-10"

	v.handleKey(keyRune('s'))
	v.filterInput.SetValue("not a date")
	_, cmd := v.handleDateKey(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.StatusMsg)
	require.True(t, ok)
	assert.True(t, msg.IsError)
	assert.Equal(t, "2024-01-10", v.singleDate, "filter unchanged on a bad date")
	assert.Equal(t, tasksModeEditDate, v.mode, "input stays open for correction")
}

func TestTasksRangeStartEditCarriesToSingleDate(t *testing.T) {
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})))
	v.singleDate = "2024-01-10"

	v.handleKey(keyRune('R'))
	require.True(t, v.rangeMode)

	v.handleKey(keyRune('s'))
	require.Equal(t, tasksModeEditDate, v.mode)
	v.filterInput.SetValue("2024-02-02")
	_, cmd := v.handleDateKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "2024-02-02", v.rangeStart)

	v.handleKey(keyRune('R'))
	require.False(t, v.rangeMode)
	assert.Equal(t, "2024-02-02", v.currentFilter().Date,
		"a start edited in range mode survives leaving range mode")
}

func TestTasksEndDateKeyOnlyInRangeMode(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())

	v.handleKey(keyRune('E'))
	assert.Equal(t, tasksModeNormal, v.mode)

	v.rangeMode = true
	v.rangeEnd = "2024-01-20"
	v.handleKey(keyRune('E'))
	assert.Equal(t, tasksModeEditDate, v.mode)
	assert.Equal(t, dateTargetEnd, v.dateTarget)
	assert.Equal(t, "2024-01-20", v.filterInput.Value())
}

func TestTasksTodayResetsFilter(t *testing.T) {
	v := NewTasks(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})))
	v.singleDate = "2020-05-05"

	v.handleKey(keyRune('t'))
	assert.Equal(t, dateparse.Today(), v.singleDate)

	v.rangeMode = true
	v.rangeStart = "2020-05-05"
	v.rangeEnd = "2020-06-05"
	v.handleKey(keyRune('t'))
	assert.Equal(t, dateparse.Today(), v.rangeStart)
	assert.Equal(t, dateparse.Today(), v.rangeEnd)
}

func TestTasksReloadDiscardsLiveEdit(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "old"})
	v.openEdit(FieldDescription)
	require.NotNil(t, v.edit)

	loadedTasks(v, models.Task{ID: 2, Description: "other"})
	assert.Nil(t, v.edit, "the edited row may no longer exist after a reload")
	assert.Equal(t, tasksModeNormal, v.mode)
}

func TestTasksSaveErrorRevertsEditAndReports(t *testing.T) {
	v := NewTasks(workspace.NewTestSession())
	loadedTasks(v, models.Task{ID: 1, Description: "old"})
	v.openEdit(FieldDescription)
	v.edit.Value = "new"
	v.edit.Apply(EventCommit)

	_, cmd := v.Update(workspace.TaskSavedMsg{Action: "update", Err: errors.New("boom")})

	assert.Nil(t, v.edit, "cell reverts to the original value")
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "update task", msg.Context)
}
