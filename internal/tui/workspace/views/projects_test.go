package views

import (
	"encoding/json"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
)

func TestProjectsProgressAggregation(t *testing.T) {
	v := NewProjects(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/1/tasks":
			w.Write([]byte(`[
				{"id":10,"description":"a","date":"2024-01-10","status":"done"},
				{"id":11,"description":"b","date":"2024-01-11","status":"done"},
				{"id":12,"description":"c","date":"2024-01-12","status":"todo"}
			]`))
		case "/projects/2/tasks":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
		default:
			w.Write([]byte(`[]`))
		}
	})))

	projects := []models.Project{
		{ID: 1, Title: "Mostly done"},
		{ID: 2, Title: "Broken fetch"},
	}
	_, cmd := v.Update(workspace.ProjectsLoadedMsg{Projects: projects})
	require.NotNil(t, cmd, "a loaded listing kicks off the progress aggregation")

	msg, ok := cmd().(workspace.ProgressLoadedMsg)
	require.True(t, ok)

	assert.Equal(t, models.Progress{Done: 2, Total: 3}, msg.Progress[1])
	assert.Equal(t, models.Progress{}, msg.Progress[2], "a failed fetch degrades to a zero ratio")
	assert.False(t, msg.Progress[1].AllDone())

	v.Update(msg)
	v.SetSize(80, 24)
	out := v.View()
	assert.Contains(t, out, "Mostly done")
	assert.Contains(t, out, "2 / 3")
	assert.Contains(t, out, "Broken fetch", "the listing renders even when one ratio failed")
	assert.Contains(t, out, "0 / 0")
}

func TestProjectsAllDoneMark(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.SetSize(80, 24)

	v.projects = []models.Project{{ID: 1, Title: "Finished"}}
	v.progress = map[int64]models.Progress{1: {Done: 2, Total: 2}}
	v.syncListItems()

	assert.Contains(t, v.View(), "✓")
}

func TestProjectsEmptyProjectIsNeverAllDone(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.SetSize(80, 24)

	v.projects = []models.Project{{ID: 1, Title: "Empty"}}
	v.progress = map[int64]models.Progress{1: {}}
	v.syncListItems()

	assert.NotContains(t, v.View(), "✓")
	assert.Contains(t, v.View(), "0 / 0")
}

func TestProjectsLoadErrorClearsList(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.projects = []models.Project{{ID: 1, Title: "stale"}}
	v.syncListItems()

	_, cmd := v.Update(workspace.ProjectsLoadedMsg{Err: assert.AnError})

	assert.Nil(t, v.projects)
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "loading projects", msg.Context)
}

func TestProjectsCreateFlow(t *testing.T) {
	var posted map[string]any
	v := NewProjects(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":5,"title":"Launch","anchorDate":"2024-03-01"}`))
			return
		}
		w.Write([]byte(`[]`))
	})))

	v.handleKey(keyRune('n'))
	require.Equal(t, projectsModeCreate, v.mode)
	assert.True(t, v.InputActive())

	v.titleInput.SetValue("Launch")
	v.anchorInput.SetValue("2024-03-01")
	v.templateInput.SetValue("3")

	_, cmd := v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	saved, ok := cmd().(workspace.ProjectSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "Launch", posted["title"])
	assert.Equal(t, "2024-03-01", posted["anchorDate"])
	assert.Equal(t, float64(3), posted["templateId"], "template reference passes through to the server")

	_, reload := v.Update(saved)
	assert.Equal(t, projectsModeList, v.mode)
	assert.Empty(t, v.titleInput.Value())
	assert.NotNil(t, reload)
}

func TestProjectsCreateRequiresTitleAndAnchor(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.handleKey(keyRune('n'))

	v.titleInput.SetValue("  ")
	_, cmd := v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.StatusMsg)
	require.True(t, ok)
	assert.True(t, msg.IsError)

	v.titleInput.SetValue("Launch")
	v.anchorInput.SetValue("not a date")
	_, cmd = v.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok = cmd().(workspace.StatusMsg)
	require.True(t, ok)
	assert.True(t, msg.IsError)
	assert.False(t, v.submitting)
}

func TestProjectsDetailRoundTrip(t *testing.T) {
	v := NewProjects(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/1":
			w.Write([]byte(`{"id":1,"title":"Launch","anchorDate":"2024-03-01"}`))
		case "/projects/1/tasks":
			w.Write([]byte(`[{"id":10,"description":"a","date":"2024-03-01","status":"todo"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	})))
	v.SetSize(80, 24)

	cmd := v.openDetail(1)
	require.Equal(t, projectsModeDetail, v.mode)
	assert.True(t, v.IsModal(), "detail mode owns Esc")
	require.NotNil(t, cmd)

	// Settle the batched project and task fetches.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		v.Update(c())
	}

	require.NotNil(t, v.detail)
	assert.Equal(t, "Launch", v.detail.Title)
	require.Len(t, v.detailTasks, 1)

	// Esc returns to the list and discards the selection.
	v.handleDetailKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, projectsModeList, v.mode)
	assert.Zero(t, v.detailID)
	assert.Nil(t, v.detail)
}

func TestProjectsDeleteIsTwoPhase(t *testing.T) {
	deleted := false
	v := NewProjects(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`[]`))
	})))
	v.mode = projectsModeDetail
	v.detailID = 1

	// First press arms; nothing is deleted yet.
	_, cmd := v.handleDetailKey(keyRune('D'))
	require.NotNil(t, cmd, "arming starts the disarm timer")
	assert.True(t, v.deleteConfirm.Armed())
	assert.False(t, deleted)

	// Second press within the window deletes and returns to the list.
	_, cmd = v.handleDetailKey(keyRune('D'))
	require.NotNil(t, cmd)
	saved, ok := cmd().(workspace.ProjectSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.True(t, deleted)

	_, reload := v.Update(saved)
	assert.Equal(t, projectsModeList, v.mode)
	assert.Zero(t, v.detailID, "deleted project is no longer selected")
	assert.NotNil(t, reload)
}

func TestProjectsDeleteDisarmedByOtherKeys(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.mode = projectsModeDetail
	v.detailTasks = []models.Task{{ID: 1}, {ID: 2}}

	v.handleDetailKey(keyRune('D'))
	require.True(t, v.deleteConfirm.Armed())

	v.handleDetailKey(keyRune('j'))
	assert.False(t, v.deleteConfirm.Armed(), "moving the cursor cancels the armed delete")
}

func TestProjectsListDeleteIsTwoPhase(t *testing.T) {
	deleted := ""
	v := NewProjects(newViewSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`[]`))
	})))
	v.SetSize(80, 24)
	v.projects = []models.Project{{ID: 7, Title: "Doomed"}}
	v.syncListItems()

	// First press arms on the selected row; nothing is deleted yet.
	_, cmd := v.handleKey(keyRune('D'))
	require.NotNil(t, cmd, "arming starts the disarm timer")
	assert.True(t, v.deleteConfirm.Armed())
	assert.Empty(t, deleted)
	assert.Contains(t, v.View(), `delete "Doomed"`)

	// Second press deletes the row's project and reloads.
	_, cmd = v.handleKey(keyRune('D'))
	require.NotNil(t, cmd)
	saved, ok := cmd().(workspace.ProjectSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, "delete", saved.Action)
	assert.Equal(t, "/projects/7", deleted)

	_, reload := v.Update(saved)
	assert.NotNil(t, reload)
}

func TestProjectsListDeleteDisarmedByOtherKeys(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.SetSize(80, 24)
	v.projects = []models.Project{{ID: 7, Title: "Doomed"}}
	v.syncListItems()

	v.handleKey(keyRune('D'))
	require.True(t, v.deleteConfirm.Armed())

	v.handleKey(keyRune('j'))
	assert.False(t, v.deleteConfirm.Armed(), "moving the cursor cancels the armed delete")
	assert.Zero(t, v.listDeleteID)
}

func TestProjectsStaleDetailTasksKeepLoading(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.mode = projectsModeDetail
	v.detailID = 2
	v.detailLoading = true

	v.Update(workspace.ProjectTasksLoadedMsg{ProjectID: 1, Tasks: []models.Task{{ID: 99}}})

	assert.True(t, v.detailLoading, "a late result for another project must not stop the spinner")
	assert.Nil(t, v.detailTasks)
}

func TestProjectsDeleteWindowExpiry(t *testing.T) {
	v := NewProjects(workspace.NewTestSession())
	v.mode = projectsModeDetail
	v.detailID = 1

	v.handleDetailKey(keyRune('D'))
	require.True(t, v.deleteConfirm.Armed())

	v.Update(confirmExpiredMsg{seq: v.deleteConfirm.seq})
	assert.False(t, v.deleteConfirm.Armed())

	// The next press arms again instead of deleting.
	_, cmd := v.handleDetailKey(keyRune('D'))
	require.NotNil(t, cmd)
	assert.True(t, v.deleteConfirm.Armed())
}
