package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
)

func TestTemplatesListShowsTaskCounts(t *testing.T) {
	v := NewTemplates(workspace.NewTestSession())
	v.SetSize(80, 24)

	v.Update(workspace.TemplatesLoadedMsg{Templates: []models.Template{
		{ID: 1, Name: "Sprint", Description: "Two week cycle", TaskDefinitions: []models.TaskDef{
			{Description: "kickoff", Offset: 0},
			{Description: "review", Offset: 13},
		}},
		{ID: 2, Name: "Release"},
	}})

	out := v.View()
	assert.Contains(t, out, "Sprint")
	assert.Contains(t, out, "2 tasks")
	assert.Contains(t, out, "Release")
	assert.Contains(t, out, "0 tasks")
}

func TestTemplatesEmptyState(t *testing.T) {
	v := NewTemplates(workspace.NewTestSession())
	v.SetSize(80, 24)

	v.Update(workspace.TemplatesLoadedMsg{})
	assert.Contains(t, v.View(), "No templates available.")
}

func TestTemplatesLoadErrorReports(t *testing.T) {
	v := NewTemplates(workspace.NewTestSession())
	v.Update(workspace.TemplatesLoadedMsg{Templates: []models.Template{{ID: 1, Name: "stale"}}})

	_, cmd := v.Update(workspace.TemplatesLoadedMsg{Err: assert.AnError})
	assert.Nil(t, v.templates)
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "loading templates", msg.Context)
}

func TestTemplatesFilter(t *testing.T) {
	v := NewTemplates(workspace.NewTestSession())
	v.SetSize(80, 24)
	v.Update(workspace.TemplatesLoadedMsg{Templates: []models.Template{
		{ID: 1, Name: "Sprint"},
		{ID: 2, Name: "Release"},
	}})

	v.Update(keyRune('/'))
	assert.True(t, v.InputActive())

	v.Update(keyRune('r'))
	v.Update(keyRune('e'))
	v.Update(keyRune('l'))

	out := v.View()
	assert.Contains(t, out, "Release")
	assert.NotContains(t, out, "Sprint")
}
