package views

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/tui"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/widget"
)

type templatesKeyMap struct {
	Filter key.Binding
}

func defaultTemplatesKeyMap() templatesKeyMap {
	return templatesKeyMap{
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
	}
}

// Templates is the read-only template catalog. Templates are consumed
// by project creation; there is nothing to edit here.
type Templates struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    templatesKeyMap

	width, height int

	list      *widget.List
	templates []models.Template
}

// NewTemplates creates the template view.
func NewTemplates(session *workspace.Session) *Templates {
	list := widget.NewList(session.Styles())
	list.SetEmptyText("No templates available.")
	list.SetFocused(true)

	return &Templates{
		session: session,
		styles:  session.Styles(),
		keys:    defaultTemplatesKeyMap(),
		list:    list,
	}
}

// Title implements workspace.View.
func (v *Templates) Title() string { return "Templates" }

// ShortHelp implements workspace.View.
func (v *Templates) ShortHelp() []key.Binding {
	return []key.Binding{v.keys.Filter}
}

// SetSize implements workspace.View.
func (v *Templates) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.SetSize(width, height)
}

// InputActive implements workspace.InputCapturer.
func (v *Templates) InputActive() bool {
	return v.list.Filtering()
}

// IsModal implements workspace.ModalActive.
func (v *Templates) IsModal() bool {
	return v.list.Filtering()
}

// Init implements tea.Model.
func (v *Templates) Init() tea.Cmd {
	v.list.SetLoading(true)
	return v.loadTemplates()
}

func (v *Templates) loadTemplates() tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	return func() tea.Msg {
		templates, err := client.Templates().List(ctx)
		return workspace.TemplatesLoadedMsg{Templates: templates, Err: err}
	}
}

// Update implements tea.Model.
func (v *Templates) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.TemplatesLoadedMsg:
		v.list.SetLoading(false)
		if msg.Err != nil {
			v.templates = nil
			v.list.SetItems(nil)
			return v, workspace.ReportError(msg.Err, "loading templates")
		}
		v.templates = msg.Templates
		v.syncListItems()
		return v, nil

	case workspace.RefreshMsg:
		v.list.SetLoading(true)
		return v, v.loadTemplates()

	case tea.KeyMsg:
		if !v.list.Filtering() && key.Matches(msg, v.keys.Filter) {
			v.list.StartFilter()
			return v, nil
		}
		v.list.Update(msg)
		return v, nil
	}

	return v, nil
}

func (v *Templates) syncListItems() {
	items := make([]widget.ListItem, len(v.templates))
	for i, tmpl := range v.templates {
		items[i] = widget.ListItem{
			ID:          strconv.FormatInt(tmpl.ID, 10),
			Title:       tmpl.Name,
			Description: tmpl.Description,
			Extra:       fmt.Sprintf("%d tasks", len(tmpl.TaskDefinitions)),
		}
	}
	v.list.SetItems(items)
}

// View implements tea.Model.
func (v *Templates) View() string {
	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Render(v.list.View())
}
