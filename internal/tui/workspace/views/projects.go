package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/dateparse"
	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/tui"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/data"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/widget"
)

type projectsKeyMap struct {
	New    key.Binding
	Open   key.Binding
	Filter key.Binding
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Delete key.Binding
}

func defaultProjectsKeyMap() projectsKeyMap {
	return projectsKeyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("j/k", "navigate"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/k", "navigate"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete project"),
		),
	}
}

type projectsMode int

const (
	projectsModeList projectsMode = iota
	projectsModeCreate
	projectsModeDetail
)

// Projects is the project view. The list shows every project with its
// completion ratio; opening one switches to an in-view detail with the
// project's tasks.
type Projects struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    projectsKeyMap

	width, height int

	mode    projectsMode
	loading bool
	spinner spinner.Model

	list     *widget.List
	projects []models.Project
	progress map[int64]models.Progress

	// Create form
	titleInput    textinput.Model
	anchorInput   textinput.Model
	descInput     textinput.Model
	templateInput textinput.Model
	formFocus     int
	submitting    bool

	// Detail
	detailID      int64
	detail        *models.Project
	detailDesc    string
	detailTasks   []models.Task
	detailCursor  int
	detailLoading bool
	deleteConfirm Confirm

	// List-mode delete target; the confirm is shared with detail mode.
	listDeleteID    int64
	listDeleteTitle string
}

// NewProjects creates the project view.
func NewProjects(session *workspace.Session) *Projects {
	styles := session.Styles()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)

	list := widget.NewList(styles)
	list.SetEmptyText("No projects. Press n to create one.")
	list.SetFocused(true)

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 128

	anchor := textinput.New()
	anchor.Placeholder = "Anchor date (today, +7, 2024-06-01)"
	anchor.CharLimit = 32

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 256

	tmpl := textinput.New()
	tmpl.Placeholder = "Template ID (optional)"
	tmpl.CharLimit = 12

	return &Projects{
		session:       session,
		styles:        styles,
		keys:          defaultProjectsKeyMap(),
		loading:       true,
		spinner:       s,
		list:          list,
		titleInput:    title,
		anchorInput:   anchor,
		descInput:     desc,
		templateInput: tmpl,
	}
}

// Title implements workspace.View.
func (v *Projects) Title() string { return "Projects" }

// ShortHelp implements workspace.View.
func (v *Projects) ShortHelp() []key.Binding {
	if v.mode == projectsModeDetail {
		return []key.Binding{v.keys.Toggle, v.keys.Delete}
	}
	return []key.Binding{v.keys.Open, v.keys.New, v.keys.Filter, v.keys.Delete}
}

// SetSize implements workspace.View.
func (v *Projects) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.SetSize(width, height-2)
}

// InputActive implements workspace.InputCapturer.
func (v *Projects) InputActive() bool {
	return v.mode == projectsModeCreate || v.list.Filtering()
}

// IsModal implements workspace.ModalActive. Detail mode consumes Esc to
// return to the list.
func (v *Projects) IsModal() bool {
	return v.mode != projectsModeList || v.list.Filtering()
}

// Init implements tea.Model.
func (v *Projects) Init() tea.Cmd {
	v.list.SetLoading(true)
	return tea.Batch(v.loadProjects(), v.spinner.Tick)
}

func (v *Projects) loadProjects() tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	return func() tea.Msg {
		projects, err := client.Projects().List(ctx)
		return workspace.ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

// loadProgress fans out one task fetch per project and aggregates the
// completion ratios. All fetches settle before the message is sent; a
// project whose fetch failed degrades to a zero ratio rather than
// failing the listing.
func (v *Projects) loadProgress(projects []models.Project) tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	return func() tea.Msg {
		results := data.FanOut(ctx, ids, func(ctx context.Context, id int64) ([]models.Task, error) {
			return client.Projects().Tasks(ctx, id)
		})

		progress := make(map[int64]models.Progress, len(results))
		for _, r := range results {
			if r.Err != nil {
				progress[r.Key] = models.Progress{}
				continue
			}
			p := models.Progress{Total: len(r.Data)}
			for _, task := range r.Data {
				if task.Done() {
					p.Done++
				}
			}
			progress[r.Key] = p
		}
		return workspace.ProgressLoadedMsg{Progress: progress}
	}
}

func (v *Projects) reload() tea.Cmd {
	v.loading = true
	v.list.SetLoading(true)
	return tea.Batch(v.loadProjects(), v.spinner.Tick)
}

// Update implements tea.Model.
func (v *Projects) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.ProjectsLoadedMsg:
		v.loading = false
		v.list.SetLoading(false)
		if msg.Err != nil {
			v.projects = nil
			v.list.SetItems(nil)
			return v, workspace.ReportError(msg.Err, "loading projects")
		}
		v.projects = msg.Projects
		v.syncListItems()
		if len(v.projects) == 0 {
			return v, nil
		}
		return v, v.loadProgress(v.projects)

	case workspace.ProgressLoadedMsg:
		v.progress = msg.Progress
		v.syncListItems()
		return v, nil

	case workspace.ProjectLoadedMsg:
		if msg.Err != nil {
			return v, workspace.ReportError(msg.Err, "loading project")
		}
		v.detail = msg.Project
		// Rendered once on arrival, not per frame.
		v.detailDesc = renderDescription(msg.Project.Description, v.width)
		return v, nil

	case workspace.ProjectTasksLoadedMsg:
		if msg.ProjectID != v.detailID {
			return v, nil // detail changed while the fetch was in flight
		}
		v.detailLoading = false
		if msg.Err != nil {
			return v, workspace.ReportError(msg.Err, "loading project tasks")
		}
		v.detailTasks = msg.Tasks
		if v.detailCursor >= len(v.detailTasks) {
			v.detailCursor = max(0, len(v.detailTasks)-1)
		}
		return v, nil

	case workspace.ProjectSavedMsg:
		v.submitting = false
		if msg.Err != nil {
			return v, workspace.ReportError(msg.Err, msg.Action+" project")
		}
		if msg.Action == "delete" {
			v.closeDetail()
		}
		if v.mode == projectsModeCreate {
			v.mode = projectsModeList
			v.resetForm()
		}
		return v, v.reload()

	case workspace.TaskSavedMsg:
		if msg.Err != nil {
			return v, workspace.ReportError(msg.Err, msg.Action+" task")
		}
		// A task toggled inside the detail changes the project ratio
		// too, so refresh both.
		if v.mode == projectsModeDetail {
			return v, tea.Batch(v.loadDetail(v.detailID), v.loadProgress(v.projects))
		}
		return v, v.reload()

	case workspace.RefreshMsg:
		if v.mode == projectsModeDetail {
			return v, v.loadDetail(v.detailID)
		}
		return v, v.reload()

	case workspace.FocusMsg, workspace.BlurMsg:
		return v, nil

	case confirmExpiredMsg:
		v.deleteConfirm.Update(msg)
		if !v.deleteConfirm.Armed() {
			v.listDeleteID = 0
			v.listDeleteTitle = ""
		}
		return v, nil

	case spinner.TickMsg:
		if !v.loading && !v.detailLoading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

// syncListItems rebuilds the list rows from projects and whatever
// progress has arrived so far.
func (v *Projects) syncListItems() {
	p := v.session.Presenter()

	items := make([]widget.ListItem, len(v.projects))
	for i, project := range v.projects {
		item := widget.ListItem{
			ID:          strconv.FormatInt(project.ID, 10),
			Title:       project.Title,
			Description: project.Description,
		}
		if prog, ok := v.progress[project.ID]; ok {
			item.Extra = p.Progress(prog)
			item.Marked = prog.AllDone()
		}
		items[i] = item
	}
	v.list.SetItems(items)
}

func (v *Projects) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch v.mode {
	case projectsModeCreate:
		return v.handleCreateKey(msg)
	case projectsModeDetail:
		return v.handleDetailKey(msg)
	}

	if v.list.Filtering() {
		v.list.Update(msg)
		return v, nil
	}

	if !key.Matches(msg, v.keys.Delete) {
		v.disarmListDelete()
	}

	switch {
	case key.Matches(msg, v.keys.Delete):
		selected := v.list.Selected()
		if selected == nil {
			return v, nil
		}
		id, err := strconv.ParseInt(selected.ID, 10, 64)
		if err != nil {
			return v, nil
		}
		if id != v.listDeleteID {
			// Armed on one row, pressed again on another.
			v.deleteConfirm.Disarm()
		}
		confirmed, cmd := v.deleteConfirm.Click()
		if !confirmed {
			v.listDeleteID = id
			v.listDeleteTitle = selected.Title
			return v, cmd
		}
		v.listDeleteID = 0
		v.listDeleteTitle = ""
		return v, v.deleteProject(id)

	case key.Matches(msg, v.keys.New):
		v.mode = projectsModeCreate
		v.formFocus = 0
		v.anchorInput.SetValue(dateparse.Today())
		v.focusForm()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Open):
		selected := v.list.Selected()
		if selected == nil {
			return v, nil
		}
		id, err := strconv.ParseInt(selected.ID, 10, 64)
		if err != nil {
			return v, nil
		}
		return v, v.openDetail(id)

	case key.Matches(msg, v.keys.Filter):
		v.list.StartFilter()
		return v, nil
	}

	v.list.Update(msg)
	return v, nil
}

// disarmListDelete cancels a pending list-row delete. Any list key
// other than a repeated Delete press lands here.
func (v *Projects) disarmListDelete() {
	if v.listDeleteID == 0 {
		return
	}
	v.deleteConfirm.Disarm()
	v.listDeleteID = 0
	v.listDeleteTitle = ""
}

// openDetail enters detail mode for a project and fetches it together
// with its tasks.
func (v *Projects) openDetail(id int64) tea.Cmd {
	v.mode = projectsModeDetail
	v.detailID = id
	v.detail = nil
	v.detailTasks = nil
	v.detailCursor = 0
	v.deleteConfirm.Disarm()
	return v.loadDetail(id)
}

func (v *Projects) loadDetail(id int64) tea.Cmd {
	v.detailLoading = true
	ctx := v.session.Context()
	client := v.session.Client()

	fetchProject := func() tea.Msg {
		project, err := client.Projects().Get(ctx, id)
		return workspace.ProjectLoadedMsg{Project: project, Err: err}
	}
	fetchTasks := func() tea.Msg {
		tasks, err := client.Projects().Tasks(ctx, id)
		return workspace.ProjectTasksLoadedMsg{ProjectID: id, Tasks: tasks, Err: err}
	}
	return tea.Batch(fetchProject, fetchTasks, v.spinner.Tick)
}

// closeDetail returns to the list, discarding the detail selection.
func (v *Projects) closeDetail() {
	v.mode = projectsModeList
	v.detailID = 0
	v.detail = nil
	v.detailDesc = ""
	v.detailTasks = nil
	v.detailCursor = 0
	v.deleteConfirm.Disarm()
}

func (v *Projects) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		v.closeDetail()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.deleteConfirm.Disarm()
		if v.detailCursor > 0 {
			v.detailCursor--
		}

	case key.Matches(msg, v.keys.Down):
		v.deleteConfirm.Disarm()
		if v.detailCursor < len(v.detailTasks)-1 {
			v.detailCursor++
		}

	case key.Matches(msg, v.keys.Toggle):
		v.deleteConfirm.Disarm()
		if v.detailCursor >= 0 && v.detailCursor < len(v.detailTasks) {
			return v, v.toggleDetailTask(v.detailTasks[v.detailCursor])
		}

	case key.Matches(msg, v.keys.Delete):
		confirmed, cmd := v.deleteConfirm.Click()
		if !confirmed {
			return v, cmd
		}
		return v, v.deleteProject(v.detailID)
	}

	return v, nil
}

func (v *Projects) toggleDetailTask(task models.Task) tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()

	status := models.StatusDone
	if task.Done() {
		status = models.StatusTodo
	}
	return func() tea.Msg {
		_, err := client.Tasks().SetStatus(ctx, task.ID, status)
		return workspace.TaskSavedMsg{Action: "toggle", Err: err}
	}
}

func (v *Projects) deleteProject(id int64) tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	return func() tea.Msg {
		err := client.Projects().Delete(ctx, id)
		return workspace.ProjectSavedMsg{Action: "delete", Err: err}
	}
}

func (v *Projects) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.mode = projectsModeList
		v.resetForm()
		return v, nil

	case tea.KeyTab, tea.KeyShiftTab:
		delta := 1
		if msg.Type == tea.KeyShiftTab {
			delta = 3 // wrap backwards over 4 fields
		}
		v.formFocus = (v.formFocus + delta) % 4
		v.focusForm()
		return v, textinput.Blink

	case tea.KeyEnter:
		return v, v.submitCreate()
	}

	var cmd tea.Cmd
	switch v.formFocus {
	case 0:
		v.titleInput, cmd = v.titleInput.Update(msg)
	case 1:
		v.anchorInput, cmd = v.anchorInput.Update(msg)
	case 2:
		v.descInput, cmd = v.descInput.Update(msg)
	default:
		v.templateInput, cmd = v.templateInput.Update(msg)
	}
	return v, cmd
}

func (v *Projects) focusForm() {
	inputs := []*textinput.Model{&v.titleInput, &v.anchorInput, &v.descInput, &v.templateInput}
	for i, input := range inputs {
		if i == v.formFocus {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (v *Projects) resetForm() {
	v.titleInput.SetValue("")
	v.anchorInput.SetValue("")
	v.descInput.SetValue("")
	v.templateInput.SetValue("")
	v.titleInput.Blur()
	v.anchorInput.Blur()
	v.descInput.Blur()
	v.templateInput.Blur()
	v.submitting = false
}

func (v *Projects) submitCreate() tea.Cmd {
	if v.submitting {
		return nil
	}

	title := strings.TrimSpace(v.titleInput.Value())
	if title == "" {
		return workspace.SetStatus("title is required", true)
	}
	anchor, err := dateparse.Parse(v.anchorInput.Value())
	if err != nil {
		return workspace.SetStatus(err.Error(), true)
	}

	var templateID int64
	if raw := strings.TrimSpace(v.templateInput.Value()); raw != "" {
		templateID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return workspace.SetStatus("template id must be a number", true)
		}
	}

	v.submitting = true
	ctx := v.session.Context()
	client := v.session.Client()
	req := api.CreateProjectRequest{
		Title:       title,
		AnchorDate:  anchor,
		Description: strings.TrimSpace(v.descInput.Value()),
		TemplateID:  templateID,
	}
	return func() tea.Msg {
		_, err := client.Projects().Create(ctx, req)
		return workspace.ProjectSavedMsg{Action: "create", Err: err}
	}
}

// View implements tea.Model.
func (v *Projects) View() string {
	theme := v.styles.Theme()

	var body string
	switch v.mode {
	case projectsModeDetail:
		body = v.renderDetail(theme)
	case projectsModeCreate:
		body = v.list.View() + "\n\n" + v.renderCreateForm(theme)
	default:
		body = v.list.View()
		if v.deleteConfirm.Armed() && v.listDeleteTitle != "" {
			body += "\n\n" + lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).
				Render(fmt.Sprintf(" Press D again to delete %q and its tasks", v.listDeleteTitle))
		}
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Render(body)
}

func (v *Projects) renderDetail(theme tui.Theme) string {
	p := v.session.Presenter()
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	var b strings.Builder

	if v.detail != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" " + v.detail.Title))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(" Anchor " + v.detail.AnchorDate))
		if v.detailDesc != "" {
			b.WriteString("\n")
			b.WriteString(v.detailDesc)
		}
	} else {
		b.WriteString(v.spinner.View() + " Loading…")
	}
	b.WriteString("\n\n")

	switch {
	case v.detailLoading:
		b.WriteString(v.spinner.View() + " Loading tasks…")
	case len(v.detailTasks) == 0:
		b.WriteString(labelStyle.Render(" No tasks in this project."))
	default:
		done := 0
		for i, task := range v.detailTasks {
			cursor := "  "
			if i == v.detailCursor {
				cursor = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("> ")
			}
			status := p.Status(task)
			if task.Done() {
				done++
				status = lipgloss.NewStyle().Foreground(theme.Success).Render(status)
			}
			line := fmt.Sprintf("%s%s  %s  %s", cursor, status,
				lipgloss.NewStyle().Foreground(theme.Secondary).Render(task.Date),
				task.Description)
			b.WriteString(widget.Truncate(line, v.width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(" Progress " + p.Progress(models.Progress{Done: done, Total: len(v.detailTasks)})))
	}

	b.WriteString("\n\n")
	if v.deleteConfirm.Armed() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).
			Render(" Press D again to delete this project and its tasks"))
	} else {
		b.WriteString(labelStyle.Render(" esc back · x toggle · D delete"))
	}

	return b.String()
}

func (v *Projects) renderCreateForm(theme tui.Theme) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" New project")

	state := ""
	if v.submitting {
		state = labelStyle.Render("  saving…")
	}

	return strings.Join([]string{
		title + state,
		labelStyle.Render("  title:       ") + v.titleInput.View(),
		labelStyle.Render("  anchor date: ") + v.anchorInput.View(),
		labelStyle.Render("  description: ") + v.descInput.View(),
		labelStyle.Render("  template id: ") + v.templateInput.View(),
		labelStyle.Render("  enter save · tab next field · esc cancel"),
	}, "\n")
}
