package views

import (
	"fmt"
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
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/widget"
)

// tasksKeyMap defines task-view keybindings.
type tasksKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	New       key.Binding
	EditDesc  key.Binding
	EditNote  key.Binding
	Delete    key.Binding
	RangeMode key.Binding
	SetDate   key.Binding
	SetEnd    key.Binding
	Today     key.Binding
}

func defaultTasksKeyMap() tasksKeyMap {
	return tasksKeyMap{
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
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		EditDesc: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit description"),
		),
		EditNote: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "edit comment"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		RangeMode: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "range on/off"),
		),
		SetDate: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set date"),
		),
		SetEnd: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "set end date"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

// tasksMode tracks which input flow, if any, owns the keyboard.
type tasksMode int

const (
	tasksModeNormal tasksMode = iota
	tasksModeCreate
	tasksModeEditCell
	tasksModeEditDate
	tasksModeConfirm
)

// dateTarget selects which filter date the date input edits.
type dateTarget int

const (
	dateTargetStart dateTarget = iota
	dateTargetEnd
)

// Tasks is the dated-task view: date filter, list, inline edit, and
// row actions.
type Tasks struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    tasksKeyMap

	width, height int

	// Filter state machine. In single mode only singleDate drives the
	// query; in range mode rangeStart and rangeEnd do. prevRangeEnd
	// remembers the end date across a range-off/range-on round trip.
	rangeMode    bool
	singleDate   string
	rangeStart   string
	rangeEnd     string
	prevRangeEnd string

	tasks   []models.Task
	cursor  int
	loading bool
	spinner spinner.Model

	mode tasksMode

	// Create form
	descInput    textinput.Model
	dateInput    textinput.Model
	commentInput textinput.Model
	formFocus    int
	submitting   bool

	// Inline edit
	edit      *EditSession
	editInput textinput.Model

	// Delete confirmation
	deleteTarget *models.Task

	// Date filter input
	filterInput textinput.Model
	dateTarget  dateTarget
}

// NewTasks creates the task view with the filter set to today.
func NewTasks(session *workspace.Session) *Tasks {
	styles := session.Styles()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 256

	date := textinput.New()
	date.Placeholder = "Date (today, +3, 2024-06-01)"
	date.CharLimit = 32

	comment := textinput.New()
	comment.Placeholder = "Comment (optional)"
	comment.CharLimit = 256

	edit := textinput.New()
	edit.CharLimit = 256

	filter := textinput.New()
	filter.CharLimit = 32

	return &Tasks{
		session:      session,
		styles:       styles,
		keys:         defaultTasksKeyMap(),
		singleDate:   dateparse.Today(),
		loading:      true,
		spinner:      s,
		descInput:    desc,
		dateInput:    date,
		commentInput: comment,
		editInput:    edit,
		filterInput:  filter,
	}
}

// Title implements workspace.View.
func (v *Tasks) Title() string { return "Tasks" }

// ShortHelp implements workspace.View.
func (v *Tasks) ShortHelp() []key.Binding {
	return []key.Binding{v.keys.Toggle, v.keys.New, v.keys.EditDesc, v.keys.Delete, v.keys.RangeMode, v.keys.Today}
}

// SetSize implements workspace.View.
func (v *Tasks) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// InputActive implements workspace.InputCapturer.
func (v *Tasks) InputActive() bool {
	return v.mode == tasksModeCreate || v.mode == tasksModeEditCell || v.mode == tasksModeEditDate
}

// IsModal implements workspace.ModalActive.
func (v *Tasks) IsModal() bool {
	return v.mode != tasksModeNormal
}

// Init implements tea.Model.
func (v *Tasks) Init() tea.Cmd {
	return tea.Batch(v.loadTasks(), v.spinner.Tick)
}

// currentFilter builds the query for the active filter mode.
func (v *Tasks) currentFilter() api.TaskFilter {
	if v.rangeMode {
		return api.TaskFilter{Start: v.rangeStart, End: v.rangeEnd}
	}
	return api.TaskFilter{Date: v.singleDate}
}

// loadTasks issues the list query. Context, client, and filter are
// captured before the closure so a later navigation cannot change what
// this command queries.
func (v *Tasks) loadTasks() tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	filter := v.currentFilter()
	return func() tea.Msg {
		tasks, err := client.Tasks().List(ctx, filter)
		return workspace.TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

func (v *Tasks) reload() tea.Cmd {
	v.loading = true
	return tea.Batch(v.loadTasks(), v.spinner.Tick)
}

// Update implements tea.Model.
func (v *Tasks) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.TasksLoadedMsg:
		v.loading = false
		// A reload discards any live edit or confirm session: the
		// rows they pointed into no longer exist.
		v.closeEdit()
		if v.mode == tasksModeConfirm {
			v.mode = tasksModeNormal
			v.deleteTarget = nil
		}
		if msg.Err != nil {
			v.tasks = nil
			return v, workspace.ReportError(msg.Err, "loading tasks")
		}
		v.tasks = msg.Tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case workspace.TaskSavedMsg:
		v.submitting = false
		if msg.Err != nil {
			// A failed inline edit reverts the cell; the session is
			// already closed by the commit path keeping Original.
			v.closeEdit()
			return v, workspace.ReportError(msg.Err, msg.Action+" task")
		}
		if v.edit != nil {
			v.edit.Apply(EventSaved)
			v.closeEdit()
		}
		if msg.Action == "create" {
			// Keep the form open for rapid entry, clearing the text
			// fields but not the date.
			v.descInput.SetValue("")
			v.commentInput.SetValue("")
		}
		return v, v.reload()

	case workspace.RefreshMsg:
		return v, v.reload()

	case workspace.FocusMsg, workspace.BlurMsg:
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
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

func (v *Tasks) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch v.mode {
	case tasksModeCreate:
		return v.handleCreateKey(msg)
	case tasksModeEditCell:
		return v.handleEditKey(msg)
	case tasksModeEditDate:
		return v.handleDateKey(msg)
	case tasksModeConfirm:
		return v.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}

	case key.Matches(msg, v.keys.Toggle):
		if task := v.selectedTask(); task != nil {
			return v, v.toggleTask(*task)
		}

	case key.Matches(msg, v.keys.New):
		v.mode = tasksModeCreate
		v.formFocus = 0
		v.dateInput.SetValue(v.defaultCreateDate())
		v.descInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.EditDesc):
		return v, v.openEdit(FieldDescription)

	case key.Matches(msg, v.keys.EditNote):
		return v, v.openEdit(FieldComment)

	case key.Matches(msg, v.keys.Delete):
		if task := v.selectedTask(); task != nil {
			v.mode = tasksModeConfirm
			v.deleteTarget = task
		}

	case key.Matches(msg, v.keys.RangeMode):
		return v, v.toggleRange()

	case key.Matches(msg, v.keys.SetDate):
		v.mode = tasksModeEditDate
		v.dateTarget = dateTargetStart
		if v.rangeMode {
			v.filterInput.SetValue(v.rangeStart)
		} else {
			v.filterInput.SetValue(v.singleDate)
		}
		v.filterInput.CursorEnd()
		v.filterInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.SetEnd):
		if !v.rangeMode {
			return v, nil
		}
		v.mode = tasksModeEditDate
		v.dateTarget = dateTargetEnd
		v.filterInput.SetValue(v.rangeEnd)
		v.filterInput.CursorEnd()
		v.filterInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Today):
		today := dateparse.Today()
		if v.rangeMode {
			v.rangeStart = today
			v.rangeEnd = today
		} else {
			v.singleDate = today
		}
		return v, v.reload()
	}

	return v, nil
}

// toggleRange flips the filter mode. Turning range on seeds the range
// from the single date, restoring the previous end date when one is
// remembered; turning it off preserves the end date for the next
// round trip.
func (v *Tasks) toggleRange() tea.Cmd {
	if v.rangeMode {
		v.rangeMode = false
		v.prevRangeEnd = v.rangeEnd
		return v.reload()
	}
	v.rangeMode = true
	v.rangeStart = v.singleDate
	if v.prevRangeEnd != "" {
		v.rangeEnd = v.prevRangeEnd
	} else {
		v.rangeEnd = v.singleDate
	}
	return v.reload()
}

func (v *Tasks) selectedTask() *models.Task {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return nil
	}
	task := v.tasks[v.cursor]
	return &task
}

func (v *Tasks) defaultCreateDate() string {
	if v.rangeMode {
		return v.rangeStart
	}
	return v.singleDate
}

// openEdit starts an inline edit session on the selected row. A live
// session makes this a no-op, so a second edit key cannot spawn a
// duplicate input.
func (v *Tasks) openEdit(field EditField) tea.Cmd {
	if v.edit != nil {
		return nil
	}
	task := v.selectedTask()
	if task == nil {
		return nil
	}

	original := task.Description
	if field == FieldComment {
		original = task.Comment
	}

	v.edit = NewEditSession(task.ID, field, original)
	v.mode = tasksModeEditCell
	v.editInput.SetValue(original)
	v.editInput.CursorEnd()
	v.editInput.Focus()
	return textinput.Blink
}

func (v *Tasks) closeEdit() {
	v.edit = nil
	v.editInput.Blur()
	if v.mode == tasksModeEditCell {
		v.mode = tasksModeNormal
	}
}

func (v *Tasks) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.edit == nil {
		v.mode = tasksModeNormal
		return v, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		v.edit.Value = v.editInput.Value()
		switch v.edit.Apply(EventCommit) {
		case EffectCommit:
			return v, v.commitEdit()
		case EffectCancel:
			v.closeEdit()
		}
		return v, nil

	case tea.KeyEsc:
		if v.edit.Apply(EventCancel) == EffectCancel {
			v.closeEdit()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.editInput, cmd = v.editInput.Update(msg)
	return v, cmd
}

// commitEdit issues the partial update for the edited field.
func (v *Tasks) commitEdit() tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	taskID := v.edit.TaskID
	field := v.edit.Field
	value := v.edit.Value

	return func() tea.Msg {
		var patch api.TaskPatch
		if field == FieldDescription {
			patch.Description = &value
		} else {
			patch.Comment = &value
		}
		_, err := client.Tasks().Update(ctx, taskID, patch)
		return workspace.TaskSavedMsg{Action: "update", Err: err}
	}
}

func (v *Tasks) toggleTask(task models.Task) tea.Cmd {
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

func (v *Tasks) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := v.deleteTarget
	v.mode = tasksModeNormal
	v.deleteTarget = nil

	if target == nil {
		return v, nil
	}
	switch msg.String() {
	case "y", "Y":
		return v, v.deleteTask(target.ID)
	}
	return v, nil
}

func (v *Tasks) deleteTask(id int64) tea.Cmd {
	ctx := v.session.Context()
	client := v.session.Client()
	return func() tea.Msg {
		err := client.Tasks().Delete(ctx, id)
		return workspace.TaskSavedMsg{Action: "delete", Err: err}
	}
}

func (v *Tasks) handleDateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		date, err := dateparse.Parse(v.filterInput.Value())
		if err != nil {
			return v, workspace.SetStatus(err.Error(), true)
		}
		v.mode = tasksModeNormal
		v.filterInput.Blur()
		if v.dateTarget == dateTargetEnd {
			v.rangeEnd = date
		} else {
			// The start field drives both modes: the single date always
			// follows it, so leaving range mode keeps the edited date.
			v.singleDate = date
			if v.rangeMode {
				v.rangeStart = date
			}
		}
		return v, v.reload()

	case tea.KeyEsc:
		v.mode = tasksModeNormal
		v.filterInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.filterInput, cmd = v.filterInput.Update(msg)
	return v, cmd
}

func (v *Tasks) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.mode = tasksModeNormal
		v.blurForm()
		return v, nil

	case tea.KeyTab, tea.KeyShiftTab:
		delta := 1
		if msg.Type == tea.KeyShiftTab {
			delta = 2 // wrap backwards over 3 fields
		}
		v.formFocus = (v.formFocus + delta) % 3
		v.focusForm()
		return v, textinput.Blink

	case tea.KeyEnter:
		return v, v.submitCreate()
	}

	var cmd tea.Cmd
	switch v.formFocus {
	case 0:
		v.descInput, cmd = v.descInput.Update(msg)
	case 1:
		v.dateInput, cmd = v.dateInput.Update(msg)
	default:
		v.commentInput, cmd = v.commentInput.Update(msg)
	}
	return v, cmd
}

func (v *Tasks) focusForm() {
	v.descInput.Blur()
	v.dateInput.Blur()
	v.commentInput.Blur()
	switch v.formFocus {
	case 0:
		v.descInput.Focus()
	case 1:
		v.dateInput.Focus()
	default:
		v.commentInput.Focus()
	}
}

func (v *Tasks) blurForm() {
	v.descInput.Blur()
	v.dateInput.Blur()
	v.commentInput.Blur()
}

// submitCreate validates locally and issues the create. The control is
// disabled while the call is outstanding so Enter cannot double-submit.
func (v *Tasks) submitCreate() tea.Cmd {
	if v.submitting {
		return nil
	}

	desc := strings.TrimSpace(v.descInput.Value())
	if desc == "" {
		return workspace.SetStatus("description is required", true)
	}
	date, err := dateparse.Parse(v.dateInput.Value())
	if err != nil {
		return workspace.SetStatus(err.Error(), true)
	}

	v.submitting = true
	ctx := v.session.Context()
	client := v.session.Client()
	req := api.CreateTaskRequest{
		Description: desc,
		Date:        date,
		Comment:     strings.TrimSpace(v.commentInput.Value()),
	}
	return func() tea.Msg {
		_, err := client.Tasks().Create(ctx, req)
		return workspace.TaskSavedMsg{Action: "create", Err: err}
	}
}

// View implements tea.Model.
func (v *Tasks) View() string {
	theme := v.styles.Theme()

	var b strings.Builder
	b.WriteString(v.renderFilterBar(theme))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.spinner.View() + " Loading…")
	case len(v.tasks) == 0:
		b.WriteString(v.renderEmpty(theme))
	default:
		b.WriteString(v.renderTable(theme))
	}

	if v.mode == tasksModeCreate {
		b.WriteString("\n\n")
		b.WriteString(v.renderCreateForm(theme))
	}
	if v.mode == tasksModeConfirm && v.deleteTarget != nil {
		b.WriteString("\n\n")
		prompt := fmt.Sprintf("Delete %q? (y/n)", v.deleteTarget.Description)
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(prompt))
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Render(b.String())
}

func (v *Tasks) renderFilterBar(theme tui.Theme) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

	var parts []string
	if v.rangeMode {
		start, end := v.rangeStart, v.rangeEnd
		parts = append(parts,
			labelStyle.Render("Range ")+valueStyle.Render(start)+labelStyle.Render(" → ")+valueStyle.Render(end))
	} else {
		parts = append(parts, labelStyle.Render("Date ")+valueStyle.Render(v.singleDate))
	}

	if v.mode == tasksModeEditDate {
		which := "date"
		if v.dateTarget == dateTargetEnd {
			which = "end date"
		}
		parts = append(parts, labelStyle.Render(which+": ")+v.filterInput.View())
	}

	return " " + strings.Join(parts, "   ")
}

func (v *Tasks) renderEmpty(theme tui.Theme) string {
	style := lipgloss.NewStyle().Foreground(theme.Muted)
	if v.rangeMode {
		return style.Render(fmt.Sprintf(" No tasks between %s and %s.", v.rangeStart, v.rangeEnd))
	}
	return style.Render(fmt.Sprintf(" No tasks on %s.", v.singleDate))
}

func (v *Tasks) renderTable(theme tui.Theme) string {
	p := v.session.Presenter()

	doneStyle := lipgloss.NewStyle().Foreground(theme.Muted).Strikethrough(true)
	todoStyle := lipgloss.NewStyle().Foreground(theme.Foreground)
	dateStyle := lipgloss.NewStyle().Foreground(theme.Secondary)
	commentStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	markStyle := lipgloss.NewStyle().Foreground(theme.Success)

	var rows []string
	for i, task := range v.tasks {
		selected := i == v.cursor

		cursor := "  "
		if selected {
			cursor = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("> ")
		}

		status := p.Status(task)
		if task.Done() {
			status = markStyle.Render(status)
		}

		descCell := v.renderCell(task, FieldDescription, selected, task.Done(), doneStyle, todoStyle)
		commentCell := v.renderCell(task, FieldComment, selected, false, commentStyle, commentStyle)

		line := fmt.Sprintf("%s%s  %s  %s", cursor, status, dateStyle.Render(task.Date), descCell)
		if commentCell != "" {
			line += commentStyle.Render("  — ") + commentCell
		}
		rows = append(rows, widget.Truncate(line, v.width))
	}

	return strings.Join(rows, "\n")
}

// renderCell renders a task cell, substituting the live edit input
// when this cell owns the edit session.
func (v *Tasks) renderCell(task models.Task, field EditField, selected, done bool, doneStyle, plainStyle lipgloss.Style) string {
	if v.edit != nil && v.edit.TaskID == task.ID && v.edit.Field == field {
		return v.editInput.View()
	}

	text := task.Description
	if field == FieldComment {
		text = task.Comment
	}
	if text == "" {
		return ""
	}
	if done {
		return doneStyle.Render(text)
	}
	if selected {
		return plainStyle.Bold(true).Render(text)
	}
	return plainStyle.Render(text)
}

func (v *Tasks) renderCreateForm(theme tui.Theme) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" New task")

	state := ""
	if v.submitting {
		state = labelStyle.Render("  saving…")
	}

	return strings.Join([]string{
		title + state,
		labelStyle.Render("  description: ") + v.descInput.View(),
		labelStyle.Render("  date:        ") + v.dateInput.View(),
		labelStyle.Render("  comment:     ") + v.commentInput.View(),
		labelStyle.Render("  enter save · tab next field · esc cancel"),
	}, "\n")
}
