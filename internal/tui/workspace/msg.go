// Package workspace provides the persistent TUI application for dayplan.
package workspace

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dayplan/dayplan-cli/internal/models"
)

// Route identifies which top-level view is rendered.
type Route int

const (
	RouteTasks Route = iota
	RouteProjects
	RouteTemplates
)

// String returns the route fragment.
func (r Route) String() string {
	switch r {
	case RouteProjects:
		return "projects"
	case RouteTemplates:
		return "templates"
	default:
		return "tasks"
	}
}

// Title returns the route's navbar label.
func (r Route) Title() string {
	switch r {
	case RouteProjects:
		return "Projects"
	case RouteTemplates:
		return "Templates"
	default:
		return "Tasks"
	}
}

// Routes lists all navigable routes in navbar order.
func Routes() []Route {
	return []Route{RouteTasks, RouteProjects, RouteTemplates}
}

// ParseRoute maps a location fragment to a route. Unknown or empty
// fragments resolve to the default tasks route rather than erroring.
func ParseRoute(fragment string) Route {
	for len(fragment) > 0 && (fragment[0] == '#' || fragment[0] == '/') {
		fragment = fragment[1:]
	}
	switch fragment {
	case "projects":
		return RouteProjects
	case "templates":
		return RouteTemplates
	case "tasks":
		return RouteTasks
	default:
		return RouteTasks
	}
}

// Navigation messages

// NavigateMsg requests navigation to a route. The target view is built
// fresh; any state owned by the previous view is discarded.
type NavigateMsg struct {
	Route Route
}

// Data messages

// TasksLoadedMsg is sent when a task list fetch settles.
type TasksLoadedMsg struct {
	Tasks []models.Task
	Err   error
}

// TaskSavedMsg is sent after any task mutation (create, update, toggle,
// delete). Views respond by reloading their list.
type TaskSavedMsg struct {
	Action string // "create", "update", "toggle", "delete"
	Err    error
}

// ProjectsLoadedMsg is sent when the project list fetch settles.
type ProjectsLoadedMsg struct {
	Projects []models.Project
	Err      error
}

// ProgressLoadedMsg is sent when the per-project progress aggregation
// settles. Every listed project has an entry; projects whose task fetch
// failed carry a zero Progress.
type ProgressLoadedMsg struct {
	Progress map[int64]models.Progress
}

// ProjectLoadedMsg is sent when a single project's detail fetch settles.
type ProjectLoadedMsg struct {
	Project *models.Project
	Err     error
}

// ProjectTasksLoadedMsg is sent when a project's task list settles.
type ProjectTasksLoadedMsg struct {
	ProjectID int64
	Tasks     []models.Task
	Err       error
}

// ProjectSavedMsg is sent after a project mutation.
type ProjectSavedMsg struct {
	Action string // "create", "delete"
	Err    error
}

// TemplatesLoadedMsg is sent when the template list fetch settles.
type TemplatesLoadedMsg struct {
	Templates []models.Template
	Err       error
}

// Chrome messages

// ErrorMsg surfaces an error in the banner. The banner persists until
// dismissed so a failed reload stays visible while the user retries.
type ErrorMsg struct {
	Err     error
	Context string // what was being attempted
}

// StatusMsg sets a transient status bar message.
type StatusMsg struct {
	Text    string
	IsError bool
}

// SessionExpiredMsg is sent when the API rejects the session token.
// The workspace stops issuing loads and tells the user to log in again.
type SessionExpiredMsg struct{}

// RefreshMsg requests a data refresh for the current view.
type RefreshMsg struct{}

// FocusMsg indicates a view gained focus.
type FocusMsg struct{}

// BlurMsg indicates a view lost focus.
type BlurMsg struct{}

// ThemeReloadedMsg is sent when the theme file changes on disk.
type ThemeReloadedMsg struct{}

// Generation guard

// GenerationMsg wraps an async result with the session generation at
// Cmd creation time. The workspace drops results whose generation no
// longer matches, so a fetch dispatched by a previous view can never
// write into the current one after fast navigation.
type GenerationMsg struct {
	Generation uint64
	Inner      tea.Msg
}

// Command factories

// Navigate returns a command that sends a NavigateMsg.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route}
	}
}

// ReportError returns a command that sends an ErrorMsg.
func ReportError(err error, context string) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err, Context: context}
	}
}

// SetStatus returns a command that sets a status message.
func SetStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, IsError: isError}
	}
}
