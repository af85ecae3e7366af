package views

import "github.com/dayplan/dayplan-cli/internal/tui/workspace"

// Factory builds the view for each route.
func Factory(route workspace.Route, session *workspace.Session) workspace.View {
	switch route {
	case workspace.RouteProjects:
		return NewProjects(session)
	case workspace.RouteTemplates:
		return NewTemplates(session)
	default:
		return NewTasks(session)
	}
}
