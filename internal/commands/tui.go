package commands

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/tui"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/views"
)

// NewTUICmd creates the tui command, the interactive workspace.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:       "tui [tasks|projects|templates]",
		Short:     "Open the interactive workspace",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"tasks", "projects", "templates"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			route := workspace.RouteTasks
			if len(args) > 0 {
				route = workspace.ParseRoute(args[0])
			}

			session := workspace.NewSession(app.Client)
			defer session.Shutdown()

			ws := workspace.New(session, views.Factory, route)
			p := tea.NewProgram(ws, tea.WithAltScreen())

			// A rejected token anywhere in the app surfaces once.
			app.Client.OnUnauthorized(func() {
				p.Send(workspace.SessionExpiredMsg{})
			})

			stop := tui.WatchTheme(tui.UserThemePath(), func() {
				p.Send(workspace.ThemeReloadedMsg{})
			})
			defer stop()

			if _, err := p.Run(); err != nil {
				return err
			}

			if app.Flags.Stats {
				app.Stats.WriteReport(os.Stderr)
			}
			return nil
		},
	}
}
