package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/dateparse"
	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/output"
)

// NewTasksCmd creates the tasks command group.
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage dated tasks",
		Long: `Manage dated tasks.

Dates accept ISO format (2024-06-01) or natural forms like "today",
"tomorrow", "friday", "+3", and "next week".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksList(cmd, "", "", "")
		},
	}

	cmd.AddCommand(
		newTasksListCmd(),
		newTasksAddCmd(),
		newTasksDoneCmd(),
		newTasksUndoneCmd(),
		newTasksEditCmd(),
		newTasksDeleteCmd(),
	)

	return cmd
}

func newTasksListCmd() *cobra.Command {
	var date, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a date or date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksList(cmd, date, from, to)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Single date (default today)")
	cmd.Flags().StringVar(&from, "from", "", "Range start date")
	cmd.Flags().StringVar(&to, "to", "", "Range end date")
	return cmd
}

func runTasksList(cmd *cobra.Command, date, from, to string) error {
	app := FromContext(cmd.Context())

	var filter api.TaskFilter
	switch {
	case from != "" || to != "":
		if from == "" || to == "" {
			return output.ErrUsage("--from and --to must be used together")
		}
		start, err := dateparse.Parse(from)
		if err != nil {
			return err
		}
		end, err := dateparse.Parse(to)
		if err != nil {
			return err
		}
		filter = api.TaskFilter{Start: start, End: end}
	case date != "":
		d, err := dateparse.Parse(date)
		if err != nil {
			return err
		}
		filter = api.TaskFilter{Date: d}
	default:
		filter = api.TaskFilter{Date: dateparse.Today()}
	}

	tasks, err := app.Client.Tasks().List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	return app.OK(&output.Response{
		Summary: taskListSummary(tasks, filter),
		Data:    tasks,
		Table:   taskTable(app, tasks),
	})
}

func taskListSummary(tasks []models.Task, filter api.TaskFilter) string {
	if filter.End != "" {
		return fmt.Sprintf("%d task(s) from %s to %s", len(tasks), filter.Start, filter.End)
	}
	return fmt.Sprintf("%d task(s) on %s", len(tasks), filter.Date)
}

func taskTable(app *App, tasks []models.Task) *output.Table {
	p := presenterFor(app)
	rows := make([][]string, len(tasks))
	for i, task := range tasks {
		rows[i] = []string{
			strconv.FormatInt(task.ID, 10),
			p.Status(task),
			p.Date(task.Date),
			task.Description,
			task.Comment,
		}
	}
	return &output.Table{
		Headers: []string{"ID", "", "Date", "Description", "Comment"},
		Rows:    rows,
	}
}

func newTasksAddCmd() *cobra.Command {
	var date, comment string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			description := strings.TrimSpace(args[0])
			if description == "" {
				return output.ErrUsage("task description must not be empty")
			}

			when := date
			if when == "" {
				when = dateparse.Today()
			}
			parsed, err := dateparse.Parse(when)
			if err != nil {
				return err
			}

			task, err := app.Client.Tasks().Create(cmd.Context(), api.CreateTaskRequest{
				Description: description,
				Date:        parsed,
				Comment:     comment,
			})
			if err != nil {
				return err
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Created task %d on %s", task.ID, task.Date),
				Data:    task,
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Task date (default today)")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Optional comment")
	return cmd
}

func newTasksDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>...",
		Short: "Mark tasks as done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksSetStatus(cmd, args, models.StatusDone)
		},
	}
}

func newTasksUndoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undone <id>...",
		Short: "Mark tasks as not done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksSetStatus(cmd, args, models.StatusTodo)
		},
	}
}

func runTasksSetStatus(cmd *cobra.Command, args []string, status string) error {
	app := FromContext(cmd.Context())

	updated := make([]models.Task, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, "task")
		if err != nil {
			return err
		}
		task, err := app.Client.Tasks().SetStatus(cmd.Context(), id, status)
		if err != nil {
			return err
		}
		updated = append(updated, *task)
	}

	return app.OK(&output.Response{
		Summary: fmt.Sprintf("Marked %d task(s) %s", len(updated), status),
		Data:    updated,
	})
}

func newTasksEditCmd() *cobra.Command {
	var description, comment string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's description or comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			var patch api.TaskPatch
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("comment") {
				// An explicitly empty comment clears it.
				patch.Comment = &comment
			}
			if patch.Description == nil && patch.Comment == nil {
				return output.ErrUsageHint("nothing to update",
					"Pass --description and/or --comment")
			}

			task, err := app.Client.Tasks().Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Updated task %d", task.ID),
				Data:    task,
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&comment, "comment", "", "New comment (empty clears)")
	return cmd
}

func newTasksDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			task, err := app.Client.Tasks().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := confirmPrompt(fmt.Sprintf("Delete task %q (%s)?", task.Description, task.Date))
				if err != nil {
					return err
				}
				if !confirmed {
					return app.OK(&output.Response{Summary: "Canceled"})
				}
			}

			if err := app.Client.Tasks().Delete(cmd.Context(), id); err != nil {
				return err
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Deleted task %d", id),
				Data:    map[string]int64{"id": id},
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

// confirmPrompt blocks on a yes/no form. Nothing is sent before the
// answer, and "no" makes no API call at all.
func confirmPrompt(title string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, output.ErrUsage("confirmation canceled")
	}
	return confirmed, nil
}

func parseID(arg, resource string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, output.ErrUsage(fmt.Sprintf("invalid %s ID: %s", resource, arg))
	}
	return id, nil
}
