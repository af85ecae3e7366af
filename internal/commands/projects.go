package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/dateparse"
	"github.com/dayplan/dayplan-cli/internal/models"
	"github.com/dayplan/dayplan-cli/internal/output"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/data"
)

// NewProjectsCmd creates the projects command group.
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		Long: `Manage projects.

A project bundles tasks around an anchor date, optionally seeded from a
template at creation time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd, false)
		},
	}

	cmd.AddCommand(
		newProjectsListCmd(),
		newProjectsAddCmd(),
		newProjectsShowCmd(),
		newProjectsDeleteCmd(),
	)

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd, progress)
		},
	}

	cmd.Flags().BoolVar(&progress, "progress", false, "Include per-project completion ratios")
	return cmd
}

// projectListing is a project with its optional derived ratio.
type projectListing struct {
	models.Project
	Done  *int `json:"done,omitempty"`
	Total *int `json:"total,omitempty"`
}

func runProjectsList(cmd *cobra.Command, withProgress bool) error {
	app := FromContext(cmd.Context())

	projects, err := app.Client.Projects().List(cmd.Context())
	if err != nil {
		return err
	}

	var ratios map[int64]models.Progress
	if withProgress {
		ratios = aggregateProgress(cmd.Context(), app, projects)
	}

	listings := make([]projectListing, len(projects))
	rows := make([][]string, len(projects))
	p := presenterFor(app)
	for i, project := range projects {
		listings[i] = projectListing{Project: project}
		badge := ""
		if prog, ok := ratios[project.ID]; ok {
			done, total := prog.Done, prog.Total
			listings[i].Done = &done
			listings[i].Total = &total
			badge = p.Progress(prog)
			if prog.AllDone() {
				badge += " ✓"
			}
		}
		rows[i] = []string{
			strconv.FormatInt(project.ID, 10),
			project.Title,
			p.Date(project.AnchorDate),
			badge,
		}
	}

	headers := []string{"ID", "Title", "Anchor", ""}
	if withProgress {
		headers[3] = "Progress"
	}

	return app.OK(&output.Response{
		Summary: fmt.Sprintf("%d project(s)", len(projects)),
		Data:    listings,
		Table:   &output.Table{Headers: headers, Rows: rows},
	})
}

// aggregateProgress fans out one task fetch per project and folds the
// results into ratios. A failed fetch degrades that project to 0/0
// without failing the listing.
func aggregateProgress(ctx context.Context, app *App, projects []models.Project) map[int64]models.Progress {
	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	results := data.FanOut(ctx, ids, func(ctx context.Context, id int64) ([]models.Task, error) {
		return app.Client.Projects().Tasks(ctx, id)
	})

	ratios := make(map[int64]models.Progress, len(results))
	for _, r := range results {
		if r.Err != nil {
			ratios[r.Key] = models.Progress{}
			continue
		}
		prog := models.Progress{Total: len(r.Data)}
		for _, task := range r.Data {
			if task.Done() {
				prog.Done++
			}
		}
		ratios[r.Key] = prog
	}
	return ratios
}

func newProjectsAddCmd() *cobra.Command {
	var title, anchor, description string
	var templateID int64

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a project",
		Long: `Create a project.

With no arguments and a terminal attached, opens an interactive form
with a template picker. Otherwise title and --anchor drive the creation
directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			if len(args) > 0 {
				title = args[0]
			}

			if title == "" {
				if err := projectForm(cmd.Context(), app, &title, &anchor, &description, &templateID); err != nil {
					return err
				}
			}
			if anchor == "" {
				anchor = dateparse.Today()
			}
			anchorDate, err := dateparse.Parse(anchor)
			if err != nil {
				return err
			}

			project, err := app.Client.Projects().Create(cmd.Context(), api.CreateProjectRequest{
				Title:       title,
				AnchorDate:  anchorDate,
				Description: description,
				TemplateID:  templateID,
			})
			if err != nil {
				return err
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Created project %d: %s", project.ID, project.Title),
				Data:    project,
			})
		},
	}

	cmd.Flags().StringVar(&anchor, "anchor", "", "Anchor date (default today)")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().Int64Var(&templateID, "template", 0, "Template ID to seed tasks from")
	return cmd
}

// projectForm collects project fields interactively, offering the
// available templates in a picker.
func projectForm(ctx context.Context, app *App, title, anchor, description *string, templateID *int64) error {
	templates, err := app.Client.Templates().List(ctx)
	if err != nil {
		return err
	}

	options := []huh.Option[int64]{huh.NewOption("None", int64(0))}
	for _, tmpl := range templates {
		label := fmt.Sprintf("%s (%d tasks)", tmpl.Name, len(tmpl.TaskDefinitions))
		options = append(options, huh.NewOption(label, tmpl.ID))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("title is required")
				}
				return nil
			}).
			Value(title),
		huh.NewInput().
			Title("Anchor date").
			Description("ISO date or natural form (today, +7, friday)").
			Value(anchor),
		huh.NewInput().
			Title("Description").
			Value(description),
		huh.NewSelect[int64]().
			Title("Template").
			Options(options...).
			Value(templateID),
	))
	if err := form.Run(); err != nil {
		return output.ErrUsage("project creation canceled")
	}
	return nil
}

func newProjectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its tasks and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			project, err := app.Client.Projects().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			tasks, err := app.Client.Projects().Tasks(cmd.Context(), id)
			if err != nil {
				return err
			}

			prog := models.Progress{Total: len(tasks)}
			for _, task := range tasks {
				if task.Done() {
					prog.Done++
				}
			}

			p := presenterFor(app)
			summary := fmt.Sprintf("%s · anchor %s · %s", project.Title, p.Date(project.AnchorDate), p.Progress(prog))
			if desc := renderMarkdown(project.Description, 78); desc != "" {
				summary += "\n" + desc
			}

			return app.OK(&output.Response{
				Summary: summary,
				Data: map[string]any{
					"project":  project,
					"tasks":    tasks,
					"progress": map[string]int{"done": prog.Done, "total": prog.Total},
				},
				Table: taskTable(app, tasks),
			})
		},
	}
}

func newProjectsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			project, err := app.Client.Projects().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := confirmPrompt(fmt.Sprintf("Delete project %q and all its tasks?", project.Title))
				if err != nil {
					return err
				}
				if !confirmed {
					return app.OK(&output.Response{Summary: "Canceled"})
				}
			}

			if err := app.Client.Projects().Delete(cmd.Context(), id); err != nil {
				return err
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Deleted project %d", id),
				Data:    map[string]int64{"id": id},
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
