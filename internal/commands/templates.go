package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/output"
)

// NewTemplatesCmd creates the templates command group. Templates are
// read-only; they are consumed via "projects add --template".
func NewTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse task templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesList(cmd)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List templates",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTemplatesList(cmd)
			},
		},
		newTemplatesShowCmd(),
	)

	return cmd
}

func runTemplatesList(cmd *cobra.Command) error {
	app := FromContext(cmd.Context())

	templates, err := app.Client.Templates().List(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, len(templates))
	for i, tmpl := range templates {
		rows[i] = []string{
			strconv.FormatInt(tmpl.ID, 10),
			tmpl.Name,
			fmt.Sprintf("%d", len(tmpl.TaskDefinitions)),
			tmpl.Description,
		}
	}

	return app.OK(&output.Response{
		Summary: fmt.Sprintf("%d template(s)", len(templates)),
		Data:    templates,
		Table: &output.Table{
			Headers: []string{"ID", "Name", "Tasks", "Description"},
			Rows:    rows,
		},
	})
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template's task definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			id, err := parseID(args[0], "template")
			if err != nil {
				return err
			}

			tmpl, err := app.Client.Templates().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			rows := make([][]string, len(tmpl.TaskDefinitions))
			for i, def := range tmpl.TaskDefinitions {
				rows[i] = []string{fmt.Sprintf("%+d", def.Offset), def.Description}
			}

			summary := fmt.Sprintf("%s · %d task(s)", tmpl.Name, len(tmpl.TaskDefinitions))
			if desc := renderMarkdown(tmpl.Description, 78); desc != "" {
				summary += "\n" + desc
			}

			return app.OK(&output.Response{
				Summary: summary,
				Data:    tmpl,
				Table: &output.Table{
					Headers: []string{"Offset", "Description"},
					Rows:    rows,
				},
			})
		},
	}
}
