package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/output"
)

// NewConfigCmd creates the config command showing the effective
// configuration and where each value came from.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())
			cfg := app.Config

			values := map[string]string{
				"base_url":  cfg.BaseURL,
				"cache_dir": cfg.CacheDir,
				"format":    cfg.Format,
			}
			if !cfg.CacheEnabled {
				values["cache"] = "disabled"
			}

			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				source := cfg.Sources[k]
				if source == "" {
					source = "default"
				}
				rows = append(rows, []string{k, values[k], source})
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("%d setting(s)", len(rows)),
				Data: map[string]any{
					"config":  values,
					"sources": cfg.Sources,
				},
				Table: &output.Table{
					Headers: []string{"Key", "Value", "Source"},
					Rows:    rows,
				},
			})
		},
	}
}
