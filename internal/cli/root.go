// Package cli assembles the root command.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dayplan/dayplan-cli/internal/commands"
	"github.com/dayplan/dayplan-cli/internal/config"
	"github.com/dayplan/dayplan-cli/internal/output"
	"github.com/dayplan/dayplan-cli/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags commands.GlobalFlags

	cmd := &cobra.Command{
		Use:           "dayplan",
		Short:         "Terminal client for the Dayplan API",
		Long:          "dayplan manages dated tasks, projects, and templates from the terminal,\nas scripted subcommands or an interactive workspace (dayplan tui).",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				BaseURL:  flags.BaseURL,
				CacheDir: flags.CacheDir,
			})
			if err != nil {
				return err
			}
			if flags.NoCache {
				cfg.CacheEnabled = false
			}

			app := commands.NewApp(cfg, flags)
			cmd.SetContext(commands.WithApp(cmd.Context(), app))
			return nil
		},
	}

	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)
	registerGlobalFlags(cmd.PersistentFlags(), &flags)

	cmd.AddCommand(
		commands.NewTasksCmd(),
		commands.NewProjectsCmd(),
		commands.NewTemplatesCmd(),
		commands.NewAuthCmd(),
		commands.NewAPICmd(),
		commands.NewConfigCmd(),
		commands.NewTUICmd(),
	)

	return cmd
}

// registerGlobalFlags binds the persistent flags shared by every
// subcommand.
func registerGlobalFlags(fs *pflag.FlagSet, flags *commands.GlobalFlags) {
	fs.BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	fs.BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	fs.CountVarP(&flags.Verbose, "verbose", "v", "Verbose request logging")
	fs.BoolVar(&flags.Stats, "stats", false, "Show request statistics on stderr")
	fs.StringVar(&flags.BaseURL, "base-url", "", "Dayplan API base URL")
	fs.StringVar(&flags.CacheDir, "cache-dir", "", "Cache directory")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "Disable the response cache")
}

// Execute runs the root command and exits with the error's code on
// failure.
func Execute() {
	cmd := NewRootCmd()

	executed, err := cmd.ExecuteC()
	if err == nil {
		return
	}

	err = normalizeCobraError(err)
	apiErr := output.AsError(err)

	if app := commands.FromContext(executed.Context()); app != nil {
		_ = app.Err(err)
	} else {
		writer := output.New(output.Options{Writer: os.Stdout})
		_ = writer.Err(err)
	}

	os.Exit(apiErr.ExitCode())
}

// normalizeCobraError maps cobra's flag and argument errors into the
// usage error taxonomy so they exit with the usage code.
func normalizeCobraError(err error) error {
	msg := err.Error()

	switch {
	case strings.HasPrefix(msg, "unknown flag: "),
		strings.HasPrefix(msg, "unknown shorthand flag: "),
		strings.HasPrefix(msg, "unknown command "),
		strings.HasPrefix(msg, "flag needs an argument: "),
		strings.Contains(msg, "invalid argument"),
		strings.Contains(msg, "arg(s)"):
		return output.ErrUsage(msg)
	}

	return err
}
