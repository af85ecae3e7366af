package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the session token",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		Long: `Store a session token.

The token is kept in the OS keyring when available, falling back to a
file readable only by the current user. Pass --token for scripted use
or enter it at the prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			if token == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Session token").
						EchoMode(huh.EchoModePassword).
						Value(&token),
				))
				if err := form.Run(); err != nil {
					return output.ErrUsage("login canceled")
				}
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return output.ErrUsage("token must not be empty")
			}

			if err := app.Auth.SetToken(token); err != nil {
				return err
			}

			// Verify the token before reporting success.
			if _, err := app.Client.Get(cmd.Context(), "/tasks?date=1970-01-01"); err != nil {
				_ = app.Auth.Clear()
				return err
			}

			return app.OK(&output.Response{Summary: "Logged in"})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token (prompted when omitted)")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			if err := app.Auth.Clear(); err != nil {
				return err
			}
			return app.OK(&output.Response{Summary: "Logged out"})
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			if !app.Auth.LoggedIn() {
				return output.ErrAuth("not logged in")
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("Logged in (API %s)", app.Config.BaseURL),
				Data: map[string]any{
					"logged_in": true,
					"base_url":  app.Config.BaseURL,
				},
			})
		},
	}
}
