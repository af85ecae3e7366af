// Package commands implements the dayplan subcommands.
package commands

import (
	"context"
	"os"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/auth"
	"github.com/dayplan/dayplan-cli/internal/config"
	"github.com/dayplan/dayplan-cli/internal/observability"
	"github.com/dayplan/dayplan-cli/internal/output"
)

// GlobalFlags holds the persistent flags shared by every subcommand.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	Styled  bool
	Verbose int
	Stats   bool

	BaseURL  string
	CacheDir string
	NoCache  bool
}

// Format resolves the output format from the flag set.
func (f GlobalFlags) Format() output.Format {
	switch {
	case f.Quiet:
		return output.FormatQuiet
	case f.JSON:
		return output.FormatJSON
	case f.Styled:
		return output.FormatStyled
	default:
		return output.FormatAuto
	}
}

// App bundles the collaborators a command needs: config, auth, the API
// client, the output writer, and the stats collector.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	Client *api.Client
	Out    *output.Writer
	Stats  *observability.Collector
	Flags  GlobalFlags
}

// NewApp wires an app from loaded config and flags.
func NewApp(cfg *config.Config, flags GlobalFlags) *App {
	authMgr := auth.NewManager()
	client := api.NewClient(cfg, authMgr)
	stats := observability.NewCollector()
	client.SetObserver(stats)
	if flags.Verbose > 0 {
		client.SetVerbose(true)
	}

	return &App{
		Config: cfg,
		Auth:   authMgr,
		Client: client,
		Out:    output.New(output.Options{Format: flags.Format()}),
		Stats:  stats,
		Flags:  flags,
	}
}

// OK renders a success response, followed by the stats report when
// requested.
func (a *App) OK(resp *output.Response) error {
	if err := a.Out.Out(resp); err != nil {
		return err
	}
	a.reportStats()
	return nil
}

// Err renders an error in the configured format.
func (a *App) Err(err error) error {
	renderErr := a.Out.Err(err)
	a.reportStats()
	return renderErr
}

func (a *App) reportStats() {
	if a.Flags.Stats {
		a.Stats.WriteReport(os.Stderr)
	}
}

type appKey struct{}

// WithApp stores the app in a context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// FromContext retrieves the app stored by the root command.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey{}).(*App)
	return app
}
