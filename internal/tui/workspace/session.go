package workspace

import (
	"context"
	"sync"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/presenter"
	"github.com/dayplan/dayplan-cli/internal/tui"
)

// Session holds the state shared by all views: the API client, styles,
// the presenter, and the cancellable context with its generation
// counter.
type Session struct {
	client    *api.Client
	styles    *tui.Styles
	presenter *presenter.Presenter

	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
}

// NewSession creates a session around an API client.
func NewSession(client *api.Client) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		client:    client,
		styles:    tui.NewStylesWithTheme(tui.ResolveTheme()),
		presenter: presenter.New(presenter.DetectLocale()),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Client returns the API client.
func (s *Session) Client() *api.Client {
	return s.client
}

// Styles returns the shared TUI styles.
func (s *Session) Styles() *tui.Styles {
	return s.styles
}

// Presenter returns the display formatter.
func (s *Session) Presenter() *presenter.Presenter {
	return s.presenter
}

// Context returns the cancellable context for API calls.
// Thread-safe: called from Cmd goroutines concurrently with ResetContext.
func (s *Session) Context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Generation returns the monotonic generation counter. It advances on
// every navigation, and the workspace discards async results stamped
// with an older generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ResetContext cancels the current context, creates a fresh one, and
// advances the generation. Called on every navigation so in-flight
// fetches from the departed view are both cancelled and, if already
// resolved, discarded by the generation guard.
func (s *Session) ResetContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.generation++
}

// ReloadTheme re-reads the theme from disk and updates the shared
// styles in place.
func (s *Session) ReloadTheme() {
	s.styles.UpdateTheme(tui.ResolveTheme())
}

// Shutdown cancels the session context. Called on program exit.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}

// NewTestSession returns a minimal session for view tests: styles and
// a presenter with a fixed locale, no API client.
func NewTestSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		styles:    tui.NewStyles(),
		presenter: presenter.New(presenter.NewLocale("en_US")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NewTestSessionWithClient returns a test session around a client,
// for tests that drive real fetch commands against a local server.
func NewTestSessionWithClient(client *api.Client) *Session {
	s := NewTestSession()
	s.client = client
	return s
}
