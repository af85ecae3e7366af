package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayplan/dayplan-cli/internal/tui"
	"github.com/dayplan/dayplan-cli/internal/tui/workspace/chrome"
)

// chromeHeight is the vertical space reserved for navbar, banner, and
// status bar.
const chromeHeight = 3

// Workspace is the root tea.Model for the TUI application.
type Workspace struct {
	session *Session
	router  *Router
	styles  *tui.Styles
	keys    GlobalKeyMap

	navbar    chrome.Navbar
	banner    chrome.Banner
	statusBar chrome.StatusBar

	initialRoute   Route
	sessionExpired bool
	quitting       bool
	width, height  int
}

// New creates a workspace that opens on the given route.
func New(session *Session, factory ViewFactory, initial Route) *Workspace {
	styles := session.Styles()

	labels := make([]string, 0, len(Routes()))
	for _, r := range Routes() {
		labels = append(labels, r.Title())
	}

	return &Workspace{
		session:      session,
		router:       NewRouter(session, factory),
		styles:       styles,
		keys:         DefaultGlobalKeyMap(),
		navbar:       chrome.NewNavbar(styles, labels),
		banner:       chrome.NewBanner(styles),
		statusBar:    chrome.NewStatusBar(styles),
		initialRoute: initial,
	}
}

// Init implements tea.Model.
func (w *Workspace) Init() tea.Cmd {
	return w.navigate(w.initialRoute)
}

// Update implements tea.Model.
func (w *Workspace) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.relayout()
		return w, nil

	case tea.KeyMsg:
		return w, w.handleKey(msg)

	case GenerationMsg:
		if msg.Generation != w.session.Generation() {
			return w, nil // stale result from a departed view
		}
		return w.Update(msg.Inner)

	case NavigateMsg:
		return w, w.navigate(msg.Route)

	case ErrorMsg:
		text := msg.Err.Error()
		if msg.Context != "" {
			text = msg.Context + ": " + text
		}
		w.banner.ShowError(text)
		return w, nil

	case StatusMsg:
		if msg.IsError {
			w.banner.ShowError(msg.Text)
			return w, nil
		}
		return w, w.banner.ShowSuccess(msg.Text)

	case SessionExpiredMsg:
		w.sessionExpired = true
		w.banner.ShowError("Session expired. Run: dayplan auth login")
		return w, nil

	case ThemeReloadedMsg:
		w.session.ReloadTheme()
		return w, nil

	case RefreshMsg:
		return w, w.forward(msg)
	}

	// Banner ticks
	if cmd := w.banner.Update(msg); cmd != nil {
		return w, cmd
	}

	return w, w.forward(msg)
}

func (w *Workspace) handleKey(msg tea.KeyMsg) tea.Cmd {
	// ctrl+c always quits, even during input capture.
	if msg.String() == "ctrl+c" {
		w.quitting = true
		return tea.Quit
	}

	// When a view is capturing text input, single-key globals must
	// reach the input instead.
	if view := w.router.Current(); view != nil {
		if ic, ok := view.(InputCapturer); ok && ic.InputActive() {
			return w.forward(msg)
		}
	}

	switch {
	case key.Matches(msg, w.keys.Quit):
		w.quitting = true
		return tea.Quit

	case key.Matches(msg, w.keys.Dismiss):
		if w.banner.Visible() {
			w.banner.Dismiss()
			return nil
		}

	case key.Matches(msg, w.keys.Back):
		// Views with a modal sub-state (armed delete, detail mode)
		// consume Esc themselves.
		if view := w.router.Current(); view != nil {
			if ma, ok := view.(ModalActive); ok && ma.IsModal() {
				return w.forward(msg)
			}
		}
		return nil

	case key.Matches(msg, w.keys.Refresh):
		return w.forward(RefreshMsg{})

	case key.Matches(msg, w.keys.Tasks):
		return w.navigate(RouteTasks)

	case key.Matches(msg, w.keys.Projects):
		return w.navigate(RouteProjects)

	case key.Matches(msg, w.keys.Templates):
		return w.navigate(RouteTemplates)
	}

	return w.forward(msg)
}

// navigate discards the current view and enters route with a fresh one.
// The session context is reset first: in-flight fetches dispatched by
// the departed view are cancelled, and any that already resolved carry
// a stale generation and are dropped in Update.
func (w *Workspace) navigate(route Route) tea.Cmd {
	if outgoing := w.router.Current(); outgoing != nil {
		outgoing.Update(BlurMsg{})
		w.session.ResetContext()
	}

	view := w.router.Go(route)
	view.SetSize(w.width, w.viewHeight())

	for i, r := range Routes() {
		if r == route {
			w.navbar.SetActive(i)
		}
	}
	w.banner.Dismiss()
	w.syncStatusBar()

	if w.sessionExpired {
		w.banner.ShowError("Session expired. Run: dayplan auth login")
		return nil
	}

	return tea.Batch(w.stampCmd(view.Init()), func() tea.Msg { return FocusMsg{} })
}

// forward sends msg to the current view and stamps the resulting Cmd.
func (w *Workspace) forward(msg tea.Msg) tea.Cmd {
	view := w.router.Current()
	if view == nil {
		return nil
	}
	updated, cmd := view.Update(msg)
	if v, ok := updated.(View); ok {
		w.router.Replace(v)
		w.statusBar.SetKeyHints(v.ShortHelp())
	}
	return w.stampCmd(cmd)
}

// stampCmd wraps a view-returned Cmd with the current generation. When
// the Cmd's result arrives, Update checks the generation: if navigation
// happened in between, the result is dropped instead of reaching the
// now-unrelated current view.
func (w *Workspace) stampCmd(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return stampWithGeneration(w.session.Generation(), cmd)
}

// stampWithGeneration wraps a tea.Cmd so its result carries a
// generation tag. BatchMsg results are handled recursively so batch
// members are individually guarded.
func stampWithGeneration(gen uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			stamped := make(tea.BatchMsg, len(batch))
			for i, c := range batch {
				stamped[i] = stampWithGeneration(gen, c)
			}
			return stamped
		}
		return GenerationMsg{Generation: gen, Inner: msg}
	}
}

func (w *Workspace) syncStatusBar() {
	w.statusBar.SetGlobalHints([]key.Binding{
		w.keys.Tasks, w.keys.Projects, w.keys.Templates,
		w.keys.Refresh, w.keys.Quit,
	})
	if view := w.router.Current(); view != nil {
		w.statusBar.SetKeyHints(view.ShortHelp())
	}
}

func (w *Workspace) relayout() {
	w.navbar.SetWidth(w.width)
	w.banner.SetWidth(w.width)
	w.statusBar.SetWidth(w.width)
	if view := w.router.Current(); view != nil {
		view.SetSize(w.width, w.viewHeight())
	}
}

func (w *Workspace) viewHeight() int {
	h := w.height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (w *Workspace) View() string {
	if w.quitting {
		return ""
	}

	sections := []string{w.navbar.View()}

	if view := w.router.Current(); view != nil {
		sections = append(sections, view.View())
	}

	if w.banner.Visible() {
		sections = append(sections, w.banner.View())
	}
	sections = append(sections, w.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
