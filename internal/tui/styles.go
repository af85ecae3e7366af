package tui

import "sync"

// Styles is a shared handle on the active theme. Components hold a *Styles
// and re-read the theme on every render, so a theme reload takes effect
// without rebuilding the component tree.
type Styles struct {
	mu    sync.RWMutex
	theme Theme
}

// NewStyles creates styles with the default theme.
func NewStyles() *Styles {
	return &Styles{theme: DefaultTheme()}
}

// NewStylesWithTheme creates styles with a specific theme.
func NewStylesWithTheme(theme Theme) *Styles {
	return &Styles{theme: theme}
}

// Theme returns the current theme.
func (s *Styles) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// UpdateTheme swaps the theme in place. All components holding this
// *Styles see the new colors on their next render.
func (s *Styles) UpdateTheme(theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
}
