// Package tui provides terminal user interface styling shared by the
// workspace and the CLI renderer.
package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Theme holds the color palette used across the TUI.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
}

// DefaultTheme returns the built-in dayplan palette.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFD7"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#5F5FAF", Dark: "#8787D7"},
		Success:    lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"},
		Warning:    lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#D7AF5F"},
		Error:      lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#D75F5F"},
		Muted:      lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#808080"},
		Foreground: lipgloss.AdaptiveColor{Light: "#262626", Dark: "#DADADA"},
		Border:     lipgloss.AdaptiveColor{Light: "#BCBCBC", Dark: "#444444"},
	}
}

// NoColorTheme returns a theme with empty colors (honors the NO_COLOR
// standard). Lipgloss treats empty strings as "no color".
func NoColorTheme() Theme {
	empty := lipgloss.AdaptiveColor{}
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Foreground: empty,
		Border:     empty,
	}
}

// ResolveTheme loads a theme with the following precedence:
//  1. NO_COLOR env var set → NoColorTheme
//  2. DAYPLAN_THEME env var → custom theme.yml path
//  3. User theme from ~/.config/dayplan/theme.yml
//  4. Default theme
func ResolveTheme() Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}

	if path := os.Getenv("DAYPLAN_THEME"); path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
		// Fall through on error
	}

	if theme, err := loadUserTheme(); err == nil {
		return theme
	}

	return DefaultTheme()
}

// UserThemePath returns the path of the user theme file, or "" when the
// home directory cannot be resolved.
func UserThemePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dayplan", "theme.yml")
}

func loadUserTheme() (Theme, error) {
	path := UserThemePath()
	if path == "" {
		return Theme{}, os.ErrNotExist
	}
	return LoadThemeFromFile(path)
}

// themeFile is the YAML shape of a theme file. Each value is either a
// single color ("#RRGGBB") or "light,dark".
type themeFile struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Success    string `yaml:"success"`
	Warning    string `yaml:"warning"`
	Error      string `yaml:"error"`
	Muted      string `yaml:"muted"`
	Foreground string `yaml:"foreground"`
	Border     string `yaml:"border"`
}

// LoadThemeFromFile parses a theme.yml file. Missing keys fall back to the
// default theme so partial files work.
func LoadThemeFromFile(path string) (Theme, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path from trusted config
	if err != nil {
		return Theme{}, err
	}

	var tf themeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return Theme{}, err
	}

	theme := DefaultTheme()
	applyColor(&theme.Primary, tf.Primary)
	applyColor(&theme.Secondary, tf.Secondary)
	applyColor(&theme.Success, tf.Success)
	applyColor(&theme.Warning, tf.Warning)
	applyColor(&theme.Error, tf.Error)
	applyColor(&theme.Muted, tf.Muted)
	applyColor(&theme.Foreground, tf.Foreground)
	applyColor(&theme.Border, tf.Border)
	return theme, nil
}

func applyColor(dst *lipgloss.AdaptiveColor, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if light, dark, found := strings.Cut(raw, ","); found {
		*dst = lipgloss.AdaptiveColor{
			Light: strings.TrimSpace(light),
			Dark:  strings.TrimSpace(dark),
		}
		return
	}
	*dst = lipgloss.AdaptiveColor{Light: raw, Dark: raw}
}
