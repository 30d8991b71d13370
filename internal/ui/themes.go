package ui

import (
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette of the TUI. Each color adapts to light and
// dark terminals.
type Theme struct {
	Name string

	Primary lipgloss.AdaptiveColor
	Subtle  lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Progress colors the upload indicator
	Progress lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Built-in themes
var (
	DefaultTheme = Theme{
		Name:     "default",
		Primary:  adaptive("#0F766E", "#2DD4BF"),
		Subtle:   adaptive("#6B7280", "#9CA3AF"),
		Text:     adaptive("#111827", "#F3F4F6"),
		Border:   adaptive("#CBD5E1", "#334155"),
		Success:  adaptive("#15803D", "#4ADE80"),
		Warning:  adaptive("#B45309", "#FBBF24"),
		Error:    adaptive("#B91C1C", "#F87171"),
		Info:     adaptive("#1D4ED8", "#60A5FA"),
		Progress: adaptive("#0F766E", "#2DD4BF"),
	}

	HighContrastTheme = Theme{
		Name:     "high-contrast",
		Primary:  adaptive("#000000", "#FFFFFF"),
		Subtle:   adaptive("#444444", "#CCCCCC"),
		Text:     adaptive("#000000", "#FFFFFF"),
		Border:   adaptive("#000000", "#FFFFFF"),
		Success:  adaptive("#005F00", "#00FF00"),
		Warning:  adaptive("#875F00", "#FFD700"),
		Error:    adaptive("#AF0000", "#FF5F5F"),
		Info:     adaptive("#0000AF", "#5FAFFF"),
		Progress: adaptive("#005F00", "#00FF00"),
	}

	MinimalTheme = Theme{
		Name:     "minimal",
		Primary:  adaptive("#374151", "#E5E7EB"),
		Subtle:   adaptive("#9CA3AF", "#6B7280"),
		Text:     adaptive("#374151", "#E5E7EB"),
		Border:   adaptive("#E5E7EB", "#374151"),
		Success:  adaptive("#374151", "#E5E7EB"),
		Warning:  adaptive("#374151", "#E5E7EB"),
		Error:    adaptive("#991B1B", "#FCA5A5"),
		Info:     adaptive("#374151", "#E5E7EB"),
		Progress: adaptive("#6B7280", "#9CA3AF"),
	}
)

var themes = map[string]Theme{
	DefaultTheme.Name:      DefaultTheme,
	HighContrastTheme.Name: HighContrastTheme,
	MinimalTheme.Name:      MinimalTheme,
}

var (
	themeMu       sync.RWMutex
	currentTheme  = DefaultTheme
	colorDisabled atomic.Bool
)

// GetTheme returns the active theme
func GetTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetThemeByName activates a built-in theme. It returns false for unknown names.
func SetThemeByName(name string) bool {
	theme, ok := themes[name]
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTheme = theme
	themeMu.Unlock()
	return true
}

// GetAvailableThemes returns the built-in theme names, sorted
func GetAvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetColorDisabled turns colored output off regardless of NO_COLOR
func SetColorDisabled(disabled bool) {
	colorDisabled.Store(disabled)
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled.Load() || os.Getenv("NO_COLOR") != ""
}

// Styles are the rendered styles the views use
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Progress lipgloss.Style
	Box      lipgloss.Style
	Panel    lipgloss.Style
}

// GetStyles builds styles from the active theme. With color disabled
// only layout and weight remain.
func GetStyles() *Styles {
	if IsColorDisabled() {
		return plainStyles()
	}

	theme := GetTheme()
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),
		Body:    lipgloss.NewStyle().Foreground(theme.Text),
		Muted:   lipgloss.NewStyle().Foreground(theme.Subtle),
		Success: lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
		Info:    lipgloss.NewStyle().Foreground(theme.Info),
		Progress: lipgloss.NewStyle().
			Foreground(theme.Progress),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

func plainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title:    plain.Bold(true).Padding(0, 1),
		Header:   plain.Bold(true),
		Body:     plain,
		Muted:    plain,
		Success:  plain.Bold(true),
		Warning:  plain.Bold(true),
		Error:    plain.Bold(true),
		Info:     plain,
		Progress: plain,
		Box:      plain.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		Panel:    plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}
