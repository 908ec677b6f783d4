package styles

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors every style is derived from.
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Text       lipgloss.Color
	TextDim    lipgloss.Color
	TextMuted  lipgloss.Color
	TextSubtle lipgloss.Color

	BgBar      lipgloss.Color // header, footer and modal background
	BgSelected lipgloss.Color // selected rows and key chips
	Border     lipgloss.Color

	OnSuccess lipgloss.Color // toast text on Success
	OnError   lipgloss.Color // toast text on Error
}

// Theme is a named Palette.
type Theme struct {
	Name   string
	Colors Palette
}

// Built-in themes.
var (
	Dark = Theme{
		Name: "dark",
		Colors: Palette{
			Primary: "#7C3AED",
			Accent:  "#F59E0B",

			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#EF4444",
			Info:    "#3B82F6",

			Text:       "#F9FAFB",
			TextDim:    "#9CA3AF",
			TextMuted:  "#6B7280",
			TextSubtle: "#4B5563",

			BgBar:      "#1F2937",
			BgSelected: "#374151",
			Border:     "#374151",

			OnSuccess: "#000000",
			OnError:   "#FFFFFF",
		},
	}

	Light = Theme{
		Name: "light",
		Colors: Palette{
			Primary: "#6D28D9",
			Accent:  "#B45309",

			Success: "#047857",
			Warning: "#B45309",
			Error:   "#B91C1C",
			Info:    "#1D4ED8",

			Text:       "#111827",
			TextDim:    "#374151",
			TextMuted:  "#6B7280",
			TextSubtle: "#9CA3AF",

			BgBar:      "#E5E7EB",
			BgSelected: "#D1D5DB",
			Border:     "#D1D5DB",

			OnSuccess: "#FFFFFF",
			OnError:   "#FFFFFF",
		},
	}
)

var (
	themeMu sync.RWMutex
	themes  = map[string]Theme{Dark.Name: Dark, Light.Name: Light}
	current = Dark
)

// ThemeByName looks up a built-in theme.
func ThemeByName(name string) (Theme, bool) {
	themeMu.RLock()
	defer themeMu.RUnlock()
	t, ok := themes[name]
	return t, ok
}

// ThemeNames lists the built-in themes in name order.
func ThemeNames() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Current returns the applied theme.
func Current() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return current
}

// Apply rebuilds every style from t. Call it before the program starts;
// styles are read without locking while rendering.
func Apply(t Theme) {
	themeMu.Lock()
	current = t
	themeMu.Unlock()
	build(t.Colors)
}

// ApplyName applies the named theme, falling back to Dark for unknown names.
// It reports whether name was found.
func ApplyName(name string) bool {
	t, ok := ThemeByName(name)
	if !ok {
		t = Dark
	}
	Apply(t)
	return ok
}
