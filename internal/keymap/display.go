package keymap

import (
	"strings"
	"unicode/utf8"
)

// splitChord splits a chord string into modifier tokens and a key,
// treating a trailing "++" as the plus key.
func splitChord(s string) (mods []string, key string) {
	switch {
	case s == "+":
		return nil, "+"
	case strings.HasSuffix(s, "++"):
		s = strings.TrimSuffix(s, "++")
		if s == "" {
			return nil, "+"
		}
		return strings.Split(s, "+"), "+"
	}
	parts := strings.Split(s, "+")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

var macGlyphs = map[string]string{
	"mod":     "⌘",
	"meta":    "⌘",
	"cmd":     "⌘",
	"command": "⌘",
	"super":   "⌘",
	"ctrl":    "⌃",
	"control": "⌃",
	"alt":     "⌥",
	"option":  "⌥",
	"opt":     "⌥",
	"shift":   "⇧",
}

var modifierNames = map[string]string{
	"mod":     "Ctrl",
	"ctrl":    "Ctrl",
	"control": "Ctrl",
	"alt":     "Alt",
	"option":  "Alt",
	"opt":     "Alt",
	"shift":   "Shift",
	"meta":    "⌘",
	"cmd":     "⌘",
	"command": "⌘",
	"super":   "⌘",
}

// FormatShortcut renders a chord string for display: glyphs joined without a
// separator on macOS ("⌘⇧P"), words joined by "+" elsewhere ("Ctrl+Shift+P").
func FormatShortcut(s string, p Platform) string {
	mods, key := splitChord(s)
	var parts []string
	for _, m := range mods {
		m = strings.ToLower(strings.TrimSpace(m))
		if p == PlatformMac {
			if g, ok := macGlyphs[m]; ok {
				parts = append(parts, g)
				continue
			}
		} else if n, ok := modifierNames[m]; ok {
			parts = append(parts, n)
			continue
		}
		parts = append(parts, strings.ToUpper(m))
	}
	parts = append(parts, displayKey(key))

	if p == PlatformMac {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, "+")
}

func displayKey(key string) string {
	k := NormalizeKey(key)
	switch k {
	case "escape":
		return "Esc"
	case "enter":
		return "↵"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	if k == "" || utf8.RuneCountInString(k) == 1 {
		return strings.ToUpper(k)
	}
	return strings.ToUpper(k[:1]) + k[1:]
}
