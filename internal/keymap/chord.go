package keymap

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform selects how the "mod" alias and shortcut glyphs resolve.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformMac
)

// CurrentPlatform returns the platform the binary is running on.
func CurrentPlatform() Platform {
	if runtime.GOOS == "darwin" {
		return PlatformMac
	}
	return PlatformOther
}

// Chord is one key plus the exact set of modifiers held with it.
type Chord struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string
}

// Equal reports whether both chords have the same key and identical modifiers.
func (c Chord) Equal(o Chord) bool {
	return c == o
}

// HasCommandModifier reports whether ctrl, alt or meta is held.
func (c Chord) HasCommandModifier() bool {
	return c.Ctrl || c.Alt || c.Meta
}

func (c Chord) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Meta {
		parts = append(parts, "meta")
	}
	return strings.Join(append(parts, c.Key), "+")
}

var keyAliases = map[string]string{
	"esc":        "escape",
	"return":     "enter",
	"pgup":       "pageup",
	"pgdown":     "pagedown",
	"del":        "delete",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// NormalizeKey lower-cases a key name and maps aliases to their canonical form.
func NormalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

// ParseChord parses a binding string such as "mod+shift+p". The last
// "+"-separated token is the key; "ctrl++" binds the plus key.
func ParseChord(s string, p Platform) (Chord, error) {
	var c Chord
	if strings.TrimSpace(s) == "" {
		return c, fmt.Errorf("empty key chord")
	}

	mods, key := splitChord(s)
	key = NormalizeKey(key)
	if key == "" {
		return c, fmt.Errorf("key chord %q has no key", s)
	}
	c.Key = key

	for _, m := range mods {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "mod":
			if p == PlatformMac {
				c.Meta = true
			} else {
				c.Ctrl = true
			}
		case "ctrl", "control":
			c.Ctrl = true
		case "alt", "option", "opt":
			c.Alt = true
		case "shift":
			c.Shift = true
		case "meta", "cmd", "command", "super":
			c.Meta = true
		default:
			return Chord{}, fmt.Errorf("key chord %q: unknown modifier %q", s, m)
		}
	}
	return c, nil
}
