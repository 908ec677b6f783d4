package keymap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyEvent is a single key press as delivered by the input layer.
type KeyEvent struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string

	prevented bool
}

// PreventDefault marks the event as consumed.
func (e *KeyEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler consumed the event.
func (e *KeyEvent) DefaultPrevented() bool { return e.prevented }

// Chord returns the normalized chord for the event.
func (e *KeyEvent) Chord() Chord {
	return Chord{
		Ctrl:  e.Ctrl,
		Alt:   e.Alt,
		Shift: e.Shift,
		Meta:  e.Meta,
		Key:   NormalizeKey(e.Key),
	}
}

// HasCommandModifier reports whether ctrl, alt or meta is held.
func (e *KeyEvent) HasCommandModifier() bool {
	return e.Ctrl || e.Alt || e.Meta
}

// FromKeyMsg converts a bubbletea key message. Upper-case letters become the
// lower-case key with Shift held, so "P" and "shift+p" are the same chord.
func FromKeyMsg(msg tea.KeyMsg) *KeyEvent {
	s := msg.String()
	ev := &KeyEvent{}

	if s == " " || msg.Type == tea.KeySpace {
		ev.Key = "space"
		return ev
	}
	for {
		switch {
		case strings.HasPrefix(s, "alt+") && len(s) > len("alt+"):
			ev.Alt = true
			s = s[len("alt+"):]
			continue
		case strings.HasPrefix(s, "ctrl+") && len(s) > len("ctrl+"):
			ev.Ctrl = true
			s = s[len("ctrl+"):]
			continue
		case strings.HasPrefix(s, "shift+") && len(s) > len("shift+"):
			ev.Shift = true
			s = s[len("shift+"):]
			continue
		}
		break
	}

	if r, size := utf8.DecodeRuneInString(s); size == len(s) && unicode.IsUpper(r) {
		ev.Shift = true
		s = string(unicode.ToLower(r))
	}
	ev.Key = s
	return ev
}
