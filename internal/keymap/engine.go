// Package keymap turns key presses into command invocations.
//
// An Engine holds an ordered binding table and a registry of commands. Each
// binding's chord is parsed once, when the table is loaded. On every key
// event the engine asks its context provider for the current conditions and
// runs the first binding whose condition holds, whose chord matches exactly
// and whose command is registered.
package keymap

import (
	"log/slog"
	"sort"
	"sync"
)

type compiledBinding struct {
	Binding
	chord Chord
	valid bool
}

// Engine dispatches key events to registered commands.
type Engine struct {
	mu       sync.RWMutex
	platform Platform
	bindings []compiledBinding
	commands map[string]Command
	context  func() Context
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlatform overrides the detected platform.
func WithPlatform(p Platform) Option {
	return func(e *Engine) { e.platform = p }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine with no bindings and no commands.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		platform: CurrentPlatform(),
		commands: make(map[string]Command),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Platform returns the platform used when bindings are loaded.
func (e *Engine) Platform() Platform {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.platform
}

// SetPlatform changes how later LoadBindings calls resolve "mod".
// Bindings already loaded keep their resolved chords.
func (e *Engine) SetPlatform(p Platform) {
	e.mu.Lock()
	e.platform = p
	e.mu.Unlock()
}

// LoadBindings replaces the binding table. Bindings whose chord does not
// parse stay in the table for display but never match.
func (e *Engine) LoadBindings(bindings []Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled := make([]compiledBinding, 0, len(bindings))
	for _, b := range bindings {
		chord, err := ParseChord(b.Key, e.platform)
		if err != nil {
			e.logger.Warn("keymap: ignoring binding", "key", b.Key, "command", b.Command, "err", err)
		}
		compiled = append(compiled, compiledBinding{Binding: b, chord: chord, valid: err == nil})
	}
	e.bindings = compiled
}

// Bindings returns a copy of the binding table in registration order.
func (e *Engine) Bindings() []Binding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Binding, len(e.bindings))
	for i, b := range e.bindings {
		out[i] = b.Binding
	}
	return out
}

// RegisterCommand adds cmd, replacing any command with the same ID.
func (e *Engine) RegisterCommand(cmd Command) {
	e.mu.Lock()
	e.commands[cmd.ID] = cmd
	e.mu.Unlock()
}

// UnregisterCommand removes a command. Bindings to it become inert.
func (e *Engine) UnregisterCommand(id string) {
	e.mu.Lock()
	delete(e.commands, id)
	e.mu.Unlock()
}

// Command returns the registered command with id.
func (e *Engine) Command(id string) (Command, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cmd, ok := e.commands[id]
	return cmd, ok
}

// Commands returns all registered commands ordered by category, then label.
func (e *Engine) Commands() []Command {
	e.mu.RLock()
	out := make([]Command, 0, len(e.commands))
	for _, c := range e.commands {
		out = append(out, c)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ci, cj := categoryRank(out[i].Category), categoryRank(out[j].Category)
		if ci != cj {
			return ci < cj
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func categoryRank(c Category) int {
	if r, ok := categoryOrder[c]; ok {
		return r
	}
	return len(categoryOrder)
}

// SetContextProvider sets the function consulted on every key event.
// A nil provider means no condition is ever true.
func (e *Engine) SetContextProvider(provider func() Context) {
	e.mu.Lock()
	e.context = provider
	e.mu.Unlock()
}

// HandleKeyEvent runs the first matching command and reports whether one ran.
// The handler runs synchronously after the engine lock is released, so it may
// call back into the engine.
func (e *Engine) HandleKeyEvent(ev *KeyEvent) bool {
	if ev == nil {
		return false
	}
	chord := ev.Chord()

	e.mu.RLock()
	provider := e.context
	e.mu.RUnlock()

	var ctx Context
	if provider != nil {
		ctx = provider()
	}

	e.mu.RLock()
	var handler func()
	var matched string
	for _, b := range e.bindings {
		if !b.valid || !ctx.Satisfies(b.When) || !b.chord.Equal(chord) {
			continue
		}
		cmd, ok := e.commands[b.Command]
		if !ok {
			continue
		}
		handler, matched = cmd.Handler, cmd.ID
		break
	}
	e.mu.RUnlock()

	if matched == "" {
		return false
	}
	ev.PreventDefault()
	e.logger.Debug("keymap: dispatch", "key", chord.String(), "command", matched)
	if handler != nil {
		handler()
	}
	return true
}

// ExecuteCommand runs a command by ID, as the palette does.
func (e *Engine) ExecuteCommand(id string) bool {
	cmd, ok := e.Command(id)
	if !ok {
		return false
	}
	if cmd.Handler != nil {
		cmd.Handler()
	}
	return true
}

// ShortcutFor returns the display form of the first binding for id.
func (e *Engine) ShortcutFor(id string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, b := range e.bindings {
		if b.Command == id {
			return FormatShortcut(b.Key, e.platform), true
		}
	}
	return "", false
}

// ShortcutsFor returns the display form of every binding for id.
func (e *Engine) ShortcutsFor(id string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []string
	for _, b := range e.bindings {
		if b.Command == id {
			out = append(out, FormatShortcut(b.Key, e.platform))
		}
	}
	return out
}
