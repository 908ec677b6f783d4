package keymap

import (
	"fmt"
	"strings"
)

// Condition is a named boolean a binding can require. The set is closed so a
// typo in a keymap file fails at load time instead of silently never matching.
type Condition uint8

const (
	CondNone Condition = iota
	CondModalOpen
	CondListFocused
	CondDiffFocused
	CondTextInputFocused
	CondRepositorySelected
	condCount
)

var conditionNames = [...]string{
	CondNone:               "",
	CondModalOpen:          "modalOpen",
	CondListFocused:        "listFocused",
	CondDiffFocused:        "diffFocused",
	CondTextInputFocused:   "textInputFocused",
	CondRepositorySelected: "repositorySelected",
}

func (c Condition) String() string {
	if c < condCount {
		return conditionNames[c]
	}
	return fmt.Sprintf("Condition(%d)", c)
}

// ParseCondition maps a condition name to its value. The empty string is CondNone.
func ParseCondition(name string) (Condition, error) {
	name = strings.TrimSpace(name)
	for i, n := range conditionNames {
		if strings.EqualFold(n, name) {
			return Condition(i), nil
		}
	}
	return CondNone, fmt.Errorf("unknown condition %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Condition) UnmarshalText(b []byte) error {
	v, err := ParseCondition(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Context is the set of conditions true at the moment a key is dispatched.
type Context uint32

// With returns ctx with cond set to v.
func (ctx Context) With(cond Condition, v bool) Context {
	if cond == CondNone {
		return ctx
	}
	if v {
		return ctx | 1<<cond
	}
	return ctx &^ (1 << cond)
}

// Has reports whether cond is true in ctx.
func (ctx Context) Has(cond Condition) bool {
	return ctx&(1<<cond) != 0
}

// Satisfies reports whether a binding requiring cond may fire in ctx.
func (ctx Context) Satisfies(cond Condition) bool {
	return cond == CondNone || ctx.Has(cond)
}

// NewContext builds a Context from the conditions that are true.
func NewContext(conds ...Condition) Context {
	var ctx Context
	for _, c := range conds {
		ctx = ctx.With(c, true)
	}
	return ctx
}
