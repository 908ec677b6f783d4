package keymap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileBinding is one record in a keymap file.
type fileBinding struct {
	Key         string `yaml:"key" json:"key"`
	Command     string `yaml:"command" json:"command"`
	When        string `yaml:"when,omitempty" json:"when,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// File is the on-disk keymap document.
type File struct {
	Version  int           `yaml:"version" json:"version"`
	Bindings []fileBinding `yaml:"bindings" json:"bindings"`
}

// LoadFile reads a keymap from a .yaml, .yml or .json file.
func LoadFile(path string) ([]Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	default:
		return ParseYAML(data)
	}
}

// ParseYAML decodes a YAML keymap document.
func ParseYAML(data []byte) ([]Binding, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keymap: %w", err)
	}
	return f.toBindings()
}

// ParseJSON decodes a JSON keymap document.
func ParseJSON(data []byte) ([]Binding, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keymap: %w", err)
	}
	return f.toBindings()
}

func (f *File) toBindings() ([]Binding, error) {
	out := make([]Binding, 0, len(f.Bindings))
	for i, fb := range f.Bindings {
		if strings.TrimSpace(fb.Key) == "" || strings.TrimSpace(fb.Command) == "" {
			return nil, fmt.Errorf("keymap binding %d: key and command are required", i+1)
		}
		when, err := ParseCondition(fb.When)
		if err != nil {
			return nil, fmt.Errorf("keymap binding %d (%s): %w", i+1, fb.Key, err)
		}
		out = append(out, Binding{
			Key:         fb.Key,
			Command:     fb.Command,
			When:        when,
			Description: fb.Description,
		})
	}
	return out, nil
}

// MarshalYAML renders bindings as a keymap document, e.g. for `pinax keys --export`.
func MarshalYAML(bindings []Binding) ([]byte, error) {
	f := File{Version: 1, Bindings: make([]fileBinding, 0, len(bindings))}
	for _, b := range bindings {
		f.Bindings = append(f.Bindings, fileBinding{
			Key:         b.Key,
			Command:     b.Command,
			When:        b.When.String(),
			Description: b.Description,
		})
	}
	return yaml.Marshal(&f)
}

// ApplyOverrides puts a binding for each chord→command pair ahead of base, so
// overrides win under first-match dispatch. Pairs are ordered by chord.
func ApplyOverrides(base []Binding, overrides map[string]string) []Binding {
	if len(overrides) == 0 {
		return base
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Binding, 0, len(base)+len(keys))
	for _, k := range keys {
		if cmd := strings.TrimSpace(overrides[k]); cmd != "" {
			out = append(out, Binding{Key: k, Command: cmd})
		}
	}
	return append(out, base...)
}
