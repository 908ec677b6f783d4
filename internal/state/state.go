// Package state remembers what the user was looking at between runs.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Selection is the workspace and repository selected when pinax last exited.
type Selection struct {
	Workspace  string `json:"workspace,omitempty"`
	Repository string `json:"repository,omitempty"`
}

// File persists a Selection as JSON.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File stored at path. Nothing is read until Load.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the state file.
func (f *File) Path() string {
	return f.path
}

// Load reads the saved selection. A missing file yields the zero Selection.
func (f *File) Load() (Selection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sel Selection
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return sel, nil
	}
	if err != nil {
		return sel, err
	}
	err = json.Unmarshal(data, &sel)
	return sel, err
}

// Save writes sel, replacing the previous file in one rename.
func (f *File) Save(sel Selection) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
