package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Repositories RepositoriesConfig `json:"repositories"`
	Poll         savePollConfig     `json:"poll"`
	Keymap       KeymapConfig       `json:"keymap"`
	UI           UIConfig           `json:"ui"`
	GitHub       GitHubConfig       `json:"github"`
	Settings     SettingsConfig     `json:"settings"`
}

type savePollConfig struct {
	Interval string `json:"interval,omitempty"`
	Watch    bool   `json:"watch"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Repositories: cfg.Repositories,
		Poll: savePollConfig{
			Interval: cfg.Poll.Interval.String(),
			Watch:    cfg.Poll.Watch,
		},
		Keymap:   cfg.Keymap,
		UI:       cfg.UI,
		GitHub:   cfg.GitHub,
		Settings: cfg.Settings,
	}
}

// Save writes the config to ~/.config/pinax/config.json
func Save(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return errors.New("cannot locate home directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to path. Top-level keys in an existing file that
// Config does not manage are kept.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &merged)
	}

	data, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var managed map[string]json.RawMessage
	if err := json.Unmarshal(data, &managed); err != nil {
		return err
	}
	for k, v := range managed {
		merged[k] = v
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// AddScanRoot appends root to the saved scan roots if missing.
func AddScanRoot(path, root string) error {
	cfg, err := LoadFrom(path)
	if err != nil {
		return err
	}
	root = ExpandPath(root)
	for _, r := range cfg.Repositories.ScanRoots {
		if r == root {
			return nil
		}
	}
	cfg.Repositories.ScanRoots = append(cfg.Repositories.ScanRoots, root)
	if path == "" {
		return Save(cfg)
	}
	return SaveTo(cfg, path)
}
