package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/pinax"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	Repositories rawRepositoriesConfig `json:"repositories"`
	Poll         rawPollConfig         `json:"poll"`
	Keymap       KeymapConfig          `json:"keymap"`
	UI           rawUIConfig           `json:"ui"`
	GitHub       GitHubConfig          `json:"github"`
	Settings     SettingsConfig        `json:"settings"`
}

type rawRepositoriesConfig struct {
	ScanRoots []string `json:"scanRoots"`
	Paths     []string `json:"paths"`
	MaxDepth  *int     `json:"maxDepth"`
	Skip      []string `json:"skip"`
}

type rawPollConfig struct {
	Interval string `json:"interval"`
	Watch    *bool  `json:"watch"`
}

type rawUIConfig struct {
	Theme      string `json:"theme"`
	ShowFooter *bool  `json:"showFooter"`
	ShowHints  *bool  `json:"showHints"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/pinax/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) || path == "" {
			expandPaths(cfg)
			return cfg, nil // Defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	mergeConfig(cfg, &raw)
	expandPaths(cfg)

	for _, root := range cfg.Repositories.ScanRoots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			slog.Warn("scan root not found", "path", root)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Repositories
	if raw.Repositories.ScanRoots != nil {
		cfg.Repositories.ScanRoots = raw.Repositories.ScanRoots
	}
	if raw.Repositories.Paths != nil {
		cfg.Repositories.Paths = raw.Repositories.Paths
	}
	if raw.Repositories.MaxDepth != nil {
		cfg.Repositories.MaxDepth = *raw.Repositories.MaxDepth
	}
	if raw.Repositories.Skip != nil {
		cfg.Repositories.Skip = raw.Repositories.Skip
	}

	// Poll
	if raw.Poll.Interval != "" {
		if d, err := time.ParseDuration(raw.Poll.Interval); err == nil {
			cfg.Poll.Interval = d
		} else {
			slog.Warn("invalid poll interval", "value", raw.Poll.Interval, "err", err)
		}
	}
	if raw.Poll.Watch != nil {
		cfg.Poll.Watch = *raw.Poll.Watch
	}

	// Keymap
	if raw.Keymap.File != "" {
		cfg.Keymap.File = raw.Keymap.File
	}
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.Theme != "" {
		cfg.UI.Theme = strings.ToLower(strings.TrimSpace(raw.UI.Theme))
	}
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.ShowHints != nil {
		cfg.UI.ShowHints = *raw.UI.ShowHints
	}

	// GitHub
	if raw.GitHub.APIURL != "" {
		cfg.GitHub.APIURL = strings.TrimRight(raw.GitHub.APIURL, "/")
	}

	// Settings
	if raw.Settings.DBPath != "" {
		cfg.Settings.DBPath = raw.Settings.DBPath
	}
	if raw.Settings.WorkspacesPath != "" {
		cfg.Settings.WorkspacesPath = raw.Settings.WorkspacesPath
	}
	if raw.Settings.StatePath != "" {
		cfg.Settings.StatePath = raw.Settings.StatePath
	}
}

func expandPaths(cfg *Config) {
	for i, p := range cfg.Repositories.ScanRoots {
		cfg.Repositories.ScanRoots[i] = ExpandPath(p)
	}
	for i, p := range cfg.Repositories.Paths {
		cfg.Repositories.Paths[i] = ExpandPath(p)
	}
	cfg.Keymap.File = ExpandPath(cfg.Keymap.File)
	cfg.Settings.DBPath = ExpandPath(cfg.Settings.DBPath)
	cfg.Settings.WorkspacesPath = ExpandPath(cfg.Settings.WorkspacesPath)
	cfg.Settings.StatePath = ExpandPath(cfg.Settings.StatePath)
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Dir returns the configuration directory, ~/.config/pinax.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir)
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, configFile)
}
