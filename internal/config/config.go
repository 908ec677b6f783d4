package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Repositories RepositoriesConfig `json:"repositories"`
	Poll         PollConfig         `json:"poll"`
	Keymap       KeymapConfig       `json:"keymap"`
	UI           UIConfig           `json:"ui"`
	GitHub       GitHubConfig       `json:"github"`
	Settings     SettingsConfig     `json:"settings"`
}

// RepositoriesConfig configures repository discovery.
type RepositoriesConfig struct {
	ScanRoots []string `json:"scanRoots"` // directories scanned at startup (supports ~ expansion)
	Paths     []string `json:"paths"`     // repositories added by hand
	MaxDepth  int      `json:"maxDepth"`  // directory levels below a root
	Skip      []string `json:"skip"`      // glob patterns of directory names never entered
}

// PollConfig configures background status refresh.
type PollConfig struct {
	Interval time.Duration `json:"interval"`
	Watch    bool          `json:"watch"` // also refresh on filesystem changes
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	File      string            `json:"file,omitempty"` // YAML or JSON keymap replacing the defaults
	Overrides map[string]string `json:"overrides"`      // chord -> command
}

// UIConfig configures UI appearance.
type UIConfig struct {
	Theme      string `json:"theme"` // "dark" or "light"
	ShowFooter bool   `json:"showFooter"`
	ShowHints  bool   `json:"showHints"`
}

// GitHubConfig configures the hosting client.
type GitHubConfig struct {
	APIURL string `json:"apiURL"`
}

// SettingsConfig locates local state files.
type SettingsConfig struct {
	DBPath         string `json:"dbPath"`
	WorkspacesPath string `json:"workspacesPath"`
	StatePath      string `json:"statePath"` // last selection, restored at startup
}

const (
	defaultMaxDepth     = 4
	defaultPollInterval = 500 * time.Millisecond
	defaultGitHubAPI    = "https://api.github.com"
	defaultTheme        = "dark"
)

// DefaultSkip lists directory names the scanner never enters.
var DefaultSkip = []string{"node_modules", "target", "build", "dist", ".cache", "vendor", "__pycache__"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Repositories: RepositoriesConfig{
			MaxDepth: defaultMaxDepth,
			Skip:     append([]string(nil), DefaultSkip...),
		},
		Poll: PollConfig{
			Interval: defaultPollInterval,
			Watch:    true,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			Theme:      defaultTheme,
			ShowFooter: true,
			ShowHints:  true,
		},
		GitHub: GitHubConfig{
			APIURL: defaultGitHubAPI,
		},
		Settings: SettingsConfig{
			DBPath:         "~/" + configDir + "/settings.db",
			WorkspacesPath: "~/" + configDir + "/workspaces.json",
			StatePath:      "~/" + configDir + "/state.json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Repositories.MaxDepth <= 0 {
		c.Repositories.MaxDepth = defaultMaxDepth
	}
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = defaultPollInterval
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaultTheme
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = defaultGitHubAPI
	}
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	return nil
}
