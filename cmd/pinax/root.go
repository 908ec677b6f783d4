package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marcus/pinax/internal/app"
	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/config"
	"github.com/marcus/pinax/internal/keymap"
	"github.com/marcus/pinax/internal/settings"
	"github.com/marcus/pinax/internal/state"
	"github.com/marcus/pinax/internal/store"
	"github.com/marcus/pinax/internal/styles"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	keymapPath string
	roots      []string
	debug      bool
}

// NewRootCmd builds the pinax command tree. Without a subcommand it starts
// the interactive workbench.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "pinax",
		Short:        "Keyboard-first workbench for many local git repositories",
		Version:      effectiveVersion(Version),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkbench(cmd.Context(), flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/pinax/config.json)")
	pf.StringVar(&flags.keymapPath, "keymap", "", "YAML or JSON keymap replacing the default bindings")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringSliceVar(&flags.roots, "root", nil, "additional directory to scan (repeatable)")

	cmd.AddCommand(NewScanCmd(flags))
	cmd.AddCommand(NewStatusCmd(flags))
	cmd.AddCommand(NewKeysCmd(flags))
	return cmd
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadFrom(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, r := range flags.roots {
		abs, err := filepath.Abs(config.ExpandPath(r))
		if err != nil {
			return nil, err
		}
		cfg.Repositories.ScanRoots = append(cfg.Repositories.ScanRoots, abs)
	}
	if flags.keymapPath != "" {
		cfg.Keymap.File = config.ExpandPath(flags.keymapPath)
	}
	return cfg, nil
}

// loadBindings returns the keymap file's bindings, or the defaults, with
// config overrides applied on top.
func loadBindings(cfg *config.Config) ([]keymap.Binding, error) {
	base := keymap.DefaultBindings()
	if cfg.Keymap.File != "" {
		loaded, err := keymap.LoadFile(cfg.Keymap.File)
		if err != nil {
			return nil, err
		}
		base = loaded
	}
	return keymap.ApplyOverrides(base, cfg.Keymap.Overrides), nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLog opens the log file in the config directory. The terminal belongs to
// the UI while it runs, so nothing is logged to stderr.
func openLog() (io.WriteCloser, error) {
	dir := config.Dir()
	if dir == "" {
		return nil, fmt.Errorf("no home directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "pinax.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func newBackend(cfg *config.Config, logger *slog.Logger) *backend.Local {
	return backend.NewLocal(backend.LocalOptions{
		WorkspaceFile: cfg.Settings.WorkspacesPath,
		ScanDepth:     cfg.Repositories.MaxDepth,
		SkipPatterns:  cfg.Repositories.Skip,
		GitHubAPI:     cfg.GitHub.APIURL,
		Logger:        logger,
	})
}

func runWorkbench(ctx context.Context, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if f, err := openLog(); err == nil {
		defer f.Close()
		logger = newLogger(f, flags.debug)
	} else {
		logger = newLogger(io.Discard, false)
	}
	slog.SetDefault(logger)

	if !styles.ApplyName(cfg.UI.Theme) {
		logger.Warn("unknown theme, using dark", "theme", cfg.UI.Theme, "available", styles.ThemeNames())
	}

	bindings, err := loadBindings(cfg)
	if err != nil {
		return err
	}
	engine := keymap.NewEngine(keymap.WithLogger(logger))
	engine.LoadBindings(bindings)

	storeOpts := []store.Option{store.WithLogger(logger)}
	opts := app.Options{
		Engine:    engine,
		Config:    cfg,
		Selection: state.NewFile(cfg.Settings.StatePath),
		Version:   effectiveVersion(Version),
		Logger:    logger,
	}
	if s, err := settings.Open(cfg.Settings.DBPath); err != nil {
		logger.Warn("settings unavailable", "path", cfg.Settings.DBPath, "err", err)
	} else {
		defer s.Close()
		storeOpts = append(storeOpts, store.WithTokenStore(s))
		opts.Settings = s
	}
	opts.Store = store.New(newBackend(cfg, logger), storeOpts...)

	logger.Info("starting", "version", opts.Version, "roots", len(cfg.Repositories.ScanRoots))
	return app.Run(ctx, opts)
}
