package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/marcus/pinax/internal/config"
)

// NewScanCmd lists the repositories found under one or more directories.
func NewScanCmd(flags *globalFlags) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "scan <root>...",
		Short: "List git repositories under the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, flags.debug)
			be := newBackend(cfg, logger)
			out := cmd.OutOrStdout()

			for _, arg := range args {
				root, err := filepath.Abs(config.ExpandPath(arg))
				if err != nil {
					return err
				}
				repos, err := be.ScanRepositories(cmd.Context(), root)
				if err != nil {
					return err
				}

				width := 0
				for _, r := range repos {
					width = max(width, runewidth.StringWidth(r.Name))
				}
				for _, r := range repos {
					when := "no commits"
					if r.LastCommit != nil {
						when = humanize.Time(r.LastCommit.Timestamp)
					}
					fmt.Fprintf(out, "%s  %-14s  %s\n", runewidth.FillRight(r.Name, width), when, r.Path)
				}
				fmt.Fprintf(out, "%s in %s\n", pluralRepos(len(repos)), root)

				if save {
					if err := config.AddScanRoot(flags.configPath, root); err != nil {
						return fmt.Errorf("save scan root: %w", err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "remember the directories as scan roots in the config file")
	return cmd
}

func pluralRepos(n int) string {
	if n == 1 {
		return "1 repository"
	}
	return humanize.Comma(int64(n)) + " repositories"
}
