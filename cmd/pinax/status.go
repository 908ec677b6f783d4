package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/config"
)

// NewStatusCmd prints the working tree status of one repository.
func NewStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show the working tree status of a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			repo, err := filepath.Abs(config.ExpandPath(path))
			if err != nil {
				return err
			}

			cli := backend.NewCLI(newLogger(os.Stderr, flags.debug))
			st, err := cli.Status(cmd.Context(), repo)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func printStatus(w io.Writer, st *backend.Status) {
	fmt.Fprintf(w, "On branch %s", st.Branch)
	if st.Ahead > 0 || st.Behind > 0 {
		fmt.Fprintf(w, " (ahead %d, behind %d)", st.Ahead, st.Behind)
	}
	fmt.Fprintln(w)
	if st.IsClean {
		fmt.Fprintln(w, "Working tree clean")
		return
	}

	section := func(title string, files []backend.FileChange) {
		if len(files) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, f := range files {
			fmt.Fprintf(w, "  %-11s %s\n", f.Status, f.Path)
		}
	}
	section("Conflicts", st.Conflicts)
	section("Staged", st.Staged)
	section("Changes", st.Unstaged)
	if len(st.Untracked) > 0 {
		fmt.Fprintln(w, "\nUntracked:")
		for _, p := range st.Untracked {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
