package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/marcus/pinax/internal/keymap"
)

// NewKeysCmd prints the effective key bindings.
func NewKeysCmd(flags *globalFlags) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the effective key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			bindings, err := loadBindings(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if export {
				data, err := keymap.MarshalYAML(bindings)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			platform := keymap.CurrentPlatform()
			keyWidth, cmdWidth := 0, 0
			for _, b := range bindings {
				keyWidth = max(keyWidth, runewidth.StringWidth(keymap.FormatShortcut(b.Key, platform)))
				cmdWidth = max(cmdWidth, runewidth.StringWidth(b.Command))
			}
			for _, b := range bindings {
				line := runewidth.FillRight(keymap.FormatShortcut(b.Key, platform), keyWidth) + "  " +
					runewidth.FillRight(b.Command, cmdWidth)
				if b.When != keymap.CondNone {
					line += "  when " + b.When.String()
				}
				fmt.Fprintln(out, strings.TrimRight(line, " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "print the bindings as a YAML keymap file")
	return cmd
}
