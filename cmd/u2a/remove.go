package main

import (
	"github.com/spf13/cobra"

	"github.com/url2app/u2a/internal/lifecycle"
)

func (a *app) removeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a generated app",
		Long: `Remove a generated app together with its icon, desktop integration,
Electron user data and directory.

Examples:
  u2a remove github.com
  u2a remove "My App" --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := a.manager.Remove(cmd.Context(), name, lifecycle.RemoveOptions{Confirm: !yes})
			if err != nil {
				return err
			}
			success("Application %s removed", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without asking for confirmation")

	return cmd
}
