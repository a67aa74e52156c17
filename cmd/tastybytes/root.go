package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newRootCmd(e *env) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "tastybytes",
		Short:        "Share and browse recipes",
		SilenceUsage: true,
	}
	root.SetOut(e.out)
	root.SetContext(context.Background())

	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite file to use instead of the configured store")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output")

	var run runner = func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := e.newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return describe(fn(cmd, a, args))
		}
	}

	root.AddCommand(
		newRegisterCmd(run),
		newLoginCmd(run),
		newLogoutCmd(run),
		newWhoamiCmd(run),
		newRecipesCmd(run),
	)
	return root
}

// runner opens the app around a command body.
type runner func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error
