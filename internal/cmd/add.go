package cmd

import (
	"github.com/Digital-Shane/tvshelf/internal/core"
	"github.com/spf13/cobra"
)

func newAddCmd(env *environment, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME ID",
		Short: "Map a show name to a catalog id",
		Long: `Add or replace an entry of the shows table. NAME is matched against show names
guessed from file names, ignoring case and punctuation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(env, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return core.AddShow(a.table, args[0], args[1], a.log)
		},
	}
}
