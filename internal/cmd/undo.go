package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newUndoCmd(env *environment, opts *options) *cobra.Command {
	var yes, list bool

	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent move run",
		Long: `Move the files of the most recent run back to where they came from and remove
the directories it created, newest first.

A file is not moved back when something else now occupies its original path,
and a directory is only removed when empty. The journal is deleted once
every operation has been reverted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(env, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if list {
				return listSessions(a)
			}

			session, path, err := log.FindLatestSession()
			if errors.Is(err, log.ErrNoSessions) {
				a.log.Info().Msg("No operation sessions found to undo.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read log sessions: %w", err)
			}

			summary := describeSession(session)
			if !yes && !a.confirmer().Confirm("Undo "+summary, session.Metadata.WorkingDir) {
				a.log.Info().Msg("Nothing undone.")
				return nil
			}

			undone, failed, errs := log.UndoSession(session)
			for _, err := range errs {
				a.log.Error().Msg(err.Error())
			}
			if failed > 0 {
				a.log.Warn().Msgf("Undone %d operation(s), %d failed", undone, failed)
				return nil
			}
			if err := os.Remove(path); err != nil {
				a.log.Warn().Err(err).Msg("Unable to remove the journal")
			}
			console.Success(a.log).Msgf("Undone %d operation(s)", undone)
			return nil
		},
	}
	undoCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	undoCmd.Flags().BoolVar(&list, "list", false, "list recorded runs instead of undoing")
	return undoCmd
}

func listSessions(a *app) error {
	sessions, err := log.ReadSessions(20)
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}
	if len(sessions) == 0 {
		a.log.Info().Msg("No operation sessions found to undo.")
		return nil
	}
	for _, session := range sessions {
		a.log.Info().Str("session", session.Metadata.SessionID).Msg(describeSession(session))
	}
	return nil
}

// describeSession renders e.g. "move /in /out - 3 hours ago (4 ops)".
func describeSession(session *log.LogSession) string {
	return fmt.Sprintf("%s - %s (%d ops)",
		strings.Join(session.Metadata.CommandArgs, " "),
		humanize.Time(session.Metadata.Timestamp),
		session.Metadata.TotalOps)
}
