package cmd

import (
	"context"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/core"
	"github.com/Digital-Shane/tvshelf/internal/kodi"
	"github.com/Digital-Shane/tvshelf/internal/log"
	"github.com/Digital-Shane/tvshelf/internal/watch"
)

func runMove(ctx context.Context, env *environment, opts *options, args []string) error {
	if len(args) < 2 {
		return usageError("You need to specify source and destination directories!")
	}

	a, err := setup(env, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Nothing is mutated in a dry run, so there is nothing to journal.
	if err := log.Initialize(a.cfg.EnableLogging && !opts.dryRun, a.cfg.LogRetentionDays); err != nil {
		a.log.Warn().Err(err).Msg("Unable to prune old journals")
	}

	scanOpts := []core.ScannerOption{}
	if opts.interactive {
		scanOpts = append(scanOpts, core.WithConfirmer(a.confirmer()))
	}
	if a.cfg.MinimumDuration > 0 {
		scanOpts = append(scanOpts, core.WithDurationProbe(env.newProbe()))
	}
	scanner := core.NewScanner(core.ScanConfig{
		Source:          args[0],
		Dest:            args[1],
		DryRun:          opts.dryRun,
		Interactive:     opts.interactive,
		MinimumSize:     a.cfg.MinimumFileSize,
		MinimumDuration: time.Duration(a.cfg.MinimumDuration) * time.Second,
	}, a.table, a.catalog(), a.log, scanOpts...)

	var notifier *kodi.Notifier
	if a.cfg.Kodi != "" {
		target, err := kodi.ParseTarget(a.cfg.Kodi)
		if err != nil {
			return err
		}
		notifier = kodi.NewNotifier(target, a.log)
	}

	scan := func(ctx context.Context) int {
		if err := log.StartSession("move", args); err != nil {
			a.log.Warn().Err(err).Msg("Unable to start the operation journal")
		}
		moved := scanner.Run(ctx)
		if err := log.EndSession(); err != nil {
			a.log.Warn().Err(err).Msg("Unable to write the operation journal")
		}
		return moved
	}
	afterScan := func(ctx context.Context, moved int) {
		if moved > 0 && notifier != nil {
			notifier.Refresh(ctx)
		}
	}

	if !opts.watch {
		afterScan(ctx, scan(ctx))
		return nil
	}

	w, err := watch.New(args[0], scan, a.log,
		watch.WithSettle(a.cfg.WatchSettle),
		watch.WithAfterScan(afterScan),
	)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}
