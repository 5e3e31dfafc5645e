package cmd

import (
	"context"

	"github.com/Digital-Shane/tvshelf/internal/report"
)

func runList(ctx context.Context, env *environment, opts *options, dest string) error {
	a, err := setup(env, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var reportOpts []report.Option
	if dest != "" {
		reportOpts = append(reportOpts, report.WithDestination(dest, opts.local))
	}
	report.New(a.catalog(), a.log, reportOpts...).Run(ctx, a.table.Entries())
	return nil
}
