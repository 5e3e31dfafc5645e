package cmd

import (
	"context"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/core"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// runQuery lists catalog matches for opts.query. In interactive mode the
// first accepted match is added under the catalog's own name.
func runQuery(ctx context.Context, env *environment, opts *options) error {
	a, err := setup(env, opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	client := a.catalog()
	results := client.FindShows(ctx, opts.query)
	if len(results) == 0 {
		a.log.Error().Msg("Show not found")
		return nil
	}

	var confirm core.Confirmer
	if opts.interactive {
		confirm = a.confirmer()
	}
	for _, show := range results {
		console.Success(a.log).
			Str("first_aired", show.FirstAired).
			Msgf("%s ==> %s (%d%% match)", show.Name, show.ID, similarity(opts.query, show.Name))
		if confirm == nil {
			continue
		}
		if !confirm.Confirm("Add to list", client.ReferenceURL(show.ID)) {
			continue
		}
		if err := core.AddShow(a.table, show.Name, show.ID, a.log); err != nil {
			return err
		}
		break
	}
	return nil
}

// similarity scores how close a catalog name is to the query, in percent.
func similarity(query, name string) int {
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false
	return int(strutil.Similarity(query, name, metric)*100 + 0.5)
}
