// Package episode turns a parsed release name into a resolved episode.
package episode

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/tvshelf/internal/media"
)

// Lookup resolves guessed names to catalog ids and back.
type Lookup interface {
	FindID(guessed string) (string, bool)
	FindName(id string) (string, bool)
}

// TitleSource fetches a single episode title.
type TitleSource interface {
	TitleForEpisode(ctx context.Context, showID string, season, episode int) string
}

// Episode is a parsed file enriched by the lookup table. ShowID and ShowName
// are either both set or both empty.
type Episode struct {
	ShowID      string
	ShowName    string
	GuessedName string
	Season      int
	Episodes    []int

	source  TitleSource
	titles  []string
	fetched bool
}

// Resolve looks parsed up in table. Titles are not fetched until asked for.
func Resolve(parsed media.ParsedName, table Lookup, source TitleSource) *Episode {
	ep := &Episode{
		GuessedName: parsed.GuessedName,
		Season:      parsed.Season,
		Episodes:    append([]int(nil), parsed.Episodes...),
		source:      source,
	}
	if id, ok := table.FindID(parsed.GuessedName); ok {
		if name, ok := table.FindName(id); ok {
			ep.ShowID = id
			ep.ShowName = name
		}
	}
	return ep
}

// Resolved reports whether the show was found in the lookup table.
func (e *Episode) Resolved() bool {
	return e.ShowID != ""
}

// Titles returns one trimmed title per episode number, fetching them on first
// use. Unresolved episodes never reach the catalog and have no titles.
func (e *Episode) Titles(ctx context.Context) []string {
	if e.fetched {
		return e.titles
	}
	e.fetched = true
	if !e.Resolved() || e.source == nil {
		return nil
	}
	e.titles = make([]string, 0, len(e.Episodes))
	for _, n := range e.Episodes {
		e.titles = append(e.titles, strings.TrimSpace(e.source.TitleForEpisode(ctx, e.ShowID, e.Season, n)))
	}
	return e.titles
}

// Token renders the numbering as used in library filenames: 1x02+1x03.
func (e *Episode) Token() string {
	return media.EpisodeToken(e.Season, e.Episodes)
}

// String renders a short log description, <Show - 1x2+3>, with the guessed
// name prefixed by "~" when unresolved.
func (e *Episode) String() string {
	name := e.ShowName
	if !e.Resolved() {
		name = "~" + e.GuessedName
	}
	nums := make([]string, 0, len(e.Episodes))
	for _, n := range e.Episodes {
		nums = append(nums, strconv.Itoa(n))
	}
	return fmt.Sprintf("<%s - %dx%s>", name, e.Season, strings.Join(nums, "+"))
}
