// Package catalog defines the contract shared by the remote TV metadata catalogs.
//
// Implementations never surface transport failures to callers: every public
// operation logs the classified error and answers with "no data" instead.
package catalog

import (
	"context"
	"strings"
	"time"
)

// DateLayout is the air date format used by every supported catalog.
const DateLayout = "2006-01-02"

// Show is a search hit for a show name query.
type Show struct {
	Name       string
	ID         string
	FirstAired string
	Overview   string
}

// Episode summarizes one catalog episode for the aired/upcoming report.
type Episode struct {
	Season  int
	Episode int
	Title   string
	// AirDate is the zero time when the catalog does not know it.
	AirDate time.Time
}

// HasAirDate reports whether the catalog supplied an air date.
func (e Episode) HasAirDate() bool {
	return !e.AirDate.IsZero()
}

// Client is a remote TV metadata catalog.
type Client interface {
	// Name identifies the catalog in logs, e.g. "tvdb".
	Name() string
	// FindShows returns candidate shows for query in catalog order.
	FindShows(ctx context.Context, query string) []Show
	// TitleForEpisode returns the episode title, or "" when unknown.
	TitleForEpisode(ctx context.Context, showID string, season, episode int) string
	// EpisodesList returns every known episode of the show, nil when unavailable.
	EpisodesList(ctx context.Context, showID string) []Episode
	// ReferenceURL points a human at the show's catalog page.
	ReferenceURL(showID string) string
}

// ParseAirDate parses a catalog date, returning the zero time for blank or malformed input.
func ParseAirDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
