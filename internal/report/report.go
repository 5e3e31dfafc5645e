// Package report lists the last aired and next upcoming episode of every known show.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/catalog"
	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/core"
	"github.com/Digital-Shane/tvshelf/internal/shows"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

// maxTitleWidth caps episode titles in report lines, in terminal columns.
const maxTitleWidth = 60

// EpisodeLister fetches a show's full episode list.
type EpisodeLister interface {
	EpisodesList(ctx context.Context, showID string) []catalog.Episode
}

// Reporter prints the aired/upcoming summary.
type Reporter struct {
	client    EpisodeLister
	dest      string
	showLocal bool
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithDestination cross-checks aired episodes against the library at dest.
// With showLocal the newest local episode of each show is reported too.
func WithDestination(dest string, showLocal bool) Option {
	return func(r *Reporter) {
		r.dest = dest
		r.showLocal = showLocal
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New returns a reporter backed by client.
func New(client EpisodeLister, logger zerolog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		client: client,
		now:    time.Now,
		log:    console.Component(logger, "report"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reports every entry in table order.
func (r *Reporter) Run(ctx context.Context, entries []shows.Entry) {
	today := dateOf(r.now())
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		r.reportShow(ctx, entry, today)
	}
}

func (r *Reporter) reportShow(ctx context.Context, entry shows.Entry, today time.Time) {
	console.Title(r.log).Msg(entry.Name)

	if r.dest != "" && r.showLocal {
		if local, ok := LastLocalEpisode(filepath.Join(r.dest, core.SanitizeComponent(entry.Name))); ok {
			r.log.Info().Msgf("Last local: %s - %s", local.Number, local.Title)
		}
	}

	list := r.client.EpisodesList(ctx, entry.ID)
	if list == nil {
		r.log.Error().Str("show_id", entry.ID).Msg("Can't retrieve list of episodes for this show")
		return
	}

	last, next := LastAndNext(list, today)
	if last != nil {
		text := "Last aired: " + describe(*last)
		switch {
		case r.dest == "":
			r.log.Info().Msg(text)
		case HasLocalEpisode(r.dest, entry.Name, last.Season, last.Episode):
			console.Success(r.log).Msg(text + " [OK]")
		case last.Season == 0:
			r.log.Warn().Msg(text + " [Missing Special]")
		default:
			r.log.Error().Msg(text + " [Missing]")
		}
	}
	if next != nil {
		r.log.Info().Msg("Next aired: " + describe(*next))
	}
}

// LastAndNext returns the latest episode aired on or before today and the
// earliest one airing after it. Episodes without an air date are ignored.
// Among equal dates the last aired keeps the last one seen and the next aired
// keeps the first one seen. Duplicate season/episode pairs count once.
func LastAndNext(list []catalog.Episode, today time.Time) (last, next *catalog.Episode) {
	today = dateOf(today)
	seen := make(map[[2]int]bool, len(list))
	for i := range list {
		e := &list[i]
		key := [2]int{e.Season, e.Episode}
		if seen[key] {
			continue
		}
		seen[key] = true
		if !e.HasAirDate() {
			continue
		}
		aired := dateOf(e.AirDate)
		if !aired.After(today) {
			if last == nil || !aired.Before(dateOf(last.AirDate)) {
				last = e
			}
			continue
		}
		if next == nil || aired.Before(dateOf(next.AirDate)) {
			next = e
		}
	}
	return last, next
}

func describe(e catalog.Episode) string {
	title := runewidth.Truncate(e.Title, maxTitleWidth, "…")
	return fmt.Sprintf("%dx%d - %s (%s)", e.Season, e.Episode, title, e.AirDate.Format(catalog.DateLayout))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalEpisode is the newest episode file found in a show directory.
type LocalEpisode struct {
	Number string
	Title  string
}

var libraryNameRe = regexp.MustCompile(`^.+ - ([0-9x+-]+) - (.+)$`)

// LastLocalEpisode inspects the highest "Season N" directory under showDir and
// parses the lexically last visible file in it.
func LastLocalEpisode(showDir string) (LocalEpisode, bool) {
	entries, err := os.ReadDir(showDir)
	if err != nil {
		return LocalEpisode{}, false
	}
	bestSeason, bestDir := -1, ""
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "Season ") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "Season "))
		if err != nil {
			n = 0
		}
		if n >= bestSeason {
			bestSeason, bestDir = n, e.Name()
		}
	}
	if bestDir == "" {
		return LocalEpisode{}, false
	}

	files, err := os.ReadDir(filepath.Join(showDir, bestDir))
	if err != nil {
		return LocalEpisode{}, false
	}
	var names []string
	for _, f := range files {
		if f.Type().IsRegular() && !strings.HasPrefix(f.Name(), ".") {
			names = append(names, f.Name())
		}
	}
	if len(names) == 0 {
		return LocalEpisode{}, false
	}
	sort.Strings(names)
	last := names[len(names)-1]

	m := libraryNameRe.FindStringSubmatch(strings.TrimSuffix(last, filepath.Ext(last)))
	if m == nil {
		return LocalEpisode{}, false
	}
	return LocalEpisode{Number: m[1], Title: m[2]}, true
}

// HasLocalEpisode reports whether <dest>/<show>/Season <season> holds a file
// for the episode, on its own or as the second half of a double episode.
func HasLocalEpisode(dest, show string, season, episode int) bool {
	show = core.SanitizeComponent(show)
	dir := filepath.Join(dest, show, fmt.Sprintf("Season %d", season))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	re, err := regexp.Compile(fmt.Sprintf(`(?i)^%s - (?:\d+x\d{2}\+)?%dx%02d.*\..+$`, regexp.QuoteMeta(show), season, episode))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && re.MatchString(e.Name()) {
			return true
		}
	}
	return false
}
