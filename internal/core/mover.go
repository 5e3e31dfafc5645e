package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/episode"
	"github.com/Digital-Shane/tvshelf/internal/log"
	"github.com/Digital-Shane/tvshelf/internal/media"
	"github.com/Digital-Shane/tvshelf/internal/util"
	"github.com/rs/zerolog"
)

// Mover files resolved episodes under <dest>/<show>/Season <n>/.
type Mover struct {
	dest   string
	dryRun bool
	log    zerolog.Logger
	move   func(src, dst string) error

	// planned holds directories and targets a dry run has claimed, so later
	// files see them as if they existed.
	planned map[string]struct{}
}

// NewMover returns a mover rooted at dest. Under dryRun every decision is
// logged but the filesystem is left untouched.
func NewMover(dest string, dryRun bool, logger zerolog.Logger) *Mover {
	return &Mover{
		dest:    dest,
		dryRun:  dryRun,
		log:     console.Component(logger, "mover"),
		move:    util.MoveFile,
		planned: make(map[string]struct{}),
	}
}

// TargetPath computes where ep belongs inside the library.
func (m *Mover) TargetPath(ctx context.Context, ep *episode.Episode, ext string) string {
	return TargetPath(m.dest, ep.ShowName, ep.Season, ep.Episodes, ep.Titles(ctx), ext)
}

// TargetPath builds <dest>/<show>/Season <season>/<show> - <numbers> - <titles><ext>.
func TargetPath(dest, show string, season int, episodes []int, titles []string, ext string) string {
	show = SanitizeComponent(show)
	title := strings.Join(CollapseTitles(titles), " + ")
	title = sanitizeTitle(strings.ReplaceAll(title, ":", " -"))

	base := fmt.Sprintf("%s - %s - %s", show, media.EpisodeToken(season, episodes), title)
	return filepath.Join(dest, show, fmt.Sprintf("Season %d", season), base+ext)
}

// CollapseTitles merges two-part titles such as "Part 1" and "Part 2" into
// "Part 1+2". Titles must have the same length and differ only by a single
// '1' to '2' at the first differing position; anything else is returned as is.
func CollapseTitles(titles []string) []string {
	if len(titles) != 2 {
		return titles
	}
	a, b := []rune(titles[0]), []rune(titles[1])
	if len(a) != len(b) {
		return titles
	}
	pos := -1
	for i := range a {
		if a[i] != b[i] {
			pos = i
			break
		}
	}
	if pos < 0 || a[pos] != '1' || b[pos] != '2' || string(a[pos+1:]) != string(b[pos+1:]) {
		return titles
	}
	return []string{string(a[:pos]) + "1+2" + string(a[pos+1:])}
}

// MoveEpisode moves source to the library location of ep. It refuses when a
// title is missing or the target already exists, and never overwrites.
func (m *Mover) MoveEpisode(ctx context.Context, source string, ep *episode.Episode) bool {
	titles := ep.Titles(ctx)
	if !titlesReady(ep, titles) {
		m.log.Error().Str("source", source).Msgf("Unable to find title for %s", source)
		return false
	}

	target := m.TargetPath(ctx, ep, filepath.Ext(source))
	seasonDir := filepath.Dir(target)
	showDir := filepath.Dir(seasonDir)
	for _, dir := range []string{showDir, seasonDir} {
		if err := m.ensureDir(dir); err != nil {
			m.log.Error().Err(err).Str("dir", dir).Msgf("Unable to create directory %s", dir)
			return false
		}
	}

	if m.exists(target) {
		m.log.Error().Msgf("File %s already exists.", target)
		return false
	}

	console.Success(m.log).Msgf("Moving to %s", target)
	if m.dryRun {
		m.planned[target] = struct{}{}
		return true
	}
	if err := m.move(source, target); err != nil {
		log.LogMove(source, target, false, err)
		m.log.Error().Err(err).Msgf("Unable to move %s", source)
		return false
	}
	log.LogMove(source, target, true, nil)
	return true
}

func (m *Mover) ensureDir(dir string) error {
	if _, ok := m.planned[dir]; ok {
		return nil
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}
	m.log.Info().Msgf("Creating directory for %s", filepath.Base(dir))
	if m.dryRun {
		m.planned[dir] = struct{}{}
		return nil
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		log.LogCreateDir(dir, false, err)
		return err
	}
	log.LogCreateDir(dir, true, nil)
	return nil
}

func (m *Mover) exists(path string) bool {
	if _, ok := m.planned[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func titlesReady(ep *episode.Episode, titles []string) bool {
	if !ep.Resolved() || len(titles) != len(ep.Episodes) || len(titles) == 0 {
		return false
	}
	for _, t := range titles {
		if t == "" {
			return false
		}
	}
	return true
}
