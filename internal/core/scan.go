// Package core moves downloaded episodes into the library.
package core

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Digital-Shane/treeview"
	"github.com/Digital-Shane/tvshelf/internal/catalog"
	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/episode"
	"github.com/Digital-Shane/tvshelf/internal/media"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// DefaultMinimumSize filters out sample clips.
const DefaultMinimumSize = 10 * 1024 * 1024

// maxScanDepth bounds the recursive walk of the source tree.
const maxScanDepth = 64

// Confirmer answers yes/no questions. detail carries extra context such as a URL.
type Confirmer interface {
	Confirm(prompt, detail string) bool
}

// ShowTable is the lookup table as the scanner uses it.
type ShowTable interface {
	episode.Lookup
	Add(name, id string) error
}

// ScanConfig holds the knobs of a single scan.
type ScanConfig struct {
	Source          string
	Dest            string
	DryRun          bool
	Interactive     bool
	MinimumSize     int64 // 0 disables the size check
	MinimumDuration time.Duration
}

// Scanner walks the source tree and files every recognised episode.
type Scanner struct {
	cfg     ScanConfig
	table   ShowTable
	client  catalog.Client
	confirm Confirmer
	probe   DurationProbe
	mover   *Mover
	log     zerolog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithConfirmer sets the responder used in interactive mode.
func WithConfirmer(c Confirmer) ScannerOption {
	return func(s *Scanner) {
		s.confirm = c
	}
}

// WithDurationProbe enables the duration sample check.
func WithDurationProbe(p DurationProbe) ScannerOption {
	return func(s *Scanner) {
		s.probe = p
	}
}

// NewScanner wires a scanner for cfg.
func NewScanner(cfg ScanConfig, table ShowTable, client catalog.Client, logger zerolog.Logger, opts ...ScannerOption) *Scanner {
	if cfg.MinimumSize < 0 {
		cfg.MinimumSize = DefaultMinimumSize
	}
	s := &Scanner{
		cfg:    cfg,
		table:  table,
		client: client,
		mover:  NewMover(cfg.Dest, cfg.DryRun, logger),
		log:    console.Component(logger, "scan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes every video file under the source and returns how many were moved.
func (s *Scanner) Run(ctx context.Context) int {
	s.log.Info().Msgf("Source:      %s", s.cfg.Source)
	s.log.Info().Msgf("Destination: %s", s.cfg.Dest)
	if s.cfg.DryRun {
		s.log.Info().Msg("DRY MODE ON")
	}
	if !isDir(s.cfg.Source) || !isDir(s.cfg.Dest) {
		s.log.Error().Msg("Source and Destination must be existing directories")
		return 0
	}

	files, err := s.videoFiles(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Unable to list the source directory")
		return 0
	}
	s.log.Info().Msgf("%d video file(s) found.", len(files))

	moved := 0
	for _, rel := range files {
		if ctx.Err() != nil {
			break
		}
		if s.processFile(ctx, rel) {
			moved++
		}
	}
	console.Title(s.log).Int("moved", moved).Msg("Finished!")
	return moved
}

func (s *Scanner) processFile(ctx context.Context, rel string) bool {
	console.Title(s.log).Msg(rel)
	path := filepath.Join(s.cfg.Source, rel)

	info, err := os.Stat(path)
	if err != nil {
		s.log.Error().Err(err).Msg("Unable to read file")
		return false
	}
	if info.Size() < s.cfg.MinimumSize {
		s.log.Info().Str("size", humanize.IBytes(uint64(info.Size()))).Msg("Skipping (file too small, probably sample)")
		return false
	}
	if s.isShortSample(ctx, path) {
		return false
	}

	parsed, ok := media.ParseFilename(rel)
	if !ok {
		s.log.Info().Msg("Skipping (no season and episode in the name)")
		return false
	}

	ep := episode.Resolve(parsed, s.table, s.client)
	if !ep.Resolved() && s.cfg.Interactive && s.confirm != nil {
		ep = s.mapInteractively(ctx, parsed, ep)
	}
	if !ep.Resolved() {
		s.log.Error().Msgf("Unable to find show matching '%s'", ep.GuessedName)
		return false
	}

	s.log.Info().Msgf("Detected: %s", ep)
	return s.mover.MoveEpisode(ctx, path, ep)
}

// mapInteractively offers each catalog candidate for the guessed name until
// one is accepted. The guessed name, not the catalog name, is stored so the
// same release naming resolves next time.
func (s *Scanner) mapInteractively(ctx context.Context, parsed media.ParsedName, ep *episode.Episode) *episode.Episode {
	for _, show := range s.client.FindShows(ctx, ep.GuessedName) {
		prompt := "Map '" + ep.GuessedName + "' to show '" + show.Name + "' with ID " + show.ID
		if !s.confirm.Confirm(prompt, s.client.ReferenceURL(show.ID)) {
			continue
		}
		if err := AddShow(s.table, ep.GuessedName, show.ID, s.log); err != nil {
			return ep
		}
		return episode.Resolve(parsed, s.table, s.client)
	}
	return ep
}

func (s *Scanner) isShortSample(ctx context.Context, path string) bool {
	if s.probe == nil || s.cfg.MinimumDuration <= 0 {
		return false
	}
	d, err := s.probe.Duration(ctx, path)
	if err != nil {
		s.log.Debug().Err(err).Msg("duration probe failed")
		return false
	}
	if d >= s.cfg.MinimumDuration {
		return false
	}
	s.log.Info().Str("duration", d.Round(time.Second).String()).Msg("Skipping (video too short, probably sample)")
	return true
}

// videoFiles lists video files below the source, relative to it and sorted.
// Hidden files and directories are ignored.
func (s *Scanner) videoFiles(ctx context.Context) ([]string, error) {
	t, err := treeview.NewTreeFromFileSystem(ctx, s.cfg.Source, false,
		treeview.WithMaxDepth[treeview.FileInfo](maxScanDepth),
		treeview.WithTraversalCap[treeview.FileInfo](2000000),
		treeview.WithFilterFunc(func(fi treeview.FileInfo) bool {
			if strings.HasPrefix(fi.Name(), ".") {
				return false
			}
			return fi.IsDir() || (fi.FileInfo.Mode().IsRegular() && media.IsVideo(fi.Name()))
		}),
	)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(s.cfg.Source)
	if err != nil {
		return nil, err
	}
	var files []string
	for ni := range t.All(ctx) {
		data := ni.Node.Data()
		if data.IsDir() || !media.IsVideo(data.Name()) {
			continue
		}
		abs, err := filepath.Abs(data.Path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

// AddShow stores name => id in table and reports it.
func AddShow(table ShowTable, name, id string, logger zerolog.Logger) error {
	if err := table.Add(name, id); err != nil {
		logger.Error().Err(err).Msgf("Unable to add show %s", name)
		return err
	}
	logger.Info().Msgf("Show added: %s => %s", name, id)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
