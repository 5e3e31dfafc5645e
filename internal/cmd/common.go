package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Digital-Shane/tvshelf/internal/catalog"
	"github.com/Digital-Shane/tvshelf/internal/catalog/tmdb"
	"github.com/Digital-Shane/tvshelf/internal/catalog/tvdb"
	"github.com/Digital-Shane/tvshelf/internal/config"
	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/core"
	"github.com/Digital-Shane/tvshelf/internal/prompt"
	"github.com/Digital-Shane/tvshelf/internal/shows"
	"github.com/rs/zerolog"
)

// environment carries the process collaborators so tests can replace them.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newCatalog   func(cfg *config.Config, logger zerolog.Logger) catalog.Client
	newConfirmer func(in io.Reader, out io.Writer, theme console.Theme) core.Confirmer
	newProbe     func() core.DurationProbe
	theme        *console.Theme
}

func defaultEnvironment() *environment {
	return &environment{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		newCatalog:   newCatalog,
		newConfirmer: newTerminalConfirmer,
		newProbe:     func() core.DurationProbe { return core.NewFFProbe() },
	}
}

func newCatalog(cfg *config.Config, logger zerolog.Logger) catalog.Client {
	if cfg.Catalog == config.CatalogTMDB {
		return tmdb.New(cfg.TMDBAPIKey, tmdb.WithLanguage(cfg.Language), tmdb.WithLogger(logger))
	}
	return tvdb.New(cfg.TVDBAPIKey, tvdb.WithLogger(logger))
}

func newTerminalConfirmer(in io.Reader, out io.Writer, theme console.Theme) core.Confirmer {
	return prompt.NewTerminal(prompt.WithIO(in, out), prompt.WithTheme(theme))
}

// app is everything a command needs once the configuration is known.
type app struct {
	env    *environment
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	table  *shows.Table
	theme  console.Theme
}

// setup loads the configuration, builds the logger and loads the shows table.
// With validate set an unusable configuration is fatal.
func setup(env *environment, opts *options, validate bool) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.kodi != "" {
		cfg.Kodi = opts.kodi
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	theme := console.DefaultTheme()
	if env.theme != nil {
		theme = *env.theme
	}
	logger, closer := console.New(console.Options{
		Out:        env.stdout,
		Verbose:    opts.verbose,
		NoColor:    opts.noColor,
		Theme:      &theme,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	table, err := shows.Load(cfg.ShowsFile)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to load shows table: %w", err)
	}

	return &app{env: env, cfg: cfg, log: logger, closer: closer, table: table, theme: theme}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func (a *app) catalog() catalog.Client {
	return a.env.newCatalog(a.cfg, a.log)
}

func (a *app) confirmer() core.Confirmer {
	return a.env.newConfirmer(a.env.stdin, a.env.stdout, a.theme)
}
