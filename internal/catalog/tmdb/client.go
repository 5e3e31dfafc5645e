// Package tmdb implements catalog.Client on top of The Movie Database.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/catalog"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/ryanbradynd05/go-tmdb"
)

const catalogName = "tmdb"

// API captures the go-tmdb methods used by this catalog (matches *tmdb.TMDb).
type API interface {
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
	GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

// Client is a TMDB catalog with a per-run memo of titles and season listings.
type Client struct {
	api      API
	language string
	limiter  *rateLimiter
	log      zerolog.Logger

	titles  *cache.Cache
	seasons *csmap.CsMap[string, []catalog.Episode]
}

// Option configures a Client.
type Option func(*Client)

// WithAPI replaces the go-tmdb client, mainly for tests.
func WithAPI(api API) Option {
	return func(c *Client) {
		c.api = api
	}
}

// WithLanguage sets the metadata language, e.g. "en-US".
func WithLanguage(language string) Option {
	return func(c *Client) {
		if strings.TrimSpace(language) != "" {
			c.language = strings.TrimSpace(language)
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a client for apiKey. TMDB keys are sent per request so there is no session.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		language: "en-US",
		// TMDB allows roughly 40 requests per 10 seconds.
		limiter: newRateLimiter(38, 10*time.Second),
		log:     zerolog.Nop(),
		titles:  cache.New(cache.NoExpiration, 0),
		seasons: csmap.Create[string, []catalog.Episode](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = tmdb.Init(tmdb.Config{
			APIKey:   strings.TrimSpace(apiKey),
			Proxies:  nil,
			UseProxy: false,
		})
	}
	c.log = c.log.With().Str("catalog", catalogName).Logger()
	return c
}

// Name returns the catalog name.
func (c *Client) Name() string {
	return catalogName
}

// ReferenceURL returns the show page on themoviedb.org.
func (c *Client) ReferenceURL(showID string) string {
	return fmt.Sprintf("https://www.themoviedb.org/tv/%s", showID)
}

// FindShows searches TV shows matching query.
func (c *Client) FindShows(ctx context.Context, query string) []catalog.Show {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if err := c.limiter.wait(ctx); err != nil {
		return nil
	}

	results, err := c.api.SearchTv(query, c.options())
	if err != nil {
		c.log.Error().Err(catalog.Classify(catalogName, err)).Str("query", query).Msg("show search failed")
		return nil
	}
	if results == nil {
		return nil
	}

	shows := make([]catalog.Show, 0, len(results.Results))
	for _, r := range results.Results {
		if r.ID == 0 {
			continue
		}
		shows = append(shows, catalog.Show{
			Name:       firstNonEmptyString(r.Name, r.OriginalName),
			ID:         strconv.Itoa(r.ID),
			FirstAired: r.FirstAirDate,
		})
	}
	return shows
}

// TitleForEpisode returns one episode title, memoized for the lifetime of the client.
func (c *Client) TitleForEpisode(ctx context.Context, showID string, season, episode int) string {
	id, ok := c.showID(showID)
	if !ok {
		return ""
	}
	key := fmt.Sprintf("%d:%d:%d", id, season, episode)
	if cached, found := c.titles.Get(key); found {
		return cached.(string)
	}
	if err := c.limiter.wait(ctx); err != nil {
		return ""
	}

	ep, err := c.api.GetTvEpisodeInfo(id, season, episode, c.options())
	if err != nil {
		c.log.Error().Err(catalog.Classify(catalogName, err)).Str("show_id", showID).Int("season", season).Int("episode", episode).Msg("episode lookup failed")
		return ""
	}
	title := ""
	if ep != nil {
		title = strings.TrimSpace(ep.Name)
	}
	c.titles.SetDefault(key, title)
	return title
}

// EpisodesList returns every episode of the show, season 0 (specials) included.
func (c *Client) EpisodesList(ctx context.Context, showID string) []catalog.Episode {
	id, ok := c.showID(showID)
	if !ok {
		return nil
	}
	if err := c.limiter.wait(ctx); err != nil {
		return nil
	}
	show, err := c.api.GetTvInfo(id, c.options())
	if err != nil || show == nil {
		c.log.Error().Err(catalog.Classify(catalogName, err)).Str("show_id", showID).Msg("show lookup failed")
		return nil
	}

	list := []catalog.Episode{}
	for season := 0; season <= show.NumberOfSeasons; season++ {
		episodes, err := c.season(ctx, id, season)
		if err != nil {
			var ce *catalog.Error
			if season == 0 && errors.As(err, &ce) && ce.Code == catalog.CodeNotFound {
				continue
			}
			c.log.Error().Err(err).Str("show_id", showID).Int("season", season).Msg("season lookup failed")
			return nil
		}
		list = append(list, episodes...)
	}
	return list
}

func (c *Client) season(ctx context.Context, id, season int) ([]catalog.Episode, error) {
	key := fmt.Sprintf("%d:%d", id, season)
	if cached, ok := c.seasons.Load(key); ok {
		return cached, nil
	}
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}
	info, err := c.api.GetTvSeasonInfo(id, season, c.options())
	if err != nil {
		return nil, catalog.Classify(catalogName, err)
	}

	var episodes []catalog.Episode
	if info != nil {
		episodes = make([]catalog.Episode, 0, len(info.Episodes))
		for _, e := range info.Episodes {
			episodes = append(episodes, catalog.Episode{
				Season:  season,
				Episode: e.EpisodeNumber,
				Title:   strings.TrimSpace(e.Name),
				AirDate: catalog.ParseAirDate(e.AirDate),
			})
		}
	}
	c.seasons.Store(key, episodes)
	return episodes, nil
}

func (c *Client) options() map[string]string {
	return map[string]string{"language": c.language}
}

func (c *Client) showID(showID string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(showID))
	if err != nil || id <= 0 {
		if showID != "" {
			c.log.Error().Str("show_id", showID).Msg("invalid show id")
		}
		return 0, false
	}
	return id, true
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
