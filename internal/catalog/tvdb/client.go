// Package tvdb implements catalog.Client on top of TheTVDB v4 API.
package tvdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Digital-Shane/tvshelf/internal/catalog"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	catalogName = "tvdb"
	seasonType  = "official"
	// maxPages bounds EpisodesList against a server that never returns an empty page.
	maxPages = 200
)

// API captures the dashotv client methods used by this catalog.
type API interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesEpisodes(request operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

// LoginFunc exchanges an API key for an authenticated API.
type LoginFunc func(apiKey string) (API, error)

func defaultLogin(apiKey string) (API, error) {
	client, err := tvdbapi.Login(apiKey)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Client is a TheTVDB catalog. It logs in lazily and logs in again once when
// a request is rejected for authentication, which is how an expired token shows up.
type Client struct {
	apiKey string
	login  LoginFunc
	log    zerolog.Logger

	mu  sync.Mutex
	api API

	titles *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithLogin replaces the login call, mainly for tests.
func WithLogin(fn LoginFunc) Option {
	return func(c *Client) {
		c.login = fn
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a client for apiKey. No network call happens until the first request.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: strings.TrimSpace(apiKey),
		login:  defaultLogin,
		log:    zerolog.Nop(),
		titles: cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("catalog", catalogName).Logger()
	return c
}

// Name returns the catalog name.
func (c *Client) Name() string {
	return catalogName
}

// ReferenceURL returns the show page on thetvdb.com.
func (c *Client) ReferenceURL(showID string) string {
	return fmt.Sprintf("http://thetvdb.com/?tab=series&id=%s#fanart", showID)
}

// FindShows searches series matching query.
func (c *Client) FindShows(ctx context.Context, query string) []catalog.Show {
	query = strings.TrimSpace(query)
	if query == "" || ctx.Err() != nil {
		return nil
	}

	var resp *tvdbapi.GetSearchResultsResponse
	err := c.call(func(api API) error {
		q := query
		typ := "series"
		var err error
		resp, err = api.GetSearchResults(operations.GetSearchResultsRequest{Query: &q, Type: &typ})
		return err
	})
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("show search failed")
		return nil
	}
	if resp == nil {
		return nil
	}

	shows := make([]catalog.Show, 0, len(resp.Data))
	for _, result := range resp.Data {
		if typ := pointerToString(result.Type); typ != "" && !strings.EqualFold(typ, "series") {
			continue
		}
		show := toShow(result)
		if show.ID == "" {
			continue
		}
		shows = append(shows, show)
	}
	return shows
}

// TitleForEpisode returns the title of one episode, memoized for the lifetime of the client.
func (c *Client) TitleForEpisode(ctx context.Context, showID string, season, episode int) string {
	id, ok := c.seriesID(showID)
	if !ok || ctx.Err() != nil {
		return ""
	}
	key := fmt.Sprintf("%s:%d:%d", showID, season, episode)
	if cached, found := c.titles.Get(key); found {
		return cached.(string)
	}

	seasonNum := int64(season)
	episodeNum := int64(episode)
	var resp *tvdbapi.GetSeriesEpisodesResponse
	err := c.call(func(api API) error {
		var err error
		resp, err = api.GetSeriesEpisodes(operations.GetSeriesEpisodesRequest{
			ID:            id,
			SeasonType:    seasonType,
			Season:        &seasonNum,
			EpisodeNumber: &episodeNum,
			Page:          0,
		})
		return err
	})
	if err != nil {
		c.log.Error().Err(err).Str("show_id", showID).Int("season", season).Int("episode", episode).Msg("episode lookup failed")
		return ""
	}
	if resp == nil || resp.Data == nil || len(resp.Data.Episodes) == 0 {
		c.titles.SetDefault(key, "")
		return ""
	}

	var title string
	for _, e := range resp.Data.Episodes {
		if e.Number != nil && int(*e.Number) == episode {
			title = pointerToString(e.Name)
			break
		}
	}
	c.titles.SetDefault(key, title)
	return title
}

// EpisodesList pages through every official episode of the show.
func (c *Client) EpisodesList(ctx context.Context, showID string) []catalog.Episode {
	id, ok := c.seriesID(showID)
	if !ok {
		return nil
	}

	seen := make(map[[2]int]struct{})
	var list []catalog.Episode
	for page := int64(0); page < maxPages; page++ {
		if ctx.Err() != nil {
			return nil
		}
		var resp *tvdbapi.GetSeriesEpisodesResponse
		err := c.call(func(api API) error {
			var err error
			resp, err = api.GetSeriesEpisodes(operations.GetSeriesEpisodesRequest{
				ID:         id,
				SeasonType: seasonType,
				Page:       page,
			})
			return err
		})
		if err != nil {
			if page > 0 && isNotFound(err) {
				break
			}
			c.log.Error().Err(err).Str("show_id", showID).Int64("page", page).Msg("episode list failed")
			return nil
		}
		if resp == nil || resp.Data == nil || len(resp.Data.Episodes) == 0 {
			break
		}
		for _, e := range resp.Data.Episodes {
			ep := toEpisode(e)
			k := [2]int{ep.Season, ep.Episode}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			list = append(list, ep)
		}
	}
	if list == nil {
		list = []catalog.Episode{}
	}
	return list
}

// call runs fn against a logged in API, logging in again once on an auth failure.
func (c *Client) call(fn func(API) error) error {
	api, err := c.session(false)
	if err != nil {
		return err
	}
	err = catalog.Classify(catalogName, fn(api))
	if err == nil || !catalog.IsAuth(err) {
		return err
	}

	c.log.Debug().Msg("token rejected, logging in again")
	api, err = c.session(true)
	if err != nil {
		return err
	}
	return catalog.Classify(catalogName, fn(api))
}

func (c *Client) session(renew bool) (API, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil && !renew {
		return c.api, nil
	}
	if c.apiKey == "" {
		return nil, &catalog.Error{Catalog: catalogName, Code: catalog.CodeAuthFailed, Message: "api key is required"}
	}
	api, err := c.login(c.apiKey)
	if err != nil {
		return nil, catalog.Classify(catalogName, err)
	}
	c.api = api
	return api, nil
}

func (c *Client) seriesID(showID string) (float64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(showID), 10, 64)
	if err != nil || id <= 0 {
		if showID != "" {
			c.log.Error().Str("show_id", showID).Msg("invalid series id")
		}
		return 0, false
	}
	return float64(id), true
}

func isNotFound(err error) bool {
	var ce *catalog.Error
	return errors.As(err, &ce) && ce.Code == catalog.CodeNotFound
}

func toShow(result shared.SearchResult) catalog.Show {
	id := pointerToString(result.TvdbID)
	if id == "" {
		id = strings.TrimPrefix(pointerToString(result.ID), "series-")
	}
	return catalog.Show{
		Name:       firstNonEmptyString(pointerToString(result.Name), pointerToString(result.NameTranslated), pointerToString(result.Title)),
		ID:         id,
		FirstAired: pointerToString(result.Year),
		Overview:   pointerToString(result.Overview),
	}
}

func toEpisode(record shared.EpisodeBaseRecord) catalog.Episode {
	return catalog.Episode{
		Season:  int(pointerToInt64(record.SeasonNumber)),
		Episode: int(pointerToInt64(record.Number)),
		Title:   pointerToString(record.Name),
		AirDate: catalog.ParseAirDate(pointerToString(record.Aired)),
	}
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func pointerToInt64(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
