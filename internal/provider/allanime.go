package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/model"
)

// AllAnime defaults
const (
	AllAnimeName          = "allanime"
	DefaultAPIURL         = "https://api.allanime.day/api"
	DefaultSourceBaseURL  = "https://allanime.day"
	DefaultReferer        = "https://allmanga.to"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCacheTTL       = 10 * time.Minute
	DefaultSearchLimit    = 40
	cacheCleanupInterval  = 30 * time.Minute
	maxResponseBodyBytes  = 8 << 20
	searchCacheKeyPrefix  = "search:"
	episodeCacheKeyPrefix = "episodes:"
)

const searchQuery = `query($search: SearchInput, $limit: Int, $page: Int, $translationType: VaildTranslationTypeEnumType, $countryOrigin: VaildCountryOriginEnumType) {
  shows(search: $search, limit: $limit, page: $page, translationType: $translationType, countryOrigin: $countryOrigin) {
    edges { _id name availableEpisodes __typename }
  }
}`

const episodesQuery = `query($showId: String!) {
  show(_id: $showId) { _id availableEpisodesDetail }
}`

const sourcesQuery = `query($showId: String!, $translationType: VaildTranslationTypeEnumType!, $episodeString: String!) {
  episode(showId: $showId, translationType: $translationType, episodeString: $episodeString) { episodeString sourceUrls }
}`

// Options configures the AllAnime client
type Options struct {
	APIURL        string
	SourceBaseURL string
	Referer       string
	UserAgent     string
	Timeout       time.Duration
	CacheTTL      time.Duration
	SearchLimit   int
	// RankResults orders search results by edit distance to the query
	RankResults bool
	HTTPClient  *http.Client
}

// DefaultOptions returns options for the public AllAnime API
func DefaultOptions() Options {
	return Options{
		APIURL:        DefaultAPIURL,
		SourceBaseURL: DefaultSourceBaseURL,
		Referer:       DefaultReferer,
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultHTTPTimeout,
		CacheTTL:      DefaultCacheTTL,
		SearchLimit:   DefaultSearchLimit,
		RankResults:   true,
	}
}

// AllAnime talks to the AllAnime GraphQL API
type AllAnime struct {
	opts   Options
	client *http.Client
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewAllAnime creates a client. Zero option fields take their defaults.
func NewAllAnime(opts Options, logger zerolog.Logger) *AllAnime {
	def := DefaultOptions()
	if opts.APIURL == "" {
		opts.APIURL = def.APIURL
	}
	if opts.SourceBaseURL == "" {
		opts.SourceBaseURL = def.SourceBaseURL
	}
	if opts.Referer == "" {
		opts.Referer = def.Referer
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = def.CacheTTL
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = def.SearchLimit
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &AllAnime{
		opts:   opts,
		client: client,
		cache:  cache.New(opts.CacheTTL, cacheCleanupInterval),
		logger: logger.With().Str("provider", AllAnimeName).Logger(),
	}
}

// Name implements Provider
func (a *AllAnime) Name() string {
	return AllAnimeName
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type availableEpisodes struct {
	Sub int `json:"sub"`
	Dub int `json:"dub"`
	Raw int `json:"raw"`
}

type searchData struct {
	Shows struct {
		Edges []struct {
			ID                string            `json:"_id"`
			Name              string            `json:"name"`
			AvailableEpisodes availableEpisodes `json:"availableEpisodes"`
		} `json:"edges"`
	} `json:"shows"`
}

type episodesData struct {
	Show *struct {
		ID                      string              `json:"_id"`
		AvailableEpisodesDetail map[string][]string `json:"availableEpisodesDetail"`
	} `json:"show"`
}

type sourceURL struct {
	SourceURL  string  `json:"sourceUrl"`
	SourceName string  `json:"sourceName"`
	Priority   float64 `json:"priority"`
}

type sourcesData struct {
	Episode *struct {
		EpisodeString string      `json:"episodeString"`
		SourceURLs    []sourceURL `json:"sourceUrls"`
	} `json:"episode"`
}

type clockLink struct {
	Link          string            `json:"link"`
	ResolutionStr string            `json:"resolutionStr"`
	HLS           bool              `json:"hls"`
	MP4           bool              `json:"mp4"`
	Headers       map[string]string `json:"headers"`
}

type clockResponse struct {
	Links []clockLink `json:"links"`
}

// Search implements Provider
func (a *AllAnime) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}

	key := searchCacheKeyPrefix + strings.ToLower(query)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug().Str("query", query).Msg("search cache hit")
		return append([]model.SearchResult(nil), cached.([]model.SearchResult)...), nil
	}

	vars := map[string]any{
		"search": map[string]any{
			"allowAdult":   false,
			"allowUnknown": false,
			"query":        query,
		},
		"limit":           a.opts.SearchLimit,
		"page":            1,
		"translationType": model.LanguageSub.TranslationType(),
		"countryOrigin":   "ALL",
	}

	var data searchData
	if err := a.graphQL(ctx, searchQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]model.SearchResult, 0, len(data.Shows.Edges))
	for _, edge := range data.Shows.Edges {
		if edge.ID == "" || edge.Name == "" {
			continue
		}
		langs := model.NewLanguageSet()
		if edge.AvailableEpisodes.Sub > 0 {
			langs[model.LanguageSub] = struct{}{}
		}
		if edge.AvailableEpisodes.Dub > 0 {
			langs[model.LanguageDub] = struct{}{}
		}
		results = append(results, model.SearchResult{
			Name:       edge.Name,
			Identifier: edge.ID,
			Languages:  langs,
		})
	}

	if a.opts.RankResults {
		rankResults(results, query)
	}

	a.logger.Info().Str("query", query).Int("results", len(results)).Msg("search completed")
	a.cache.Set(key, results, cache.DefaultExpiration)
	return append([]model.SearchResult(nil), results...), nil
}

// Episodes implements Provider
func (a *AllAnime) Episodes(ctx context.Context, id string, lang model.Language) ([]model.EpisodeNumber, error) {
	key := episodeCacheKeyPrefix + id + ":" + lang.TranslationType()
	if cached, ok := a.cache.Get(key); ok {
		return append([]model.EpisodeNumber(nil), cached.([]model.EpisodeNumber)...), nil
	}

	var data episodesData
	if err := a.graphQL(ctx, episodesQuery, map[string]any{"showId": id}, &data); err != nil {
		return nil, err
	}
	if data.Show == nil {
		return nil, fmt.Errorf("show %s: %w", id, ErrNotFound)
	}

	raw := data.Show.AvailableEpisodesDetail[lang.TranslationType()]
	eps := make([]model.EpisodeNumber, 0, len(raw))
	for _, s := range raw {
		n, err := model.ParseEpisodeNumber(s)
		if err != nil {
			a.logger.Warn().Err(err).Str("show", id).Str("episode", s).Msg("skipping unusable episode")
			continue
		}
		eps = append(eps, n)
	}
	eps = model.SortEpisodes(eps)

	a.logger.Debug().Str("show", id).Str("lang", lang.String()).Int("episodes", len(eps)).Msg("episodes loaded")
	a.cache.Set(key, eps, cache.DefaultExpiration)
	return append([]model.EpisodeNumber(nil), eps...), nil
}

// Streams implements Provider
func (a *AllAnime) Streams(ctx context.Context, id string, episode model.EpisodeNumber, lang model.Language) ([]model.Stream, error) {
	vars := map[string]any{
		"showId":          id,
		"translationType": lang.TranslationType(),
		"episodeString":   episode.String(),
	}

	var data sourcesData
	if err := a.graphQL(ctx, sourcesQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Episode == nil || len(data.Episode.SourceURLs) == 0 {
		return nil, fmt.Errorf("%s %s: %w", id, episode.Label(), ErrNotFound)
	}

	sources := append([]sourceURL(nil), data.Episode.SourceURLs...)
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Priority > sources[j].Priority })

	var streams []model.Stream
	var hardErr error
	for _, src := range sources {
		found, err := a.resolveSource(ctx, src, lang)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				hardErr = err
			}
			a.logger.Debug().Err(err).Str("source", src.SourceName).Msg("source skipped")
			continue
		}
		streams = append(streams, found...)
	}

	if len(streams) > 0 {
		return streams, nil
	}
	// Not found only when no source failed for another reason
	if hardErr != nil {
		a.logger.Warn().Err(hardErr).Str("show", id).Str("episode", episode.String()).Msg("no usable source")
		return nil, fmt.Errorf("%s %s: %w", id, episode.Label(), hardErr)
	}
	return nil, fmt.Errorf("%s %s: %w", id, episode.Label(), ErrNotFound)
}

func (a *AllAnime) resolveSource(ctx context.Context, src sourceURL, lang model.Language) ([]model.Stream, error) {
	decoded, err := decodeSourceURL(src.SourceURL)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(decoded, clockPath) {
		return nil, fmt.Errorf("unsupported source %s: %w", src.SourceName, ErrNotFound)
	}

	endpoint, err := a.sourceEndpoint(decoded)
	if err != nil {
		return nil, err
	}

	var clock clockResponse
	if err := a.getJSON(ctx, endpoint, &clock); err != nil {
		return nil, err
	}

	var streams []model.Stream
	for _, link := range clock.Links {
		if link.Link == "" {
			continue
		}
		referer := a.opts.Referer
		if r := link.Headers["Referer"]; r != "" {
			referer = r
		}

		if link.HLS {
			variants, err := a.hlsVariants(ctx, link.Link, referer)
			if err != nil {
				a.logger.Debug().Err(err).Str("link", link.Link).Msg("master playlist unreadable, using as is")
			}
			if len(variants) > 0 {
				for _, v := range variants {
					streams = append(streams, model.Stream{URL: v.URL, Resolution: v.Resolution, Language: lang, Referer: referer, HLS: true})
				}
				continue
			}
		}

		streams = append(streams, model.Stream{
			URL:        link.Link,
			Resolution: parseResolution(link.ResolutionStr),
			Language:   lang,
			Referer:    referer,
			HLS:        link.HLS,
		})
	}
	return streams, nil
}

// sourceEndpoint turns a decoded clock path into an absolute JSON endpoint
func (a *AllAnime) sourceEndpoint(decoded string) (string, error) {
	path, query, _ := strings.Cut(decoded, "?")
	var endpoint string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		endpoint = clockJSON(path)
	} else {
		joined, err := url.JoinPath(a.opts.SourceBaseURL, clockJSON(path))
		if err != nil {
			return "", fmt.Errorf("build source url: %w", err)
		}
		endpoint = joined
	}
	if query != "" {
		endpoint += "?" + query
	}
	return endpoint, nil
}

func (a *AllAnime) graphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	encoded, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("encode variables: %w", err)
	}

	params := url.Values{}
	params.Set("variables", string(encoded))
	params.Set("query", query)

	var resp graphQLResponse
	if err := a.getJSON(ctx, a.opts.APIURL+"?"+params.Encode(), &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("api error: %s", resp.Errors[0].Message)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("api returned no data: %w", ErrNotFound)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode api data: %w", err)
	}
	return nil
}

func (a *AllAnime) get(ctx context.Context, endpoint, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)
	req.Header.Set("Referer", referer)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return body, nil
}

func (a *AllAnime) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := a.get(ctx, endpoint, a.opts.Referer)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// rankResults stably orders results by edit distance between the
// lower-cased name and query
func rankResults(results []model.SearchResult, query string) {
	q := strings.ToLower(query)
	dist := make(map[string]int, len(results))
	for _, r := range results {
		dist[r.Identifier] = levenshtein.ComputeDistance(strings.ToLower(r.Name), q)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return dist[results[i].Identifier] < dist[results[j].Identifier]
	})
}

// parseResolution reads values like "1080p" or "720"; unknown values are 0
func parseResolution(s string) model.Quality {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "p")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return model.Quality(n)
}
