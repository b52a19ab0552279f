// Package spotify implements recommend.Service with the Spotify Web API
// using the client-credentials flow.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/recommend"
)

const (
	serviceName     = "spotify"
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultMarket   = "US"

	// albumPageLimit bounds how many albums are walked to pad out top tracks.
	albumPageLimit = 20
	// trackBatchSize is the maximum number of ids accepted by GET /tracks.
	trackBatchSize = 50
)

// Config holds Spotify credentials and endpoints. Empty endpoints use the
// public Spotify API.
type Config struct {
	ClientID          string
	ClientSecret      string
	Market            string
	BaseURL           string
	TokenURL          string
	RequestsPerSecond float64
}

// Client is a Spotify Web API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	market  string
	logger  *slog.Logger
}

var _ recommend.Service = (*Client)(nil)

// New creates a client. base, when non-nil, is the transport used for both
// token and API requests.
func New(cfg Config, base *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, &recommend.ErrAuthRequired{Service: serviceName}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Market == "" {
		cfg.Market = defaultMarket
	}
	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = 5
	}
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := cc.Client(ctx)
	httpClient.Timeout = base.Timeout

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rps, 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		market:  cfg.Market,
		logger:  logger.With(slog.String("provider", serviceName)),
	}, nil
}

// TestConnection performs a minimal search to verify the credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	var resp searchResponse
	q := url.Values{"q": {"test"}, "type": {"artist"}, "limit": {"1"}}
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return fmt.Errorf("testing connection: %w", err)
	}
	return nil
}

// SearchArtist returns the best matching artist, or nil when none is found.
// An exact case-insensitive name match wins; otherwise the artist with the
// most followers.
func (c *Client) SearchArtist(ctx context.Context, name string) (*recommend.Artist, error) {
	items, err := c.searchArtists(ctx, fmt.Sprintf("artist:%q", name))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if items, err = c.searchArtists(ctx, name); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	best := items[0]
	found := false
	for _, a := range items {
		if strings.EqualFold(a.Name, name) {
			best, found = a, true
			break
		}
	}
	if !found {
		for _, a := range items[1:] {
			if a.Followers.Total > best.Followers.Total {
				best = a
			}
		}
	}
	return &recommend.Artist{ID: best.ID, Name: best.Name, Followers: best.Followers.Total}, nil
}

func (c *Client) searchArtists(ctx context.Context, query string) ([]artist, error) {
	var resp searchResponse
	q := url.Values{"q": {query}, "type": {"artist"}, "limit": {"5"}}
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, fmt.Errorf("searching artist: %w", err)
	}
	return resp.Artists.Items, nil
}

// TopTracks returns up to limit tracks for the artist, most popular first.
// Spotify's top-tracks list is padded with tracks from the artist's albums
// and singles when it is shorter than limit.
func (c *Client) TopTracks(ctx context.Context, artistName string, limit int) ([]recommend.Track, error) {
	a, err := c.SearchArtist(ctx, artistName)
	if err != nil {
		return nil, err
	}
	if a == nil {
		c.logger.Debug("artist not found", slog.String("artist", artistName))
		return []recommend.Track{}, nil
	}

	seen := make(map[string]bool)
	var tracks []track

	var top topTracksResponse
	if err := c.get(ctx, "/artists/"+url.PathEscape(a.ID)+"/top-tracks", url.Values{"market": {c.market}}, &top); err != nil {
		if recommend.IsUnavailable(err) {
			return nil, err
		}
		c.logger.Warn("top tracks failed", slog.String("artist", a.Name), slog.String("error", err.Error()))
	}
	for _, t := range top.Tracks {
		if !seen[t.ID] {
			seen[t.ID] = true
			tracks = append(tracks, t)
		}
	}

	if len(tracks) < limit {
		more, err := c.albumTracks(ctx, a.ID, limit-len(tracks), seen)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, more...)
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Popularity > tracks[j].Popularity
	})
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}

	out := make([]recommend.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, recommend.Track{
			ID:          t.ID,
			Name:        t.Name,
			Album:       t.Album.Name,
			Popularity:  t.Popularity,
			ReleaseYear: releaseYear(t.Album.ReleaseDate),
		})
	}
	c.logger.Debug("top tracks fetched", slog.String("artist", a.Name), slog.Int("tracks", len(out)))
	return out, nil
}

// albumTracks collects up to want full tracks from the artist's albums and
// singles. A failing album is skipped; an unavailable service aborts.
func (c *Client) albumTracks(ctx context.Context, artistID string, want int, seen map[string]bool) ([]track, error) {
	var albums albumsResponse
	q := url.Values{
		"include_groups": {"album,single"},
		"limit":          {strconv.Itoa(albumPageLimit)},
		"market":         {c.market},
	}
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID)+"/albums", q, &albums); err != nil {
		if recommend.IsUnavailable(err) {
			return nil, err
		}
		c.logger.Warn("listing albums failed", slog.String("artist_id", artistID), slog.String("error", err.Error()))
		return nil, nil
	}

	var out []track
	for _, al := range albums.Items {
		if len(out) >= want {
			break
		}
		var page albumTracksResponse
		if err := c.get(ctx, "/albums/"+url.PathEscape(al.ID)+"/tracks", url.Values{"limit": {"50"}}, &page); err != nil {
			if recommend.IsUnavailable(err) {
				return nil, err
			}
			c.logger.Warn("album tracks failed", slog.String("album", al.Name), slog.String("error", err.Error()))
			continue
		}

		var ids []string
		for _, it := range page.Items {
			if !seen[it.ID] && len(ids) < want-len(out) {
				ids = append(ids, it.ID)
			}
		}
		full, err := c.tracks(ctx, ids)
		if err != nil {
			if recommend.IsUnavailable(err) {
				return nil, err
			}
			c.logger.Warn("fetching tracks failed", slog.String("album", al.Name), slog.String("error", err.Error()))
			continue
		}
		for _, t := range full {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// tracks fetches full track objects, which carry popularity, in batches.
func (c *Client) tracks(ctx context.Context, ids []string) ([]track, error) {
	var out []track
	for start := 0; start < len(ids); start += trackBatchSize {
		end := min(start+trackBatchSize, len(ids))
		var resp tracksResponse
		q := url.Values{"ids": {strings.Join(ids[start:end], ",")}, "market": {c.market}}
		if err := c.get(ctx, "/tracks", q, &resp); err != nil {
			return nil, err
		}
		for _, t := range resp.Tracks {
			if t != nil {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

// get waits for the rate limiter, performs a GET and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, q url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &recommend.ErrUnavailable{Service: serviceName, Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req) //nolint:gosec // URL constructed from client config and escaped inputs
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < 500 {
			return fmt.Errorf("fetching token: %w: %w", catalog.ErrPermissionDenied, err)
		}
		return &recommend.ErrUnavailable{Service: serviceName, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return &recommend.ErrUnavailable{
			Service:    serviceName,
			Cause:      fmt.Errorf("rate limited by server"),
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return &recommend.ErrUnavailable{
			Service: serviceName,
			Cause:   fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &catalog.StatusError{
			Op:     "GET " + path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
			Class:  catalog.ClassifyStatus(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4*1024*1024)).Decode(result); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
