// Package jellyfin implements catalog.Service against the Jellyfin REST API.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sydlexius/crate/internal/catalog"
)

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 512

// Client communicates with a Jellyfin server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger

	mu     sync.Mutex
	userID string
}

// New creates a Jellyfin client with default HTTP settings. userID may be
// empty, in which case the first user on the server is used.
func New(baseURL, apiKey, userID string, logger *slog.Logger) (*Client, error) {
	return NewWithHTTPClient(baseURL, apiKey, userID, &http.Client{Timeout: 30 * time.Second}, logger)
}

// NewWithHTTPClient creates a Jellyfin client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, apiKey, userID string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, catalog.Configurationf("jellyfin url %q must start with http:// or https://", baseURL)
	}
	if apiKey == "" {
		return nil, catalog.Configurationf("jellyfin api key is required")
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userID:     userID,
		logger:     logger.With(slog.String("integration", "jellyfin")),
	}, nil
}

var (
	_ catalog.Service         = (*Client)(nil)
	_ catalog.TrackFinder     = (*Client)(nil)
	_ catalog.PlaylistCreator = (*Client)(nil)
	_ catalog.Rescanner       = (*Client)(nil)
)

// TestConnection verifies connectivity by calling GET /System/Info.
func (c *Client) TestConnection(ctx context.Context) error {
	var info SystemInfo
	if err := c.get(ctx, "/System/Info", nil, &info); err != nil {
		return fmt.Errorf("testing connection: %w", err)
	}
	c.logger.Debug("jellyfin connection ok", "server", info.ServerName, "version", info.Version)
	return nil
}

// UserID returns the configured user, looking up the first server user when
// none was configured.
func (c *Client) UserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != "" {
		return c.userID, nil
	}

	var users []User
	if err := c.get(ctx, "/Users", nil, &users); err != nil {
		return "", fmt.Errorf("listing users: %w", err)
	}
	if len(users) == 0 || users[0].ID == "" {
		return "", catalog.Configurationf("jellyfin has no users; set jellyfin.user_id")
	}
	c.userID = users[0].ID
	c.logger.Debug("using first jellyfin user", "user", users[0].Name)
	return c.userID, nil
}

// TriggerLibraryScan triggers a full library scan.
func (c *Client) TriggerLibraryScan(ctx context.Context) error {
	if err := c.send(ctx, http.MethodPost, "/Library/Refresh", nil, nil, nil); err != nil {
		return fmt.Errorf("triggering library scan: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.send(ctx, http.MethodGet, path, query, nil, result)
}

// send issues a request and decodes a JSON response into result when it is
// non-nil. Transport failures wrap catalog.ErrUnavailable; non-2xx responses
// become *catalog.StatusError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from trusted base + API path
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &catalog.StatusError{
			Op:     method + " " + path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
			Class:  catalog.ClassifyStatus(resp.StatusCode),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf(`MediaBrowser Token="%s"`, c.apiKey))
}
