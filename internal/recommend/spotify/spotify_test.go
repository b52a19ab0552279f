package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/recommend"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newServer serves a token endpoint at /token and the API under /v1.
func newServer(t *testing.T, api http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("token request form = %v", r.Form)
		}
		writeJSON(w, map[string]any{"access_token": "tok", "token_type": "bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		api(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		ClientID:          "id",
		ClientSecret:      "secret",
		BaseURL:           srv.URL + "/v1",
		TokenURL:          srv.URL + "/token",
		RequestsPerSecond: 1000,
	}, srv.Client(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, c
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{ClientID: "id"}, nil, testLogger())
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestSearchArtist_PrefersExactName(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"artists": map[string]any{"items": []map[string]any{
			{"id": "1", "name": "Muse Tribute", "followers": map[string]int{"total": 900}},
			{"id": "2", "name": "muse", "followers": map[string]int{"total": 10}},
		}}})
	})

	a, err := c.SearchArtist(context.Background(), "Muse")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if a == nil || a.ID != "2" {
		t.Errorf("got %+v, want id 2", a)
	}
}

func TestSearchArtist_FallsBackToBroadSearch(t *testing.T) {
	var queries []string
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if strings.HasPrefix(q, "artist:") {
			writeJSON(w, map[string]any{"artists": map[string]any{"items": []any{}}})
			return
		}
		writeJSON(w, map[string]any{"artists": map[string]any{"items": []map[string]any{
			{"id": "1", "name": "Sigur Ros", "followers": map[string]int{"total": 5}},
			{"id": "2", "name": "Sigur Rós", "followers": map[string]int{"total": 50}},
		}}})
	})

	a, err := c.SearchArtist(context.Background(), "Sigur Ross")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if a == nil || a.ID != "2" {
		t.Errorf("got %+v, want most followed", a)
	}
	if len(queries) != 2 || queries[0] != `artist:"Sigur Ross"` {
		t.Errorf("queries = %q", queries)
	}
}

func TestTopTracks_PadsFromAlbums(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/search":
			writeJSON(w, map[string]any{"artists": map[string]any{"items": []map[string]any{{"id": "m", "name": "Muse"}}}})
		case r.URL.Path == "/v1/artists/m/top-tracks":
			if r.URL.Query().Get("market") != "US" {
				t.Errorf("market = %q", r.URL.Query().Get("market"))
			}
			writeJSON(w, map[string]any{"tracks": []map[string]any{
				{"id": "t1", "name": "Uprising", "popularity": 70, "album": map[string]string{"name": "The Resistance", "release_date": "2009-09-14"}},
				{"id": "t2", "name": "Hysteria", "popularity": 80, "album": map[string]string{"name": "Absolution", "release_date": "2003"}},
			}})
		case r.URL.Path == "/v1/artists/m/albums":
			writeJSON(w, map[string]any{"items": []map[string]any{{"id": "al1", "name": "Absolution"}}})
		case r.URL.Path == "/v1/albums/al1/tracks":
			writeJSON(w, map[string]any{"items": []map[string]string{{"id": "t2"}, {"id": "t3"}, {"id": "t4"}}})
		case r.URL.Path == "/v1/tracks":
			if ids := r.URL.Query().Get("ids"); ids != "t3" {
				t.Errorf("ids = %q, want t3", ids)
			}
			writeJSON(w, map[string]any{"tracks": []map[string]any{
				{"id": "t3", "name": "Time Is Running Out", "popularity": 75, "album": map[string]string{"name": "Absolution"}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	tracks, err := c.TopTracks(context.Background(), "Muse", 3)
	if err != nil {
		t.Fatalf("TopTracks: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}
	want := []string{"Hysteria", "Time Is Running Out", "Uprising"}
	for i, name := range want {
		if tracks[i].Name != name {
			t.Errorf("tracks[%d] = %q, want %q", i, tracks[i].Name, name)
		}
	}
	if tracks[2].ReleaseYear != 2009 {
		t.Errorf("ReleaseYear = %d", tracks[2].ReleaseYear)
	}
}

func TestTopTracks_UnknownArtist(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"artists": map[string]any{"items": []any{}}})
	})
	tracks, err := c.TopTracks(context.Background(), "Nobody", 5)
	if err != nil || len(tracks) != 0 {
		t.Errorf("TopTracks = %v, %v", tracks, err)
	}
}

func TestRateLimitedByServer(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.TopTracks(context.Background(), "Muse", 5)
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	var u *recommend.ErrUnavailable
	if !errors.As(err, &u) || u.RetryAfter.Seconds() != 7 {
		t.Errorf("RetryAfter not parsed: %v", err)
	}
}

func TestBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Config{ClientID: "id", ClientSecret: "bad", BaseURL: srv.URL + "/v1", TokenURL: srv.URL + "/token"}, srv.Client(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.TestConnection(context.Background()); !errors.Is(err, catalog.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}
