package panda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testToken = "abcdefghijklmnopqrstuvwxyz0123"

type staticToken string

func (s staticToken) PandaToken() string { return string(s) }

type memCache map[string]string

func (m memCache) Has(_ context.Context, key string) bool {
	_, ok := m[key]
	return ok
}

func (m memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (m memCache) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, h http.HandlerFunc, cache Cache) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(staticToken(testToken), cache,
		WithHTTPClient(srv.Client()),
		WithBaseURLs(srv.URL, srv.URL+"/data"),
		WithDashboardURL("https://dashboard.example.com"),
	)
	return c, srv
}

func TestVideosEndpoint(t *testing.T) {
	tests := []struct {
		page, limit int
		title       string
		want        string
	}{
		{0, 100, "", "/videos?limit=100"},
		{0, 0, "", "/videos"},
		{2, 100, "", "/videos?page=2&limit=100"},
		{0, 100, "intro class", "/videos?limit=100&title=intro+class"},
		{3, 0, "a&b", "/videos?page=3&title=a%26b"},
	}
	for _, tt := range tests {
		if got := videosEndpoint(tt.page, tt.limit, tt.title); got != tt.want {
			t.Errorf("videosEndpoint(%d, %d, %q) = %q, want %q", tt.page, tt.limit, tt.title, got, tt.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	id, err := ExtractVideoID("https://dashboard.example.com/videos/a1b2c3d4-e5f6-7890-abcd-1234567890ab")
	if err != nil {
		t.Fatal(err)
	}
	if id != "a1b2c3d4-e5f6-7890-abcd-1234567890ab" {
		t.Fatalf("bad id: %q", id)
	}

	if _, err := ExtractVideoID("https://dashboard.example.com/videos/not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetVideoProperties_InvalidURL(t *testing.T) {
	c := NewClient(staticToken(testToken), nil, WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("transport must not be called")
		return nil, nil
	})))
	if _, err := c.GetVideoProperties(context.Background(), "https://dashboard.example.com/videos/not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGet_CacheHitSkipsTransport(t *testing.T) {
	cache := memCache{
		CacheKey("/videos/a1b2c3d4-e5f6-7890-abcd-1234567890ab", BaseURL): `{"id":"a1b2c3d4-e5f6-7890-abcd-1234567890ab","title":"cached"}`,
	}
	c := NewClient(staticToken(""), cache, WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("transport must not be called on a cache hit")
		return nil, nil
	})))

	v, err := c.GetVideoProperties(context.Background(), "https://x/videos/a1b2c3d4-e5f6-7890-abcd-1234567890ab")
	if err != nil {
		t.Fatal(err)
	}
	if v.Title != "cached" {
		t.Fatalf("expected cached title, got %q", v.Title)
	}
}

func TestGet_StoresBodyOn200(t *testing.T) {
	var hits int32
	cache := memCache{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"id":"a1b2c3d4-e5f6-7890-abcd-1234567890ab","width":1920,"height":1080}`))
	}, cache)

	for i := 0; i < 2; i++ {
		v, err := c.GetVideoProperties(context.Background(), "a1b2c3d4-e5f6-7890-abcd-1234567890ab")
		if err != nil {
			t.Fatal(err)
		}
		if v.Width != 1920 {
			t.Fatalf("bad width: %d", v.Width)
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 request, got %d", hits)
	}
	if len(cache) != 1 {
		t.Fatalf("expected 1 cache entry, got %d", len(cache))
	}
}

// failingCache reports every key as present but cannot read it back
type failingCache struct{ memCache }

func (failingCache) Has(context.Context, string) bool { return true }

func (failingCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection reset")
}

func TestGet_CacheReadErrorFallsThrough(t *testing.T) {
	var hits int32
	cache := failingCache{memCache{}}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"id":"a1b2c3d4-e5f6-7890-abcd-1234567890ab","title":"fresh"}`))
	}, cache)

	v, err := c.GetVideoProperties(context.Background(), "a1b2c3d4-e5f6-7890-abcd-1234567890ab")
	if err != nil {
		t.Fatal(err)
	}
	if v.Title != "fresh" || hits != 1 {
		t.Fatalf("expected a network fetch, got title=%q hits=%d", v.Title, hits)
	}
	if len(cache.memCache) != 1 {
		t.Fatalf("expected the fresh body to be stored, got %d entries", len(cache.memCache))
	}
}

func TestValidToken_Boundary(t *testing.T) {
	tests := []struct {
		length int
		want   bool
	}{
		{0, false},
		{MinTokenLength - 1, false},
		{MinTokenLength, true},
		{MinTokenLength + 1, true},
	}
	for _, tt := range tests {
		token := strings.Repeat("x", tt.length)
		if got := ValidToken(token); got != tt.want {
			t.Errorf("ValidToken(len %d) = %v, want %v", tt.length, got, tt.want)
		}
		if got := NewClient(staticToken(token), nil).Enabled(); got != tt.want {
			t.Errorf("Enabled(len %d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestGet_ListingsAreNotCached(t *testing.T) {
	var hits int32
	cache := memCache{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"folders":[]}`))
	}, cache)

	for i := 0; i < 2; i++ {
		if _, err := c.ListFolders(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if hits != 2 || len(cache) != 0 {
		t.Fatalf("expected 2 uncached requests, got hits=%d cache=%d", hits, len(cache))
	}
}

func TestGet_Headers(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != testToken {
			t.Errorf("Authorization = %q, want raw token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"folders":[]}`))
	}, nil)

	if _, err := c.ListFolders(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestGet_MissingToken(t *testing.T) {
	for _, token := range []string{"", "short", "0123456789012345678"} {
		c := NewClient(staticToken(token), nil, WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
			t.Fatal("transport must not be called without a token")
			return nil, nil
		})))
		if _, err := c.ListFolders(context.Background()); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("token %q: expected ErrMissingCredential, got %v", token, err)
		}
		if c.Enabled() {
			t.Fatalf("token %q: client should not be enabled", token)
		}
	}
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrRemoteServer},
		{http.StatusNoContent, ErrUnexpectedStatus},
		{http.StatusBadGateway, ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
		}, nil)

		_, err := c.ListVideos(context.Background(), 0, 100, "")
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: expected %v, got %v", tt.code, tt.want, err)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.Code != tt.code {
			t.Fatalf("status %d: expected StatusError with code, got %v", tt.code, err)
		}
	}
}

func TestGet_TransportError(t *testing.T) {
	c := NewClient(staticToken(testToken), nil, WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})))
	if _, err := c.ListFolders(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestListVideos_Decode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() != "/videos?limit=100&title=aula" {
			t.Errorf("unexpected request %s", r.URL.RequestURI())
		}
		w.Write([]byte(`{"pages":3,"videos":[
			{"id":"v1","title":"Root","folder_id":null,"playback":["480p","720p"]},
			{"id":"v2","title":"Nested","folder_id":"f1"}]}`))
	}, nil)

	list, err := c.ListVideos(context.Background(), 0, 100, "aula")
	if err != nil {
		t.Fatal(err)
	}
	if list.Pages != 3 || len(list.Videos) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !list.Videos[0].FolderID.IsRoot() || list.Videos[1].FolderID != "f1" {
		t.Fatalf("bad folder ids: %q %q", list.Videos[0].FolderID, list.Videos[1].FolderID)
	}
}

func TestGetAnalytics_UsesDataHost(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/general/v1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"views":10}`))
	}, nil)

	a, err := c.GetAnalytics(context.Background(), "v1")
	if err != nil {
		t.Fatal(err)
	}
	if string((*a)["views"]) != "10" {
		t.Fatalf("bad analytics: %v", a)
	}
}

func TestGetBandwidth_Query(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/traffic" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("video_id") != "v1" || q.Get("start_date") != "2025-01-01" || q.Get("end_date") != "2025-01-31" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"bandwidth":1024}`))
	}, nil)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	if _, err := c.GetBandwidth(context.Background(), "v1", start, end); err != nil {
		t.Fatal(err)
	}

	if got := trafficEndpoint("", time.Time{}, time.Time{}); got != "/analytics/traffic" {
		t.Fatalf("trafficEndpoint without params = %q", got)
	}
}

func TestResolveOEmbed(t *testing.T) {
	const id = "a1b2c3d4-e5f6-7890-abcd-1234567890ab"
	tests := []struct {
		source string
		want   string
	}{
		{"https://player-vz-1.tv.pandavideo.com.br/embed/?v=" + id, "https://player-vz-1.tv.pandavideo.com.br/embed/?v=" + id},
		{"https://dashboard.pandavideo.com.br/#/videos/" + id, "https://dashboard.example.com/videos/" + id},
		{id, "https://dashboard.example.com/videos/" + id},
	}
	for _, tt := range tests {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oembed" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("url"); got != tt.want {
				t.Errorf("oembed url = %q, want %q", got, tt.want)
			}
			w.Write([]byte(`{"html":"<iframe src=\"https://player/x\"></iframe>","width":640,"height":360}`))
		}, nil)

		o, err := c.ResolveOEmbed(context.Background(), tt.source)
		if err != nil {
			t.Fatal(err)
		}
		if o.Width != 640 || o.Height != 360 {
			t.Fatalf("bad oembed: %+v", o)
		}
	}
}

func TestResolveOEmbed_NoID(t *testing.T) {
	c := NewClient(staticToken(testToken), nil)
	if _, err := c.ResolveOEmbed(context.Background(), "https://example.com/watch/123"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
