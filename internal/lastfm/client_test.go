package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func tagsJSON(names ...string) map[string]any {
	tags := make([]map[string]any, len(names))
	for i, n := range names {
		tags[i] = map[string]any{"name": n, "count": 100 - i}
	}
	return map[string]any{"toptags": map[string]any{"tag": tags}}
}

func newTestClient(serverURL string) *Client {
	return &Client{
		apiKey:     "test-api-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    serverURL + "/",
		cache:      make(map[string][]string),
	}
}

func TestTopTags(t *testing.T) {
	tests := []struct {
		name           string
		trackResponse  any
		artistResponse any
		want           []string
		wantErr        error
	}{
		{
			name:          "track has tags",
			trackResponse: tagsJSON("alternative", "rock"),
			want:          []string{"alternative", "rock"},
		},
		{
			name:           "track empty falls back to artist",
			trackResponse:  tagsJSON(),
			artistResponse: tagsJSON("pop", "dance"),
			want:           []string{"pop", "dance"},
		},
		{
			name:           "both empty returns empty slice",
			trackResponse:  tagsJSON(),
			artistResponse: tagsJSON(),
			want:           []string{},
		},
		{
			name:          "invalid API key",
			trackResponse: map[string]any{"error": 10, "message": "Invalid API key"},
			wantErr:       ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var resp any
				switch r.URL.Query().Get("method") {
				case "track.getTopTags":
					resp = tt.trackResponse
				case "artist.getTopTags":
					resp = tt.artistResponse
				default:
					t.Errorf("unexpected method: %s", r.URL.Query().Get("method"))
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(resp)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			got, err := client.TopTags(context.Background(), "Artist", "Track")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TopTags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("TopTags() got %d tags, want %d", len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i] != name {
					t.Errorf("TopTags()[%d] = %q, want %q", i, got[i], name)
				}
			}
		})
	}
}

func TestTopTags_CapsAtMaxTags(t *testing.T) {
	names := make([]string, MaxTags+5)
	for i := range names {
		names[i] = "tag" + string(rune('a'+i))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tagsJSON(names...))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	got, err := client.TopTags(context.Background(), "Artist", "Track")
	if err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}
	if len(got) != MaxTags {
		t.Errorf("TopTags() got %d tags, want %d", len(got), MaxTags)
	}
}

func TestTopTags_Caching(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tagsJSON("rock"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	for i := 0; i < 2; i++ {
		got, err := client.TopTags(context.Background(), "Artist", "Track")
		if err != nil {
			t.Fatalf("TopTags() call %d error = %v", i+1, err)
		}
		if len(got) != 1 || got[0] != "rock" {
			t.Fatalf("TopTags() call %d = %v, want [rock]", i+1, got)
		}
	}

	if count := requestCount.Load(); count != 1 {
		t.Errorf("expected 1 request, got %d", count)
	}
}

func TestTopTags_RateLimitRetry(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if requestCount.Add(1) == 1 {
			json.NewEncoder(w).Encode(map[string]any{"error": 29, "message": "Rate limit exceeded"})
			return
		}
		json.NewEncoder(w).Encode(tagsJSON("rock"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	got, err := client.TopTags(context.Background(), "Artist", "Track")
	if err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}
	if len(got) != 1 || got[0] != "rock" {
		t.Errorf("TopTags() = %v, want [rock]", got)
	}
	if count := requestCount.Load(); count != 2 {
		t.Errorf("expected 2 requests (one retry), got %d", count)
	}
}
