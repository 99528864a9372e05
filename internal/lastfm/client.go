// Package lastfm provides a minimal Last.fm API client for fetching the
// descriptive tags consumed by the tag tempo heuristic.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"
	userAgent      = "tempo-playlist/1.0"

	// MaxTags caps how many tags a lookup returns; the heuristic only
	// inspects the most popular ones.
	MaxTags = 10
)

// Last.fm API error codes.
const (
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit persists after a retry.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is rejected.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Client is a Last.fm API client with an in-memory cache.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string

	// key = "artist\x00track"; artist-only lookups use an empty track
	mu    sync.RWMutex
	cache map[string][]string
}

// New creates a Last.fm client.
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		cache:      make(map[string][]string),
	}
}

// TopTags returns up to MaxTags tag names for a track, most popular first,
// falling back to the artist's tags when the track has none. An empty slice
// (not nil) means neither lookup yielded tags.
func (c *Client) TopTags(ctx context.Context, artist, track string) ([]string, error) {
	tags, err := c.lookup(ctx, artist, track)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		return tags, nil
	}
	return c.lookup(ctx, artist, "")
}

// lookup fetches either track tags (track != "") or artist tags, caching
// the result.
func (c *Client) lookup(ctx context.Context, artist, track string) ([]string, error) {
	key := artist + "\x00" + track

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	params := url.Values{
		"artist":      {artist},
		"autocorrect": {"1"},
		"format":      {"json"},
		"api_key":     {c.apiKey},
	}
	if track != "" {
		params.Set("method", "track.getTopTags")
		params.Set("track", track)
	} else {
		params.Set("method", "artist.getTopTags")
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}

	var payload tagsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing tags response: %w", err)
	}

	names := make([]string, 0, len(payload.TopTags.Tag))
	for _, t := range payload.TopTags.Tag {
		names = append(names, t.Name)
		if len(names) == MaxTags {
			break
		}
	}

	c.mu.Lock()
	c.cache[key] = names
	c.mu.Unlock()

	return names, nil
}

// get performs an HTTP GET, retrying once after a short delay if the API
// reports a rate limit.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	body, err := c.getOnce(ctx, reqURL)
	if !errors.Is(err, ErrRateLimited) {
		return body, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
	}
	return c.getOnce(ctx, reqURL)
}

func (c *Client) getOnce(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	return body, nil
}

// tagsPayload covers both track.getTopTags and artist.getTopTags responses.
type tagsPayload struct {
	TopTags struct {
		Tag []struct {
			Name  string `json:"name"`
			Count int    `json:"count,omitempty"`
		} `json:"tag"`
	} `json:"toptags"`
}

// apiError is a Last.fm error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
