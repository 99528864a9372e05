package lastfm

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reedham/go-tempo-playlist/internal/db"
)

// CacheTTL is the duration after which persisted tags are considered stale.
const CacheTTL = 30 * 24 * time.Hour

// CachedFetcher wraps Client with PostgreSQL persistence so repeated
// lookups for the same (artist, track) pair skip the network. Cache
// failures degrade to direct lookups rather than failing the request.
type CachedFetcher struct {
	store  *db.TagStore
	client *Client
	logger *log.Logger
}

// NewCachedFetcher creates a persisted tag fetcher.
func NewCachedFetcher(store *db.TagStore, client *Client, logger *log.Logger) *CachedFetcher {
	return &CachedFetcher{store: store, client: client, logger: logger}
}

// TopTags implements the same contract as Client.TopTags with a
// persistence layer in front.
func (f *CachedFetcher) TopTags(ctx context.Context, artist, track string) ([]string, error) {
	cached, err := f.store.Get(ctx, artist, track)
	if err != nil {
		f.logger.Warn("tag cache read failed", "artist", artist, "track", track, "error", err)
	} else if cached != nil && time.Since(cached.FetchedAt) < CacheTTL {
		return cached.Names, nil
	}

	names, err := f.client.TopTags(ctx, artist, track)
	if err != nil {
		return nil, err
	}

	if err := f.store.Put(ctx, artist, track, names); err != nil {
		f.logger.Warn("tag cache write failed", "artist", artist, "track", track, "error", err)
	}
	return names, nil
}
