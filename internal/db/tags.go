package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CachedTags is a persisted tag lookup for an (artist, track) pair.
type CachedTags struct {
	Artist    string
	Track     string
	Names     []string
	FetchedAt time.Time
}

// TagStore persists Last.fm tag lookups keyed by (artist, track). An empty
// track key holds artist-level tags.
type TagStore struct {
	pool *pgxpool.Pool
}

// Get returns the cached tags for a pair, or nil when nothing is cached.
// FetchedAt is the oldest row's timestamp so staleness checks are safe.
func (s *TagStore) Get(ctx context.Context, artist, track string) (*CachedTags, error) {
	query := `
		SELECT tag_name, fetched_at
		FROM tag_cache
		WHERE artist = $1 AND track = $2
		ORDER BY position
	`
	rows, err := s.pool.Query(ctx, query, artist, track)
	if err != nil {
		return nil, fmt.Errorf("querying tag cache: %w", err)
	}
	defer rows.Close()

	cached := &CachedTags{Artist: artist, Track: track}
	for rows.Next() {
		var name string
		var fetchedAt time.Time
		if err := rows.Scan(&name, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning cached tag: %w", err)
		}
		cached.Names = append(cached.Names, name)
		if cached.FetchedAt.IsZero() || fetchedAt.Before(cached.FetchedAt) {
			cached.FetchedAt = fetchedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cached.Names) == 0 {
		return nil, nil
	}
	return cached, nil
}

// Put replaces the cached tags for a pair.
func (s *TagStore) Put(ctx context.Context, artist, track string, names []string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM tag_cache WHERE artist = $1 AND track = $2`, artist, track); err != nil {
		return fmt.Errorf("clearing tag cache: %w", err)
	}
	if len(names) == 0 {
		return nil
	}

	query := `
		INSERT INTO tag_cache (artist, track, tag_name, position, fetched_at)
		SELECT $1, $2, name, pos, $3
		FROM unnest($4::text[]) WITH ORDINALITY AS t(name, pos)
		ON CONFLICT (artist, track, tag_name) DO UPDATE SET
			position = EXCLUDED.position,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := s.pool.Exec(ctx, query, artist, track, time.Now(), names); err != nil {
		return fmt.Errorf("upserting tag cache: %w", err)
	}
	return nil
}
