// Package spotify wraps the Spotify Web API for track search, audio
// features, and artist genre lookups.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/zmb3/spotify/v2"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
)

// Sentinel errors.
var (
	// ErrTrackNotFound means a search yielded no usable match.
	ErrTrackNotFound = errors.New("track not found")

	// ErrNoTempo means the audio analysis lacks a tempo value.
	ErrNoTempo = errors.New("no tempo available")
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// FindTrack searches for a track by title and artist and returns the best
// match, or ErrTrackNotFound.
func (c *Client) FindTrack(ctx context.Context, title, artist string) (*playlist.Track, error) {
	query := fmt.Sprintf("track:%q artist:%q", title, artist)

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("searching track: %w", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, ErrTrackNotFound
	}

	track := convertTrack(result.Tracks.Tracks[0])
	return &track, nil
}

// TrackTempo returns the tempo in BPM from Spotify's audio features for the
// given track, or ErrNoTempo when the analysis has none.
func (c *Client) TrackTempo(ctx context.Context, trackID string) (float64, error) {
	features, err := c.api.GetAudioFeatures(ctx, spotify.ID(trackID))
	if err != nil {
		return 0, fmt.Errorf("fetching audio features: %w", err)
	}
	if len(features) == 0 || features[0] == nil || features[0].Tempo <= 0 {
		return 0, ErrNoTempo
	}
	return float64(features[0].Tempo), nil
}

// ArtistGenres returns the genres Spotify lists for an artist.
func (c *Client) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	artist, err := c.api.GetArtist(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, fmt.Errorf("fetching artist: %w", err)
	}
	return artist.Genres, nil
}

// SearchTracks runs a free-form query and converts the results.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]playlist.Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(ft))
	}
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a playlist.Track.
func convertTrack(ft spotify.FullTrack) playlist.Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	var artistID string
	if len(ft.Artists) > 0 {
		artistID = ft.Artists[0].ID.String()
	}

	return playlist.Track{
		ID:          ft.ID.String(),
		Title:       ft.Name,
		Artists:     artists,
		Album:       ft.Album.Name,
		DurationMs:  int(ft.Duration),
		PreviewURL:  ft.PreviewURL,
		Popularity:  int(ft.Popularity),
		ReleaseYear: releaseYear(ft.Album.ReleaseDate),
		ArtistID:    artistID,
	}
}

// releaseYear parses the year out of Spotify's release date, which may be
// "2006", "2006-01" or "2006-01-02".
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
