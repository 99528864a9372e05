// Package playlist contains the domain types and pure algorithms for
// building tempo-matched playlists.
package playlist

import "strings"

// Track is a candidate or reference track as reported by the music platform.
// Tracks are immutable inputs; the assembler never modifies them.
type Track struct {
	ID          string
	Title       string
	Artists     []string
	Album       string
	DurationMs  int
	PreviewURL  string
	Popularity  int
	ReleaseYear int
	ArtistID    string // primary artist, used for genre lookups
}

// DurationSeconds returns the track length in whole seconds.
func (t Track) DurationSeconds() int {
	return t.DurationMs / 1000
}

// ArtistDisplay joins the artist names for display.
func (t Track) ArtistDisplay() string {
	return strings.Join(t.Artists, ", ")
}

// PrimaryArtist returns the first listed artist name, or "".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Request describes a playlist-generation request.
type Request struct {
	ReferenceTitle        string  `json:"referenceTitle"`
	ReferenceArtist       string  `json:"referenceArtist"`
	TargetDurationMinutes float64 `json:"targetDurationMinutes"`
	OverrideBPM           int     `json:"overrideBpm,omitempty"` // 0 means no override
}

// Song is a playlist entry: a track projection stamped with the tempo the
// playlist was built around.
type Song struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	TempoBPM        int    `json:"tempoBpm"`
	Genre           string `json:"genre"`
	DurationSeconds int    `json:"durationSeconds"`
	SourceTrackID   string `json:"sourceTrackId"`
	PreviewURL      string `json:"previewUrl,omitempty"`
}

// Result is an assembled playlist.
type Result struct {
	Songs                []Song   `json:"songs"`
	TotalDurationSeconds int      `json:"totalDurationSeconds"`
	TargetTempoBPM       int      `json:"targetTempoBpm"`
	Genres               []string `json:"genres"`
}
