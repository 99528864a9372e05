package tempo

import (
	"context"
	"fmt"
	"math"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
)

// TrackSearcher locates tracks and their platform-reported audio analysis.
type TrackSearcher interface {
	FindTrack(ctx context.Context, title, artist string) (*playlist.Track, error)
	TrackTempo(ctx context.Context, trackID string) (float64, error)
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// AnalysisAdapter resolves tempo from the platform's audio analysis. It is
// the most reliable source when available: a missing track, missing tempo
// field, or authorization failure are all expected outcomes reported as
// ErrUnresolved, never raised.
type AnalysisAdapter struct {
	search TrackSearcher
}

// NewAnalysisAdapter creates the primary audio-analysis adapter.
func NewAnalysisAdapter(search TrackSearcher) *AnalysisAdapter {
	return &AnalysisAdapter{search: search}
}

// Name implements Adapter.
func (a *AnalysisAdapter) Name() string { return string(SourceAudioAnalysis) }

// Resolve implements Adapter.
func (a *AnalysisAdapter) Resolve(ctx context.Context, title, artist string) (Estimate, error) {
	track, err := a.search.FindTrack(ctx, title, artist)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: searching %q by %q: %v", ErrUnresolved, title, artist, err)
	}

	bpm, err := a.search.TrackTempo(ctx, track.ID)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: analysis for track %s: %v", ErrUnresolved, track.ID, err)
	}
	if bpm <= 0 {
		return Estimate{}, fmt.Errorf("%w: analysis for track %s has no tempo", ErrUnresolved, track.ID)
	}

	est := Estimate{
		BPM:        clampBPM(int(math.Round(bpm))),
		Source:     SourceAudioAnalysis,
		Confidence: 0.9,
	}

	// Genre is best-effort from the primary artist; its absence never fails
	// the adapter.
	if track.ArtistID != "" {
		if genres, err := a.search.ArtistGenres(ctx, track.ArtistID); err == nil && len(genres) > 0 {
			est.Genre = genres[0]
		}
	}

	return est, nil
}
