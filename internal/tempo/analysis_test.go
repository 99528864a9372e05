package tempo

import (
	"context"
	"errors"
	"testing"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
)

type stubSearcher struct {
	track     *playlist.Track
	trackErr  error
	tempo     float64
	tempoErr  error
	genres    []string
	genresErr error

	findCalls  int
	tempoCalls int
}

func (s *stubSearcher) FindTrack(_ context.Context, _, _ string) (*playlist.Track, error) {
	s.findCalls++
	return s.track, s.trackErr
}

func (s *stubSearcher) TrackTempo(_ context.Context, _ string) (float64, error) {
	s.tempoCalls++
	return s.tempo, s.tempoErr
}

func (s *stubSearcher) ArtistGenres(_ context.Context, _ string) ([]string, error) {
	return s.genres, s.genresErr
}

func TestAnalysisAdapter_Resolve(t *testing.T) {
	refTrack := &playlist.Track{ID: "t1", ArtistID: "a1"}

	t.Run("rounds tempo and picks first genre", func(t *testing.T) {
		searcher := &stubSearcher{
			track:  refTrack,
			tempo:  127.6,
			genres: []string{"glam rock", "rock"},
		}
		adapter := NewAnalysisAdapter(searcher)

		est, err := adapter.Resolve(context.Background(), "Song", "Artist")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if est.BPM != 128 {
			t.Errorf("Resolve() BPM = %d, want 128", est.BPM)
		}
		if est.Source != SourceAudioAnalysis {
			t.Errorf("Resolve() source = %s, want %s", est.Source, SourceAudioAnalysis)
		}
		if est.Genre != "glam rock" {
			t.Errorf("Resolve() genre = %q, want glam rock", est.Genre)
		}
	})

	t.Run("search failure is unresolved", func(t *testing.T) {
		searcher := &stubSearcher{trackErr: errors.New("401 unauthorized")}
		adapter := NewAnalysisAdapter(searcher)

		_, err := adapter.Resolve(context.Background(), "Song", "Artist")
		if !errors.Is(err, ErrUnresolved) {
			t.Fatalf("Resolve() error = %v, want ErrUnresolved", err)
		}
		if searcher.tempoCalls != 0 {
			t.Errorf("TrackTempo called %d times after failed search, want 0", searcher.tempoCalls)
		}
	})

	t.Run("missing tempo is unresolved", func(t *testing.T) {
		searcher := &stubSearcher{track: refTrack, tempoErr: errors.New("no tempo available")}
		adapter := NewAnalysisAdapter(searcher)

		_, err := adapter.Resolve(context.Background(), "Song", "Artist")
		if !errors.Is(err, ErrUnresolved) {
			t.Fatalf("Resolve() error = %v, want ErrUnresolved", err)
		}
	})

	t.Run("genre lookup failure does not fail the adapter", func(t *testing.T) {
		searcher := &stubSearcher{
			track:     refTrack,
			tempo:     110,
			genresErr: errors.New("rate limited"),
		}
		adapter := NewAnalysisAdapter(searcher)

		est, err := adapter.Resolve(context.Background(), "Song", "Artist")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if est.Genre != "" {
			t.Errorf("Resolve() genre = %q, want empty", est.Genre)
		}
	})
}
