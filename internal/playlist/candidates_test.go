package playlist

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

// fakeSearcher maps queries to canned results; unknown queries error.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]Track
	calls   []string
}

func (f *fakeSearcher) SearchTracks(_ context.Context, query string, _ int) ([]Track, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	tracks, ok := f.results[query]
	if !ok {
		return nil, errors.New("search unavailable")
	}
	return tracks, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestCandidates_MergeDedupeAndRank(t *testing.T) {
	ref := Track{ID: "ref", Artists: []string{"Queen"}, ReleaseYear: 1975}

	searcher := &fakeSearcher{results: map[string][]Track{
		`artist:"Queen"`: {
			testTrack("a", 200, 60),
			testTrack("b", 180, 90),
			{ID: "ref", DurationMs: 100000, Popularity: 99}, // the reference itself
		},
		`genre:"rock"`: {
			testTrack("a", 200, 10), // duplicate: first occurrence wins
			testTrack("c", 240, 90), // ties with b on popularity
		},
		`year:1973-1977`: {
			testTrack("d", 220, 75),
		},
	}}

	p := NewProvider(searcher, discardLogger())
	got := p.Candidates(context.Background(), ref, "rock", 10)

	wantOrder := []string{"b", "c", "d", "a"}
	if len(got) != len(wantOrder) {
		t.Fatalf("Candidates() got %d tracks, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("Candidates()[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}

	// Duplicate "a" must keep the first occurrence's fields.
	if got[3].Popularity != 60 {
		t.Errorf("duplicate track kept popularity %d, want 60 (first occurrence)", got[3].Popularity)
	}
}

func TestCandidates_StrategyFailureIsSilent(t *testing.T) {
	ref := Track{ID: "ref", Artists: []string{"Queen"}}

	// Only the genre query is configured; the artist query errors.
	searcher := &fakeSearcher{results: map[string][]Track{
		`genre:"rock"`: {testTrack("a", 200, 50)},
	}}

	p := NewProvider(searcher, discardLogger())
	got := p.Candidates(context.Background(), ref, "rock", 10)

	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Candidates() = %v, want single track a", got)
	}
}

func TestCandidates_AllStrategiesFail(t *testing.T) {
	ref := Track{ID: "ref", Artists: []string{"Queen"}}
	searcher := &fakeSearcher{results: map[string][]Track{}}

	p := NewProvider(searcher, discardLogger())
	got := p.Candidates(context.Background(), ref, "", 10)

	if len(got) != 0 {
		t.Errorf("Candidates() got %d tracks, want 0", len(got))
	}
}

func TestCandidates_GenericFallbackWhenGenreUnknown(t *testing.T) {
	ref := Track{ID: "ref", Artists: []string{"Queen"}}
	searcher := &fakeSearcher{results: map[string][]Track{}}

	p := NewProvider(searcher, discardLogger())
	p.Candidates(context.Background(), ref, "", 10)

	found := false
	for _, q := range searcher.calls {
		if q == `genre:"pop"` {
			found = true
		}
	}
	if !found {
		t.Errorf("expected generic genre query, got calls %v", searcher.calls)
	}
}

func TestCandidates_Truncation(t *testing.T) {
	ref := Track{ID: "ref", Artists: []string{"Queen"}}

	var many []Track
	for i := 0; i < 30; i++ {
		many = append(many, testTrack(string(rune('A'+i)), 200, i))
	}
	searcher := &fakeSearcher{results: map[string][]Track{
		`artist:"Queen"`: many,
		`genre:"pop"`:    nil,
	}}

	p := NewProvider(searcher, discardLogger())
	got := p.Candidates(context.Background(), ref, "", 5)

	if len(got) != 5 {
		t.Fatalf("Candidates() got %d tracks, want 5", len(got))
	}
	// Highest popularity first after truncation.
	if got[0].Popularity != 29 {
		t.Errorf("Candidates()[0].Popularity = %d, want 29", got[0].Popularity)
	}
}
