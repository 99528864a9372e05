package playlist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// DefaultMaxCandidates caps the ranked candidate list handed to the
	// assembler.
	DefaultMaxCandidates = 50

	// perStrategyLimit is how many tracks each query strategy requests.
	perStrategyLimit = 20

	// yearWindow widens the release-year query around the reference year.
	yearWindow = 2

	// fallbackGenre is queried when the reference genre is unknown.
	fallbackGenre = "pop"
)

// QuerySearcher runs a free-form track search against the music platform.
type QuerySearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
}

// Provider produces a deduplicated, popularity-ranked candidate list for a
// reference track. Individual query strategies fail silently; an empty
// result is valid.
type Provider struct {
	search QuerySearcher
	logger *log.Logger
}

// NewProvider creates a candidate provider.
func NewProvider(search QuerySearcher, logger *log.Logger) *Provider {
	return &Provider{search: search, logger: logger}
}

type queryStrategy struct {
	name  string
	query string
}

// strategies builds the independent query set for a reference track.
func strategies(ref Track, genre string) []queryStrategy {
	var qs []queryStrategy

	if artist := ref.PrimaryArtist(); artist != "" {
		qs = append(qs, queryStrategy{
			name:  "by-artist",
			query: fmt.Sprintf("artist:%q", artist),
		})
	}

	if genre != "" {
		qs = append(qs, queryStrategy{
			name:  "by-genre",
			query: fmt.Sprintf("genre:%q", genre),
		})
	} else {
		qs = append(qs, queryStrategy{
			name:  "generic-genre",
			query: fmt.Sprintf("genre:%q", fallbackGenre),
		})
	}

	if ref.ReleaseYear > 0 {
		qs = append(qs, queryStrategy{
			name:  "by-year",
			query: fmt.Sprintf("year:%d-%d", ref.ReleaseYear-yearWindow, ref.ReleaseYear+yearWindow),
		})
	}

	return qs
}

// Candidates fans out the query strategies, merges their results in strategy
// order, removes duplicates and the reference track itself, and returns up
// to max tracks sorted by descending popularity (stable, so earlier
// strategies win ties).
func (p *Provider) Candidates(ctx context.Context, ref Track, genre string, max int) []Track {
	if max <= 0 {
		max = DefaultMaxCandidates
	}

	qs := strategies(ref, genre)
	results := make([][]Track, len(qs))

	// The strategies have no ordering dependency, so they run concurrently;
	// indexed result slots keep the merge deterministic.
	var wg sync.WaitGroup
	for i, s := range qs {
		wg.Add(1)
		go func(i int, s queryStrategy) {
			defer wg.Done()
			tracks, err := p.search.SearchTracks(ctx, s.query, perStrategyLimit)
			if err != nil {
				p.logger.Warn("candidate query failed",
					"strategy", s.name, "query", s.query, "error", err)
				return
			}
			results[i] = tracks
		}(i, s)
	}
	wg.Wait()

	// Merge in strategy order; first occurrence of an ID wins.
	seen := make(map[string]bool)
	var merged []Track
	for _, tracks := range results {
		for _, t := range tracks {
			if t.ID == ref.ID || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			merged = append(merged, t)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Popularity > merged[j].Popularity
	})

	if len(merged) > max {
		merged = merged[:max]
	}
	return merged
}
