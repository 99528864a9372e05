package tempo

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
)

// TagFetcher returns descriptive tags for a track, most popular first.
type TagFetcher interface {
	TopTags(ctx context.Context, artist, title string) ([]string, error)
}

// tagRule maps a set of tag words to a fixed BPM constant. Rules are
// checked in order; the first rule with a matching tag wins.
type tagRule struct {
	bpm  int
	tags []string
}

var tagTable = []tagRule{
	{140, []string{"fast", "upbeat", "dance", "electronic", "edm"}},
	{80, []string{"slow", "ballad", "acoustic", "country", "folk"}},
	{150, []string{"hip-hop", "rap", "trap"}},
	{130, []string{"rock", "alternative", "indie"}},
	{125, []string{"pop", "electropop", "synth-pop"}},
	{110, []string{"r&b", "soul", "blues"}},
	{90, []string{"jazz", "lounge"}},
	{70, []string{"classical", "orchestral"}},
}

// fallbackKeywords is the smaller vocabulary used when no tag matches the
// table exactly. A tag matches a keyword only when the tag is contained in
// the keyword, so "pop" matches but "popgirl" does not. The matched
// constants are averaged.
var fallbackKeywords = []struct {
	keyword string
	bpm     int
}{
	{"fast", 140},
	{"upbeat", 140},
	{"slow", 80},
	{"ballad", 80},
	{"pop", 125},
	{"rock", 130},
	{"hip-hop", 150},
	{"rap", 150},
}

// TagAdapter maps descriptive tags from a metadata service to BPM constants.
type TagAdapter struct {
	fetcher TagFetcher
}

// NewTagAdapter creates the tag-heuristic adapter.
func NewTagAdapter(fetcher TagFetcher) *TagAdapter {
	return &TagAdapter{fetcher: fetcher}
}

// Name implements Adapter.
func (a *TagAdapter) Name() string { return string(SourceTagHeuristic) }

// Resolve implements Adapter.
func (a *TagAdapter) Resolve(ctx context.Context, title, artist string) (Estimate, error) {
	tags, err := a.fetcher.TopTags(ctx, artist, title)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: tags for %q by %q: %v", ErrUnresolved, title, artist, err)
	}
	if len(tags) == 0 {
		return Estimate{}, fmt.Errorf("%w: no tags for %q by %q", ErrUnresolved, title, artist)
	}

	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := strings.ToLower(strings.TrimSpace(t)); n != "" {
			normalized = append(normalized, n)
		}
	}

	// Exact table match first, in priority order.
	for _, rule := range tagTable {
		for _, tag := range normalized {
			if slices.Contains(rule.tags, tag) {
				return Estimate{
					BPM:        rule.bpm,
					Source:     SourceTagHeuristic,
					Confidence: 0.5,
					Genre:      tag,
				}, nil
			}
		}
	}

	// Keyword fallback: average the constants of every matched tag.
	var sum, n int
	for _, tag := range normalized {
		for _, k := range fallbackKeywords {
			if strings.Contains(k.keyword, tag) {
				sum += k.bpm
				n++
				break
			}
		}
	}
	if n == 0 {
		return Estimate{}, fmt.Errorf("%w: no tag keyword match for %q by %q", ErrUnresolved, title, artist)
	}

	return Estimate{
		BPM:        clampBPM(int(math.Round(float64(sum) / float64(n)))),
		Source:     SourceTagHeuristic,
		Confidence: 0.3,
	}, nil
}
