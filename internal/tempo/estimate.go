// Package tempo resolves a song's tempo through an ordered chain of
// heterogeneous sources, from the platform's own audio analysis down to
// hard-coded heuristics. The chain always terminates with an estimate.
package tempo

import (
	"context"
	"errors"
)

// Source identifies which adapter produced an estimate.
type Source string

const (
	SourceAudioAnalysis   Source = "audio_analysis"
	SourceLLM             Source = "llm_estimate"
	SourceTagHeuristic    Source = "tag_heuristic"
	SourceArtistHeuristic Source = "artist_heuristic"
	SourceDefault         Source = "default"
)

// BPM bounds and the terminal fallback value.
const (
	MinBPM     = 1
	MaxBPM     = 300
	DefaultBPM = 120
)

// ErrUnresolved means a single source could not produce an estimate. It is
// an expected steady-state outcome, recovered by moving to the next source,
// and never reaches callers of the resolver.
var ErrUnresolved = errors.New("tempo unresolved")

// Estimate is a resolved tempo, annotated with its origin.
type Estimate struct {
	BPM        int     `json:"bpm"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence,omitempty"`
	Genre      string  `json:"genre,omitempty"`
}

// Adapter attempts to resolve a tempo for a (title, artist) pair.
// Implementations return an error wrapping ErrUnresolved when the source has
// no answer; the resolver treats every error the same way.
type Adapter interface {
	Name() string
	Resolve(ctx context.Context, title, artist string) (Estimate, error)
}

// clampBPM forces a value into the valid [MinBPM, MaxBPM] range.
func clampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}
