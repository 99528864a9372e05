// Package service orchestrates tempo resolution, candidate retrieval, and
// playlist assembly into the playlist-generation operations exposed to the
// web and CLI layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/reedham/go-tempo-playlist/internal/playlist"
	"github.com/reedham/go-tempo-playlist/internal/spotify"
	"github.com/reedham/go-tempo-playlist/internal/tempo"
)

// User-facing errors. Everything else that can go wrong inside the fallback
// chain or a candidate query is logged and recovered.
var (
	// ErrMissingInput means the request lacks a title, artist, or positive
	// target duration. Checked before any network call.
	ErrMissingInput = errors.New("song title and artist are required")

	// ErrReferenceNotFound means the reference track could not be located,
	// leaving nothing to anchor the playlist against.
	ErrReferenceNotFound = errors.New("reference song not found")
)

// TrackFinder locates the reference track.
type TrackFinder interface {
	FindTrack(ctx context.Context, title, artist string) (*playlist.Track, error)
}

// TempoResolver resolves a tempo estimate; it has no failure mode.
type TempoResolver interface {
	Resolve(ctx context.Context, title, artist string) tempo.Estimate
}

// CandidateSource produces ranked candidate tracks for a reference.
type CandidateSource interface {
	Candidates(ctx context.Context, ref playlist.Track, genre string, max int) []playlist.Track
}

// Generator sequences the playlist-generation pipeline. It holds no request
// state and is safe for concurrent use.
type Generator struct {
	finder        TrackFinder
	resolver      TempoResolver
	candidates    CandidateSource
	logger        *log.Logger
	maxCandidates int
}

// NewGenerator creates a playlist generator.
func NewGenerator(finder TrackFinder, resolver TempoResolver, candidates CandidateSource, logger *log.Logger) *Generator {
	return &Generator{
		finder:        finder,
		resolver:      resolver,
		candidates:    candidates,
		logger:        logger,
		maxCandidates: playlist.DefaultMaxCandidates,
	}
}

// Generation bundles the assembled playlist with the tempo detection that
// produced it, so callers can report what was detected even when the request
// overrode the BPM.
type Generation struct {
	Playlist playlist.Result
	Detected tempo.Estimate
}

// ResolveTempo resolves a tempo estimate standalone, for the
// detect-then-override interaction. It fails only on missing input.
func (g *Generator) ResolveTempo(ctx context.Context, title, artist string) (tempo.Estimate, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return tempo.Estimate{}, ErrMissingInput
	}
	return g.resolver.Resolve(ctx, title, artist), nil
}

// GeneratePlaylist runs the full pipeline: validate, locate the reference
// track, resolve its tempo, gather candidates, and assemble the playlist.
// Identical inputs against stable providers yield identical results.
func (g *Generator) GeneratePlaylist(ctx context.Context, req playlist.Request) (*Generation, error) {
	title := strings.TrimSpace(req.ReferenceTitle)
	artist := strings.TrimSpace(req.ReferenceArtist)
	if title == "" || artist == "" {
		return nil, ErrMissingInput
	}
	if req.TargetDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: target duration must be positive", ErrMissingInput)
	}

	ref, err := g.finder.FindTrack(ctx, title, artist)
	if err != nil {
		if errors.Is(err, spotify.ErrTrackNotFound) {
			return nil, ErrReferenceNotFound
		}
		// Transport failures while fetching the reference have no fallback.
		return nil, fmt.Errorf("finding reference track: %w", err)
	}

	detected := g.resolver.Resolve(ctx, title, artist)

	targetBPM := detected.BPM
	if req.OverrideBPM > 0 {
		targetBPM = req.OverrideBPM
		g.logger.Info("using tempo override",
			"override", req.OverrideBPM, "detected", detected.BPM)
	}

	candidates := g.candidates.Candidates(ctx, *ref, detected.Genre, g.maxCandidates)

	targetSeconds := int(req.TargetDurationMinutes * 60)
	result := playlist.Assemble(candidates, targetBPM, targetSeconds, detected.Genre)

	g.logger.Info("playlist assembled",
		"songs", len(result.Songs),
		"totalSeconds", result.TotalDurationSeconds,
		"targetSeconds", targetSeconds,
		"bpm", targetBPM,
		"tempoSource", detected.Source)

	return &Generation{Playlist: result, Detected: detected}, nil
}
