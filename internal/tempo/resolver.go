package tempo

import (
	"context"

	"github.com/charmbracelet/log"
)

// Resolver tries adapters in priority order and returns the first success.
// The chain is strictly sequential: only one answer is needed and the
// speculative sources have quota and billing costs, so cheaper and more
// reliable sources must finish before the next one is tried.
type Resolver struct {
	adapters []Adapter
	logger   *log.Logger
}

// NewResolver creates a resolver over adapters in priority order. A terminal
// default adapter is always appended, so Resolve cannot fail.
func NewResolver(logger *log.Logger, adapters ...Adapter) *Resolver {
	return &Resolver{
		adapters: append(adapters, NewDefaultAdapter()),
		logger:   logger,
	}
}

// DefaultAdapters builds the standard chain: audio analysis, LLM estimate,
// tag heuristic, artist heuristic. Nil collaborators drop their adapter from
// the chain (a deployment without an LLM key simply skips that source).
func DefaultAdapters(search TrackSearcher, completer TextCompleter, tags TagFetcher) []Adapter {
	var adapters []Adapter
	if search != nil {
		adapters = append(adapters, NewAnalysisAdapter(search))
	}
	if completer != nil {
		adapters = append(adapters, NewLLMAdapter(completer))
	}
	if tags != nil {
		adapters = append(adapters, NewTagAdapter(tags))
	}
	adapters = append(adapters, NewArtistAdapter())
	return adapters
}

// Resolve returns a tempo estimate for the given song. Adapter failures are
// logged and swallowed; the default adapter guarantees a result, so there is
// no error return.
func (r *Resolver) Resolve(ctx context.Context, title, artist string) Estimate {
	for _, a := range r.adapters {
		est, err := a.Resolve(ctx, title, artist)
		if err != nil {
			r.logger.Debug("tempo source failed",
				"source", a.Name(), "title", title, "artist", artist, "error", err)
			continue
		}

		est.BPM = clampBPM(est.BPM)
		r.logger.Info("tempo resolved",
			"source", a.Name(), "bpm", est.BPM, "title", title, "artist", artist)
		return est
	}

	// Unreachable while the default adapter is last, kept as a terminal
	// guarantee.
	return Estimate{BPM: DefaultBPM, Source: SourceDefault}
}
