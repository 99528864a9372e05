package tempo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TextCompleter sends a prompt to a language model and returns its reply.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const llmPromptFormat = `Estimate the tempo in beats per minute of the song %q by %q.

Typical ranges: ballads 60-80 BPM, pop and dance 120-140 BPM, fast electronic
140-160 BPM, hip-hop 80-100 BPM, country 80-120 BPM, jazz and classical vary
widely.

Answer in exactly two lines:
BPM: <integer>
Genre: <text>`

// The two fields are parsed independently so a malformed genre line never
// discards a usable BPM.
var (
	llmBPMPattern   = regexp.MustCompile(`(?i)BPM:?\s*(\d+)`)
	llmGenrePattern = regexp.MustCompile(`(?i)Genre:?\s*([^\n]+)`)
)

// ParseLLMEstimate extracts a BPM and optional genre from loosely formatted
// model output. ok is false only when no integer BPM can be found.
func ParseLLMEstimate(text string) (bpm int, genre string, ok bool) {
	m := llmBPMPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	bpm, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}

	if gm := llmGenrePattern.FindStringSubmatch(text); gm != nil {
		genre = strings.TrimSpace(gm[1])
	}
	return bpm, genre, true
}

// LLMAdapter asks a language model for a tempo estimate. Each call has
// per-request billing, so the resolver only reaches it when the audio
// analysis source fails.
type LLMAdapter struct {
	completer TextCompleter
}

// NewLLMAdapter creates the LLM-estimate adapter.
func NewLLMAdapter(completer TextCompleter) *LLMAdapter {
	return &LLMAdapter{completer: completer}
}

// Name implements Adapter.
func (a *LLMAdapter) Name() string { return string(SourceLLM) }

// Resolve implements Adapter.
func (a *LLMAdapter) Resolve(ctx context.Context, title, artist string) (Estimate, error) {
	prompt := fmt.Sprintf(llmPromptFormat, title, artist)

	reply, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: completion for %q by %q: %v", ErrUnresolved, title, artist, err)
	}

	bpm, genre, ok := ParseLLMEstimate(reply)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: no BPM in model reply %q", ErrUnresolved, reply)
	}

	return Estimate{
		BPM:        clampBPM(bpm),
		Source:     SourceLLM,
		Confidence: 0.6,
		Genre:      genre,
	}, nil
}
