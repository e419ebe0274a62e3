// Package speech wraps text-to-speech backends and normalizes their output
// into a uniform audio + alignment representation for lip-sync playback.
//
// Synthesis is strictly best-effort: every adapter absorbs backend failures
// and returns a zero Output instead of an error, so the conversation pipeline
// can always degrade to text-only responses.
package speech

import "context"

// Output is the result of synthesizing one utterance. A zero Output means the
// backend is unconfigured or synthesis failed; callers must treat both fields
// as optional.
type Output struct {
	Audio     []byte
	Alignment Alignment
}

// Synthesizer converts text into speech audio with timing data.
type Synthesizer interface {
	// Synthesize never fails: backend errors are logged by the adapter and
	// collapse to a zero Output.
	Synthesize(ctx context.Context, text string) Output
}

// Noop is the Synthesizer for deployments without a speech backend.
type Noop struct{}

// Synthesize returns a zero Output.
func (Noop) Synthesize(context.Context, string) Output { return Output{} }
