package rag

import (
	"context"
	"strings"

	"github.com/voxpersona/voxpersona/internal/log"
)

// completer is the slice of Generator the condenser needs.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Condenser rewrites follow-up questions into standalone search queries so
// retrieval works on pronoun-heavy turns like "what did you use for that?".
//
// Condensation is best-effort: any failure or degenerate model output falls
// back to the original question. It only ever affects retrieval targeting,
// never what gets answered.
type Condenser struct {
	llm    completer
	logger log.Logger
}

// NewCondenser creates a Condenser.
func NewCondenser(llm completer, logger log.Logger) *Condenser {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Condenser{llm: llm, logger: logger}
}

// Condense returns the search query for question given formatted history.
// With empty history the question is returned unchanged without a backend
// call. A candidate that does not end in "?" is discarded: the model answered
// conversationally instead of rephrasing.
func (c *Condenser) Condense(ctx context.Context, history, question string) string {
	if strings.TrimSpace(history) == "" {
		return question
	}

	candidate, err := c.llm.Complete(ctx, ComposeCondensePrompt(history, question))
	if err != nil {
		c.logger.Warn("query condensation failed, using original question", "error", err)
		return question
	}

	candidate = strings.TrimSpace(candidate)
	if !strings.HasSuffix(candidate, "?") {
		c.logger.Debug("discarding degenerate condensation output", "candidate_length", len(candidate))
		return question
	}
	return candidate
}
