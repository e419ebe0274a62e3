// Package chat coordinates one conversation turn: throttling, query
// condensation, retrieval, prompt composition, generation, history update,
// and speech synthesis.
package chat

import (
	"context"
	"fmt"

	"github.com/voxpersona/voxpersona/internal/log"
	"github.com/voxpersona/voxpersona/internal/rag"
	"github.com/voxpersona/voxpersona/internal/speech"
)

// anonymousIdentifier throttles requests without a session key as one shared
// bucket.
const anonymousIdentifier = "anonymous"

// Generator produces answer text, blocking or streaming.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string, fn rag.StreamFunc) (string, error)
}

// Retriever returns ranked passages for a search query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Condenser rewrites a follow-up question into a standalone search query.
type Condenser interface {
	Condense(ctx context.Context, history, question string) string
}

// HistoryStore records and formats per-session conversation history.
type HistoryStore interface {
	RecordTurn(sessionID, question, answer string)
	Formatted(sessionID string) string
}

// Gate bounds request volume per identifier.
type Gate interface {
	Allow(identifier string) bool
}

// Result is the outcome of one completed turn.
type Result struct {
	Text   string
	Speech speech.Output
}

// Orchestrator runs the conversation pipeline. All collaborators are
// injected; the orchestrator owns only sequencing and error policy.
type Orchestrator struct {
	gate      Gate
	history   HistoryStore
	condenser Condenser
	retriever Retriever
	generator Generator
	synth     speech.Synthesizer
	logger    log.Logger
}

// New creates an Orchestrator.
func New(gate Gate, history HistoryStore, condenser Condenser, retriever Retriever,
	generator Generator, synth speech.Synthesizer, logger log.Logger) (*Orchestrator, error) {
	switch {
	case gate == nil:
		return nil, fmt.Errorf("gate is required")
	case history == nil:
		return nil, fmt.Errorf("history store is required")
	case condenser == nil:
		return nil, fmt.Errorf("condenser is required")
	case retriever == nil:
		return nil, fmt.Errorf("retriever is required")
	case generator == nil:
		return nil, fmt.Errorf("generator is required")
	}
	if synth == nil {
		synth = speech.Noop{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Orchestrator{
		gate:      gate,
		history:   history,
		condenser: condenser,
		retriever: retriever,
		generator: generator,
		synth:     synth,
		logger:    logger,
	}, nil
}

// Execute runs one blocking turn: the full answer text is produced in a
// single model call, then history is updated and speech synthesized.
func (o *Orchestrator) Execute(ctx context.Context, sessionID, message string) (Result, error) {
	prompt, err := o.prepare(ctx, sessionID, message)
	if err != nil {
		return Result{}, err
	}

	text, err := o.generator.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return o.finish(ctx, sessionID, message, text), nil
}

// ExecuteStream runs one streaming turn, forwarding each text delta to fn as
// it arrives. History update and synthesis run after the stream completes,
// on the accumulated full text.
func (o *Orchestrator) ExecuteStream(ctx context.Context, sessionID, message string, fn rag.StreamFunc) (Result, error) {
	prompt, err := o.prepare(ctx, sessionID, message)
	if err != nil {
		return Result{}, err
	}

	text, err := o.generator.Stream(ctx, prompt, fn)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return o.finish(ctx, sessionID, message, text), nil
}

// prepare runs the shared front half of a turn: throttle, condense, retrieve,
// compose. Returns the final prompt.
func (o *Orchestrator) prepare(ctx context.Context, sessionID, message string) (string, error) {
	identifier := sessionID
	if identifier == "" {
		identifier = anonymousIdentifier
	}
	if !o.gate.Allow(identifier) {
		o.logger.Info("request throttled", "identifier", identifier)
		return "", ErrRateLimited
	}

	var history string
	if sessionID != "" {
		history = o.history.Formatted(sessionID)
	}

	// Condensation targets retrieval only; the original question is what
	// gets answered and recorded.
	query := message
	if history != "" {
		query = o.condenser.Condense(ctx, history, message)
	}

	passages, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	return rag.ComposeAnswerPrompt(rag.ContextBlock(passages), history, message), nil
}

// finish runs the shared back half: record the exchange, synthesize speech.
// Synthesis failures degrade to a text-only result inside the adapter.
func (o *Orchestrator) finish(ctx context.Context, sessionID, message, text string) Result {
	o.history.RecordTurn(sessionID, message, text)
	return Result{
		Text:   text,
		Speech: o.synth.Synthesize(ctx, text),
	}
}
