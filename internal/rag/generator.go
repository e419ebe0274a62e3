package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/voxpersona/voxpersona/internal/log"
)

// StreamFunc receives one text delta. Returning an error aborts generation.
type StreamFunc func(ctx context.Context, delta string) error

// Generator produces answer text through genkit.
type Generator struct {
	g      *genkit.Genkit
	model  string
	logger log.Logger
}

// NewGenerator creates a Generator bound to a model name.
func NewGenerator(g *genkit.Genkit, model string, logger log.Logger) *Generator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Generator{g: g, model: model, logger: logger}
}

// Complete runs one blocking generation and returns the full response text.
func (gen *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gen.g,
		ai.WithModelName(gen.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return text, nil
}

// Stream runs one streaming generation, forwarding each text delta to fn,
// and returns the full accumulated text. A callback error aborts the call.
func (gen *Generator) Stream(ctx context.Context, prompt string, fn StreamFunc) (string, error) {
	var full strings.Builder

	_, err := genkit.Generate(ctx, gen.g,
		ai.WithModelName(gen.model),
		ai.WithPrompt(prompt),
		ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			delta := chunk.Text()
			if delta == "" {
				return nil
			}
			full.WriteString(delta)
			if fn != nil {
				return fn(ctx, delta)
			}
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating streaming response: %w", err)
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return text, nil
}
