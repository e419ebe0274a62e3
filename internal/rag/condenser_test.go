package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxpersona/voxpersona/internal/log"
)

// fakeCompleter returns a canned response and records the prompt.
type fakeCompleter struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.response, f.err
}

func TestCondenser_EmptyHistorySkipsBackend(t *testing.T) {
	llm := &fakeCompleter{response: "should not be used?"}
	c := NewCondenser(llm, log.NewNop())

	got := c.Condense(context.Background(), "", "what do you do?")

	if got != "what do you do?" {
		t.Errorf("query = %q, want original question", got)
	}
	if llm.calls != 0 {
		t.Errorf("backend calls = %d, want 0", llm.calls)
	}
}

func TestCondenser_RewritesFollowUp(t *testing.T) {
	llm := &fakeCompleter{response: "  What stack did Alex use for the portfolio site?\n"}
	c := NewCondenser(llm, log.NewNop())

	got := c.Condense(context.Background(), "User: tell me about your site", "what did you use for that?")

	if got != "What stack did Alex use for the portfolio site?" {
		t.Errorf("query = %q", got)
	}
	if llm.calls != 1 {
		t.Errorf("backend calls = %d, want 1", llm.calls)
	}
	if !strings.Contains(llm.prompt, "what did you use for that?") {
		t.Error("prompt missing follow-up question")
	}
}

func TestCondenser_FallbackCases(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeCompleter
	}{
		{"backend error", &fakeCompleter{err: errors.New("backend down")}},
		{"no trailing question mark", &fakeCompleter{response: "I built it with Go and React."}},
		{"empty response", &fakeCompleter{response: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCondenser(tt.llm, log.NewNop())
			got := c.Condense(context.Background(), "User: earlier turn", "original question?")
			if got != "original question?" {
				t.Errorf("query = %q, want original question verbatim", got)
			}
		})
	}
}
