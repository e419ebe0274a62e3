package rag

import (
	"strings"
	"testing"
)

func TestComposeAnswerPrompt(t *testing.T) {
	got := ComposeAnswerPrompt("some context", "User: hi\nAlex: hello", "What do you build?")

	if !strings.Contains(got, "some context") {
		t.Error("context slot not filled")
	}
	if !strings.Contains(got, "User: hi\nAlex: hello") {
		t.Error("history slot not filled")
	}
	if !strings.Contains(got, "Question: What do you build?") {
		t.Error("question slot not filled")
	}
	if strings.Contains(got, "{context}") || strings.Contains(got, "{chat_history}") || strings.Contains(got, "{question}") {
		t.Error("unfilled template slot remains")
	}
}

func TestComposeAnswerPrompt_EmptySlots(t *testing.T) {
	got := ComposeAnswerPrompt("", "", "hello?")
	if strings.Contains(got, "{") {
		t.Error("unfilled slot with empty inputs")
	}
	if !strings.Contains(got, "Question: hello?") {
		t.Error("question missing")
	}
}

func TestComposeCondensePrompt(t *testing.T) {
	got := ComposeCondensePrompt("User: tell me about the site", "what stack did you use?")

	if !strings.Contains(got, "User: tell me about the site") {
		t.Error("history slot not filled")
	}
	if !strings.Contains(got, "Follow Up Question: what stack did you use?") {
		t.Error("question slot not filled")
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "Standalone question:") {
		t.Error("prompt should end with the standalone question cue")
	}
}
