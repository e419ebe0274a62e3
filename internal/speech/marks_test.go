package speech

import (
	"testing"

	"github.com/voxpersona/voxpersona/internal/log"
)

func TestParseSpeechMarks(t *testing.T) {
	data := []byte(`{"time":1000,"type":"viseme","value":"p"}
{"time":2000,"type":"word","value":"hi"}
{"time":2500,"type":"viseme","value":"t"}`)

	marks := ParseSpeechMarks(data, log.NewNop())

	if len(marks.Visemes) != 2 {
		t.Fatalf("Visemes count = %d, want 2", len(marks.Visemes))
	}
	if marks.Visemes[0].Time != 1.0 || marks.Visemes[0].Viseme != "p" {
		t.Errorf("Visemes[0] = %+v, want {1 p}", marks.Visemes[0])
	}
	if marks.Visemes[1].Time != 2.5 || marks.Visemes[1].Viseme != "t" {
		t.Errorf("Visemes[1] = %+v, want {2.5 t}", marks.Visemes[1])
	}
	if len(marks.Words) != 1 {
		t.Fatalf("Words count = %d, want 1", len(marks.Words))
	}
	if marks.Words[0].Time != 2.0 || marks.Words[0].Value != "hi" {
		t.Errorf("Words[0] = %+v, want {2 hi}", marks.Words[0])
	}
}

func TestParseSpeechMarks_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"time":100,"type":"viseme","value":"a"}
not json at all
{"time":200,"type":"word","value":"ok"}

{"time":300,"type":"sentence","value":"ignored type"}`)

	marks := ParseSpeechMarks(data, log.NewNop())

	if len(marks.Visemes) != 1 {
		t.Errorf("Visemes count = %d, want 1", len(marks.Visemes))
	}
	if len(marks.Words) != 1 {
		t.Errorf("Words count = %d, want 1", len(marks.Words))
	}
}

func TestParseSpeechMarks_Empty(t *testing.T) {
	marks := ParseSpeechMarks(nil, log.NewNop())
	if len(marks.Visemes) != 0 || len(marks.Words) != 0 {
		t.Errorf("expected empty marks, got %+v", marks)
	}
}
