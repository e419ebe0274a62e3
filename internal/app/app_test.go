package app

import (
	"context"
	"errors"
	"testing"

	"github.com/voxpersona/voxpersona/internal/config"
	"github.com/voxpersona/voxpersona/internal/log"
	"github.com/voxpersona/voxpersona/internal/speech"
)

func TestProvideSynthesizer_None(t *testing.T) {
	cfg := &config.Config{SpeechProvider: config.SpeechProviderNone}

	synth, err := provideSynthesizer(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("provideSynthesizer: %v", err)
	}
	if _, ok := synth.(speech.Noop); !ok {
		t.Errorf("synthesizer = %T, want speech.Noop", synth)
	}
}

func TestProvideSynthesizer_ElevenLabs(t *testing.T) {
	cfg := &config.Config{
		SpeechProvider:    config.SpeechProviderElevenLabs,
		ElevenLabsAPIKey:  "key",
		ElevenLabsVoiceID: "voice",
	}

	synth, err := provideSynthesizer(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("provideSynthesizer: %v", err)
	}
	if _, ok := synth.(*speech.ElevenLabs); !ok {
		t.Errorf("synthesizer = %T, want *speech.ElevenLabs", synth)
	}
}

func TestProvideSynthesizer_Unknown(t *testing.T) {
	cfg := &config.Config{SpeechProvider: "espeak"}

	_, err := provideSynthesizer(context.Background(), cfg, log.NewNop())
	if !errors.Is(err, config.ErrInvalidSpeechProvider) {
		t.Errorf("error = %v, want ErrInvalidSpeechProvider", err)
	}
}

func TestClose_NilFields(t *testing.T) {
	a := &App{}
	if err := a.Close(); err != nil {
		t.Errorf("Close on empty app: %v", err)
	}
}
