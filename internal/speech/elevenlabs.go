package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxpersona/voxpersona/internal/log"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModel   = "eleven_monolingual_v1"
	elevenLabsTimeout        = 30 * time.Second
)

// ElevenLabsConfig holds ElevenLabs API settings.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string // overridable for tests
}

// ElevenLabs synthesizes speech through the ElevenLabs HTTP API. The API
// returns raw MP3 audio with no timing data, so alignment is estimated from
// the audio size.
type ElevenLabs struct {
	cfg    ElevenLabsConfig
	client *http.Client
	logger log.Logger
}

// NewElevenLabs creates an ElevenLabs-backed synthesizer.
func NewElevenLabs(cfg ElevenLabsConfig, logger log.Logger) *ElevenLabs {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultElevenLabsBaseURL
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = defaultElevenLabsModel
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &ElevenLabs{
		cfg:    cfg,
		client: &http.Client{Timeout: elevenLabsTimeout},
		logger: logger,
	}
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize produces MP3 audio for text with estimated per-character timing.
// Any failure is logged and collapses to a zero Output.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) Output {
	if e == nil || strings.TrimSpace(e.cfg.APIKey) == "" {
		return Output{}
	}

	body, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: e.cfg.ModelID})
	if err != nil {
		e.logger.Warn("encoding elevenlabs request", "error", err)
		return Output{}
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(e.cfg.BaseURL, "/"), e.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("building elevenlabs request", "error", err)
		return Output{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("elevenlabs synthesis failed", "error", err)
		return Output{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		e.logger.Warn("elevenlabs synthesis failed",
			"status", resp.StatusCode,
			"detail", string(detail),
		)
		return Output{}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Warn("reading elevenlabs audio", "error", err)
		return Output{}
	}
	if len(audio) == 0 {
		e.logger.Warn("elevenlabs returned empty audio")
		return Output{}
	}

	return Output{
		Audio:     audio,
		Alignment: EstimateTiming(text, EstimateDurationFromAudio(audio)),
	}
}
