package speech

import (
	"context"
	"errors"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/voxpersona/voxpersona/internal/log"
)

// pollySampleRate is the audio sample rate requested from Polly.
const pollySampleRate = "24000"

// synthClient is the subset of the Polly API the adapter uses. Narrowed for
// testability.
type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyConfig holds Amazon Polly settings.
type PollyConfig struct {
	Region  string
	VoiceID string
	Engine  string // "standard" or "neural"
}

// Polly synthesizes speech through Amazon Polly and extracts viseme/word
// timing from its speech marks stream. Polly needs two SynthesizeSpeech
// calls per utterance: one for the audio, one for the marks.
type Polly struct {
	client synthClient
	cfg    PollyConfig
	logger log.Logger
}

// NewPolly creates a Polly-backed synthesizer using the SDK's default
// credential chain.
func NewPolly(ctx context.Context, cfg PollyConfig, logger log.Logger) (*Polly, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return NewPollyWithClient(polly.NewFromConfig(awsCfg), cfg, logger), nil
}

// NewPollyWithClient creates a Polly synthesizer with an injected client.
func NewPollyWithClient(client synthClient, cfg PollyConfig, logger log.Logger) *Polly {
	if strings.TrimSpace(cfg.VoiceID) == "" {
		cfg.VoiceID = "Matthew"
	}
	if strings.TrimSpace(cfg.Engine) == "" {
		cfg.Engine = "neural"
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Polly{client: client, cfg: cfg, logger: logger}
}

// Synthesize produces MP3 audio plus viseme/word marks for text. Any backend
// failure is logged and collapses to a zero Output; the caller's response
// degrades to text-only.
func (p *Polly) Synthesize(ctx context.Context, text string) Output {
	if p == nil || p.client == nil {
		return Output{}
	}

	engine := pollytypes.EngineStandard
	if strings.EqualFold(p.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}
	sampleRate := pollySampleRate

	audioOut, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		SampleRate:   &sampleRate,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(p.cfg.VoiceID),
	})
	if err != nil {
		p.logSynthesisError("audio", err)
		return Output{}
	}
	audio, err := readStream(audioOut)
	if err != nil {
		p.logger.Warn("reading polly audio stream", "error", err)
		return Output{}
	}

	marksOut, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:          engine,
		OutputFormat:    pollytypes.OutputFormatJson,
		Text:            &text,
		TextType:        pollytypes.TextTypeText,
		VoiceId:         pollytypes.VoiceId(p.cfg.VoiceID),
		SpeechMarkTypes: []pollytypes.SpeechMarkType{pollytypes.SpeechMarkTypeViseme, pollytypes.SpeechMarkTypeWord},
	})
	if err != nil {
		p.logSynthesisError("marks", err)
		return Output{}
	}
	marksData, err := readStream(marksOut)
	if err != nil {
		p.logger.Warn("reading polly marks stream", "error", err)
		return Output{}
	}

	return Output{
		Audio:     audio,
		Alignment: ParseSpeechMarks(marksData, p.logger),
	}
}

// logSynthesisError logs a Polly failure with its API error code when one is
// available, so quota and validation problems are distinguishable in logs.
func (p *Polly) logSynthesisError(stage string, err error) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		p.logger.Warn("polly synthesis failed",
			"stage", stage,
			"code", apiErr.ErrorCode(),
			"error", err,
		)
		return
	}
	p.logger.Warn("polly synthesis failed", "stage", stage, "error", err)
}

// readStream drains and closes a SynthesizeSpeech audio stream.
func readStream(out *polly.SynthesizeSpeechOutput) ([]byte, error) {
	if out == nil || out.AudioStream == nil {
		return nil, errors.New("empty audio stream")
	}
	defer out.AudioStream.Close()
	return io.ReadAll(out.AudioStream)
}
