package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks the configuration for consistency. Called by Load after
// unmarshalling; fail-fast so misconfiguration surfaces at startup, not on
// the first request.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model_name must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidModelName)
	}

	if c.HistoryPairs < 1 || c.HistoryPairs > 100 {
		return fmt.Errorf("%w: history_pairs must be 1-100, got %d", ErrInvalidHistoryPairs, c.HistoryPairs)
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("%w: session_idle_minutes must be positive, got %d", ErrInvalidIdleTimeout, c.SessionIdleMinutes)
	}
	if c.DailyRequestLimit < 1 {
		return fmt.Errorf("%w: daily_request_limit must be positive, got %d", ErrInvalidDailyLimit, c.DailyRequestLimit)
	}

	if c.RetrievalTopK < 1 || c.RetrievalTopK > 50 {
		return fmt.Errorf("%w: retrieval_top_k must be 1-50, got %d", ErrInvalidTopK, c.RetrievalTopK)
	}
	if c.ChunkSize < 50 {
		return fmt.Errorf("%w: chunk_size must be at least 50, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", ErrInvalidChunking, c.ChunkOverlap)
	}

	switch c.SpeechProvider {
	case SpeechProviderNone, SpeechProviderPolly:
	case SpeechProviderElevenLabs:
		if strings.TrimSpace(c.ElevenLabsAPIKey) == "" {
			return fmt.Errorf("%w: ELEVENLABS_API_KEY is required for the elevenlabs provider", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: %q (expected %q, %q or empty)",
			ErrInvalidSpeechProvider, c.SpeechProvider, SpeechProviderPolly, SpeechProviderElevenLabs)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port must be 1-65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	return nil
}

// ValidateServe performs additional checks required by serve mode.
// GEMINI_API_KEY is consumed by Genkit directly; we only verify presence so
// the server fails at startup instead of on the first chat request.
func (c *Config) ValidateServe() error {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY (or GOOGLE_API_KEY) is required", ErrMissingAPIKey)
	}
	return nil
}
