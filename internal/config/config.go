// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.voxpersona/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: generation model, embedder model
//   - Conversation: history window, idle timeout, daily request quota
//   - Retrieval: top-k, chunking parameters, knowledge directory
//   - Storage: PostgreSQL connection (see storage.go)
//   - Speech: TTS provider selection (Polly or ElevenLabs) and voices
//   - Server: address, CORS origins, proxy trust, burst limit
//
// Error Handling: sentinel errors wrapped with fmt.Errorf("%w: ...") so
// callers can use errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidHistoryPairs indicates the history window is out of range.
	ErrInvalidHistoryPairs = errors.New("invalid history pairs")

	// ErrInvalidIdleTimeout indicates the session idle timeout is out of range.
	ErrInvalidIdleTimeout = errors.New("invalid session idle timeout")

	// ErrInvalidDailyLimit indicates the daily request quota is out of range.
	ErrInvalidDailyLimit = errors.New("invalid daily request limit")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidChunking indicates chunk size/overlap are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidSpeechProvider indicates an unknown TTS provider name.
	ErrInvalidSpeechProvider = errors.New("invalid speech provider")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")
)

// Speech provider identifiers used in Config.SpeechProvider.
const (
	SpeechProviderNone       = ""
	SpeechProviderPolly      = "polly"
	SpeechProviderElevenLabs = "elevenlabs"
)

// DefaultGeminiEmbedderModel is the default Gemini embedder model.
// gemini-embedding-001 supports truncation to 768 dimensions, matching the
// pgvector schema in db/migrations.
const DefaultGeminiEmbedderModel = "gemini-embedding-001"

// Config stores application configuration.
type Config struct {
	// AI model configuration
	ModelName     string `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Conversation configuration
	HistoryPairs       int `mapstructure:"history_pairs" json:"history_pairs"`
	SessionIdleMinutes int `mapstructure:"session_idle_minutes" json:"session_idle_minutes"`
	DailyRequestLimit  int `mapstructure:"daily_request_limit" json:"daily_request_limit"`

	// Retrieval configuration
	RetrievalTopK int    `mapstructure:"retrieval_top_k" json:"retrieval_top_k"`
	ChunkSize     int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap  int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	KnowledgeDir  string `mapstructure:"knowledge_dir" json:"knowledge_dir"`

	// Storage configuration (see storage.go for DSN helpers)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Speech synthesis configuration
	SpeechProvider    string `mapstructure:"speech_provider" json:"speech_provider"` // "", "polly", "elevenlabs"
	AWSRegion         string `mapstructure:"aws_region" json:"aws_region"`
	PollyVoiceID      string `mapstructure:"polly_voice_id" json:"polly_voice_id"`
	PollyEngine       string `mapstructure:"polly_engine" json:"polly_engine"`
	ElevenLabsAPIKey  string `mapstructure:"elevenlabs_api_key" json:"elevenlabs_api_key"` // SENSITIVE: masked in MarshalJSON
	ElevenLabsVoiceID string `mapstructure:"elevenlabs_voice_id" json:"elevenlabs_voice_id"`

	// Server configuration
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability configuration
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`
	Environment  string `mapstructure:"environment" json:"environment"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".voxpersona")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL has the highest priority for PostgreSQL settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("embedder_model", DefaultGeminiEmbedderModel)

	// Conversation defaults
	viper.SetDefault("history_pairs", 10)
	viper.SetDefault("session_idle_minutes", 30)
	viper.SetDefault("daily_request_limit", 10)

	// Retrieval defaults
	viper.SetDefault("retrieval_top_k", 5)
	viper.SetDefault("chunk_size", 500)
	viper.SetDefault("chunk_overlap", 50)
	viper.SetDefault("knowledge_dir", "knowledge")

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "voxpersona")
	viper.SetDefault("postgres_password", "voxpersona_dev_password")
	viper.SetDefault("postgres_db_name", "voxpersona")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Speech defaults: no provider configured means text-only responses
	viper.SetDefault("speech_provider", SpeechProviderNone)
	viper.SetDefault("aws_region", "us-east-1")
	viper.SetDefault("polly_voice_id", "Matthew")
	viper.SetDefault("polly_engine", "neural")
	viper.SetDefault("elevenlabs_voice_id", "EXAVITQu4vr4xnSDxMaL")

	// Server defaults (frontend dev server)
	viper.SetDefault("cors_origins", []string{"http://localhost:5173"})
	viper.SetDefault("trust_proxy", false)
	viper.SetDefault("rate_burst", 60)

	// Observability defaults
	viper.SetDefault("otlp_endpoint", "localhost:4318")
	viper.SetDefault("service_name", "voxpersona")
	viper.SetDefault("environment", "dev")
}

// bindEnvVariables binds sensitive environment variables explicitly.
// GEMINI_API_KEY is read directly by Genkit (not via viper) and AWS
// credentials are read by the SDK's default chain; only the remaining
// secrets go through viper.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("elevenlabs_api_key", "ELEVENLABS_API_KEY")
	mustBind("speech_provider", "VOXPERSONA_SPEECH_PROVIDER")
	mustBind("cors_origins", "VOXPERSONA_CORS_ORIGINS")
	mustBind("knowledge_dir", "VOXPERSONA_KNOWLEDGE_DIR")
}
