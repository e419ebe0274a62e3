package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/voxpersona/voxpersona/db"
	"github.com/voxpersona/voxpersona/internal/chat"
	"github.com/voxpersona/voxpersona/internal/config"
	"github.com/voxpersona/voxpersona/internal/history"
	"github.com/voxpersona/voxpersona/internal/knowledge"
	"github.com/voxpersona/voxpersona/internal/log"
	"github.com/voxpersona/voxpersona/internal/rag"
	"github.com/voxpersona/voxpersona/internal/speech"
	"github.com/voxpersona/voxpersona/internal/throttle"
)

// Setup builds the full application. Returns an App whose Close releases
// everything initialized so far; on a setup error, Close is called internally.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing must be wired before genkit.Init so the TracerProvider exists
	// when flows start recording spans.
	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai provider")
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	store, err := knowledge.New(knowledge.NewQueries(pool), embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge store: %w", err)
	}
	a.Knowledge = store
	a.Indexer = knowledge.NewIndexer(store, cfg.KnowledgeDir, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	generator := rag.NewGenerator(g, cfg.ModelName, logger)
	condenser := rag.NewCondenser(generator, logger)
	retriever := rag.NewRetriever(store, cfg.RetrievalTopK, logger)

	a.History = history.New(history.Config{
		MaxPairs:       cfg.HistoryPairs,
		IdleTimeout:    time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		AssistantLabel: rag.PersonaName,
		Logger:         logger,
	})
	a.Gate = throttle.New(throttle.Config{Limit: cfg.DailyRequestLimit})

	synth, err := provideSynthesizer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Synthesizer = synth

	orch, err := chat.New(a.Gate, a.History, condenser, retriever, generator, synth, logger)
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	a.Orchestrator = orch

	return a, nil
}

// provideOtelShutdown exports traces over OTLP HTTP to the collector named in
// the configuration. Tracing is optional: with no endpoint configured, or when
// the exporter cannot be created, the application runs without it.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if cfg.OTLPEndpoint == "" {
		return func() {}
	}

	// OTEL env vars feed Genkit's TracerProvider resource attributes.
	// SAFETY: os.Setenv is not concurrent-safe, but Setup runs exactly once
	// at startup before any goroutines are spawned.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(), // local collector, no TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", cfg.OTLPEndpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates a tuned PostgreSQL pool.
func provideDBPool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideSynthesizer selects the speech backend from the configuration.
// An empty provider disables synthesis: chat turns then carry text only.
func provideSynthesizer(ctx context.Context, cfg *config.Config, logger log.Logger) (speech.Synthesizer, error) {
	switch cfg.SpeechProvider {
	case config.SpeechProviderNone:
		logger.Info("speech synthesis disabled")
		return speech.Noop{}, nil

	case config.SpeechProviderPolly:
		synth, err := speech.NewPolly(ctx, speech.PollyConfig{
			Region:  cfg.AWSRegion,
			VoiceID: cfg.PollyVoiceID,
			Engine:  cfg.PollyEngine,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating polly synthesizer: %w", err)
		}
		return synth, nil

	case config.SpeechProviderElevenLabs:
		return speech.NewElevenLabs(speech.ElevenLabsConfig{
			APIKey:  cfg.ElevenLabsAPIKey,
			VoiceID: cfg.ElevenLabsVoiceID,
		}, logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSpeechProvider, cfg.SpeechProvider)
	}
}
