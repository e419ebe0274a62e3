// Package app wires the application together: configuration, database,
// Genkit, the knowledge base, and the conversation pipeline.
//
// App is the dependency container built by Setup. Commands receive an App,
// use the components they need, and call Close on shutdown.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxpersona/voxpersona/internal/chat"
	"github.com/voxpersona/voxpersona/internal/config"
	"github.com/voxpersona/voxpersona/internal/history"
	"github.com/voxpersona/voxpersona/internal/knowledge"
	"github.com/voxpersona/voxpersona/internal/log"
	"github.com/voxpersona/voxpersona/internal/speech"
	"github.com/voxpersona/voxpersona/internal/throttle"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	// Knowledge base
	Knowledge *knowledge.Store
	Indexer   *knowledge.Indexer

	// Conversation pipeline
	History      *history.Store
	Gate         *throttle.Gate
	Synthesizer  speech.Synthesizer
	Orchestrator *chat.Orchestrator

	otelCleanup func()
}

// Close releases all resources in reverse initialization order.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.DBPool != nil {
		a.DBPool.Close()
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
