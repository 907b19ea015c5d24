// Command server wires the config, logger, model client, engine,
// manager and HTTP transport together and serves spec §6's API,
// grounded on the teacher's cmd/server/main.go wiring shape.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/flowforge/dagflow/internal/callback"
	"github.com/flowforge/dagflow/internal/config"
	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/engine"
	"github.com/flowforge/dagflow/internal/httpapi"
	"github.com/flowforge/dagflow/internal/llmclient"
	"github.com/flowforge/dagflow/internal/logging"
	"github.com/flowforge/dagflow/internal/manager"
	"github.com/flowforge/dagflow/internal/monitoring"
	"github.com/flowforge/dagflow/internal/nodeexec"
	"github.com/flowforge/dagflow/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.Debug)

	client := newModelClient(cfg)
	registry := nodeexec.DefaultRegistry(client)
	eng := engine.NewEngine(registry, engine.Config{OnNodeComplete: newNodeCompletionHook(cfg, logger)})
	hub := monitoring.NewHub(cfg.WSMaxSubscribers)
	mgr := manager.New(eng, hub)

	if store := newDefinitionStore(cfg, logger); store != nil {
		mgr.SetDefinitionStore(store)
	}

	srv := httpapi.NewServer(mgr, logger)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{Addr: addr, Handler: srv}

	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newNodeCompletionHook wires the optional BFF node-completion callback
// (BFF_BASE_URL / BFF_CALLBACK_ENABLED) into the engine. Returns nil
// when disabled, which the engine treats as "no hook".
func newNodeCompletionHook(cfg config.Config, logger zerolog.Logger) func(*domain.Context, domain.Node, domain.NodeResult) {
	if !cfg.BFFCallbackEnabled {
		return nil
	}
	notifier := callback.NewHTTPNotifier(cfg.BFFBaseURL, 10*time.Second)
	if notifier == nil {
		return nil
	}
	return func(runCtx *domain.Context, node domain.Node, result domain.NodeResult) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		completion := callback.NodeCompletion{
			ExecutionID:   runCtx.ExecutionID,
			WorkflowID:    runCtx.WorkflowID,
			NodeID:        node.ID,
			NodeType:      string(node.Type),
			Output:        result.Output,
			ExecutionTime: result.ExecutionTime,
			CompletedAt:   time.Now().UTC(),
		}
		if err := notifier.Notify(ctx, completion); err != nil {
			logger.Warn().Err(err).Str("node_id", node.ID).Msg("bff callback failed")
		}
	}
}

// newDefinitionStore wires the optional Postgres-backed workflow
// definition store (BUN_DSN, SPEC_FULL §2 row 11). Returns nil when
// unset, which leaves the Manager's persistence disabled.
func newDefinitionStore(cfg config.Config, logger zerolog.Logger) manager.DefinitionStore {
	if cfg.BunDSN == "" {
		return nil
	}
	store := storage.NewBunStore(cfg.BunDSN)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.InitSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("definition store schema init failed, continuing without persistence")
		return nil
	}
	return store
}

// newModelClient prefers the OpenAI-compatible adapter when
// OPENAI_API_KEY is configured, falling back to the Ollama HTTP client
// (spec §6's OLLAMA_* env vars).
func newModelClient(cfg config.Config) llmclient.Client {
	if cfg.OpenAIAPIKey != "" {
		return llmclient.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	}
	return llmclient.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaTimeout, cfg.OllamaMaxConnections)
}
