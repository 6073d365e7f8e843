package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/act"
	"github.com/jaxxstorm/landlord/internal/api"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/backlog"
	"github.com/jaxxstorm/landlord/internal/backlog/postgres"
	"github.com/jaxxstorm/landlord/internal/broadcaster"
	"github.com/jaxxstorm/landlord/internal/config"
	"github.com/jaxxstorm/landlord/internal/database"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/eventbus"
	historypg "github.com/jaxxstorm/landlord/internal/history/postgres"
	"github.com/jaxxstorm/landlord/internal/interpret"
	"github.com/jaxxstorm/landlord/internal/interpret/providers"
	"github.com/jaxxstorm/landlord/internal/logger"
	"github.com/jaxxstorm/landlord/internal/projection"
	"github.com/jaxxstorm/landlord/internal/ratelimit"
)

func main() {
	v := config.NewViperInstance()
	if err := config.BindEnvironmentVariables(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind environment variables: %v\n", err)
		os.Exit(1)
	}

	configFile, err := config.FindConfigFile("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to find config file: %v\n", err)
		os.Exit(1)
	}
	if configFile != "" {
		if err := config.LoadConfigFile(v, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config file: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting landlord api server")

	ctx := context.Background()

	dbProvider, err := database.NewProvider(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer dbProvider.Close()

	if err := database.RunMigrations(cfg.Database.MigrationConnectionString(), log); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	pool, ok := dbProvider.Pool().(*pgxpool.Pool)
	if !ok {
		log.Fatal("database provider is not a pgxpool.Pool")
	}

	repo := postgres.New(pool, log)

	bus := eventbus.New(cfg.EventBus.Backlog, log)
	bcast := broadcaster.New(cfg.EventBus.BroadcasterBacklog, log)

	projections := projection.NewStore()
	if err := hydrateProjections(ctx, repo, projections); err != nil {
		log.Fatal("failed to hydrate projections from storage", zap.Error(err))
	}
	projectionWorker := projection.NewWorker(projections, bus.Subscribe(), log)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go projectionWorker.Run(workerCtx)

	actPipeline := act.New(repo, bus, bcast, projections)

	limiter := ratelimit.NewWithLimits(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPeriod)
	interpretPipeline := buildInterpretPipeline(cfg, repo, pool, limiter, log)

	keyCache := auth.NewKeyCache(cfg.Auth.JWKSURL, &http.Client{Timeout: cfg.Auth.HTTPTimeout}, cfg.Auth.JWKSRefreshInterval)
	verifier := auth.NewVerifier(keyCache)

	history := historypg.New(pool)

	server := api.New(&cfg.HTTP, dbProvider, repo, projections, actPipeline, interpretPipeline, bcast, verifier, log).WithHistory(history)

	serverCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address()))
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	case <-serverCtx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	log.Info("landlord api server stopped")
}

// buildInterpretPipeline wires the Interpret Pipeline's pluggable ports
// through name-keyed registries: a hash-based Embedder and a
// backlog-backed CandidateSearch are always registered as the "hash" and
// "backlog" defaults, and a chat-completions LLM is registered as
// "chat" and selected only when an endpoint is configured. An operator
// swaps in a real vector index or managed embedding API later by
// registering a new provider under these same registries without
// touching the pipeline itself.
func buildInterpretPipeline(cfg *config.Config, repo backlog.Repository, pool *pgxpool.Pool, limiter *ratelimit.Limiter, log *zap.Logger) *interpret.Pipeline {
	embedderRegistry := providers.NewEmbedderRegistry(log)
	searchRegistry := providers.NewSearchRegistry(log)
	llmRegistry := providers.NewLLMRegistry(log)

	hashEmbedder := providers.NewHashEmbedder(cfg.Interpret.EmbeddingDim)
	if err := embedderRegistry.Register("hash", hashEmbedder); err != nil {
		log.Fatal("failed to register hash embedder", zap.Error(err))
	}

	backlogSearch := providers.NewBacklogSearch(repo, hashEmbedder)
	if err := searchRegistry.Register("backlog", backlogSearch); err != nil {
		log.Fatal("failed to register backlog search", zap.Error(err))
	}

	var selectedLLM interpret.LLM
	if cfg.Interpret.LLMEnabled && cfg.Interpret.LLMEndpoint != "" {
		chatLLM := providers.NewChatLLM(cfg.Interpret.LLMEndpoint, cfg.Interpret.LLMAPIKey, cfg.Interpret.LLMModel, nil)
		if err := llmRegistry.Register("chat", chatLLM); err != nil {
			log.Fatal("failed to register chat LLM provider", zap.Error(err))
		}
		selectedLLM, _ = llmRegistry.Get("chat")
	} else {
		log.Info("no LLM endpoint configured, interpret falls back to the heuristic parser for every request")
	}

	embedder, err := embedderRegistry.Get("hash")
	if err != nil {
		log.Fatal("failed to resolve embedder provider", zap.Error(err))
	}
	search, err := searchRegistry.Get("backlog")
	if err != nil {
		log.Fatal("failed to resolve candidate search provider", zap.Error(err))
	}

	recorder := providers.NewPostgresRecorder(pool)

	return interpret.New(limiter, embedder, search, selectedLLM, recorder)
}

// hydrateProjections seeds the in-memory read model from the
// authoritative tables at startup, the same way a crash-restarted
// process must rebuild state the event bus cannot replay.
func hydrateProjections(ctx context.Context, repo backlog.Repository, store *projection.Store) error {
	stories, err := repo.ListStories(ctx, nil, backlog.StoryFilters{Limit: 100000})
	if err != nil {
		return fmt.Errorf("list stories: %w", err)
	}

	tasksByStory := make(map[uuid.UUID][]*domain.Task, len(stories))
	acsByStory := make(map[uuid.UUID][]domain.AcceptanceCriterion, len(stories))

	for _, story := range stories {
		tasks, err := repo.ListTasksByStory(ctx, story.OrganizationID, story.ID, backlog.TaskFilters{Limit: 100000})
		if err != nil {
			return fmt.Errorf("list tasks for story %s: %w", story.ID, err)
		}
		tasksByStory[story.ID] = tasks

		acs, err := repo.ListAcceptanceCriteria(ctx, story.ID)
		if err != nil {
			return fmt.Errorf("list acceptance criteria for story %s: %w", story.ID, err)
		}
		acValues := make([]domain.AcceptanceCriterion, 0, len(acs))
		for _, ac := range acs {
			acValues = append(acValues, *ac)
		}
		acsByStory[story.ID] = acValues
	}

	projection.Hydrate(store, stories, tasksByStory, acsByStory)
	return nil
}
