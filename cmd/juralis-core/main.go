package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/juralis/juralis-core/internal/adapters/driven/ai"
	"github.com/juralis/juralis-core/internal/adapters/driven/connectors"
	"github.com/juralis/juralis-core/internal/adapters/driven/index"
	redisqueue "github.com/juralis/juralis-core/internal/adapters/driven/queue/redis"
	"github.com/juralis/juralis-core/internal/adapters/driven/statsfile"
	"github.com/juralis/juralis-core/internal/adapters/driving/http"
	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driving"
	"github.com/juralis/juralis-core/internal/core/services"
	"github.com/juralis/juralis-core/internal/enrich"
	"github.com/juralis/juralis-core/internal/normalise"
	"github.com/juralis/juralis-core/internal/runtime"
	"github.com/juralis/juralis-core/internal/worker"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("juralis-core %s starting in %s mode", version, mode)

	port := getEnvInt("PORT", 8080)
	redisURL := getEnv("REDIS_URL", "")
	vectorBackend := getEnv("VECTOR_BACKEND", index.BackendQdrant)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	logger := slog.Default()

	// ===== Runtime services and capability flags =====
	runtimeConfig := domain.NewRuntimeConfig(vectorBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	// ===== Embedding service (optional) =====
	embeddingService, err := ai.NewEmbeddingService(ai.EmbeddingSettings{
		Provider: getEnv("EMBEDDING_PROVIDER", ""),
		APIKey:   getEnv("EMBEDDING_API_KEY", ""),
		Model:    getEnv("EMBEDDING_MODEL", ""),
		BaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
	})
	if err != nil {
		log.Fatalf("Failed to build embedding service: %v", err)
	}
	if embeddingService != nil {
		if err := runtimeServices.ValidateAndSetEmbedding(ctx, embeddingService); err != nil {
			log.Printf("Warning: embedding service unavailable: %v (running degraded)", err)
		}
	} else {
		log.Println("No embedding provider configured, semantic search disabled")
	}

	// ===== LLM service (optional) =====
	llmService, err := ai.NewLLMService(ai.LLMSettings{
		Provider: getEnv("LLM_PROVIDER", ""),
		APIKey:   getEnv("LLM_API_KEY", ""),
		Model:    getEnv("LLM_MODEL", ""),
		BaseURL:  getEnv("LLM_BASE_URL", ""),
	})
	if err != nil {
		log.Fatalf("Failed to build LLM service: %v", err)
	}
	if llmService != nil {
		if err := runtimeServices.ValidateAndSetLLM(ctx, llmService); err != nil {
			log.Printf("Warning: LLM service unavailable: %v (running degraded)", err)
		}
	} else {
		log.Println("No LLM provider configured, answers will cite sources without composition")
	}

	// ===== Vector index backend =====
	// Dimension must match the embedding model; 1536 is the OpenAI default.
	dimensions := getEnvInt("EMBEDDING_DIMENSIONS", 1536)
	if embeddingService != nil && embeddingService.Dimensions() > 0 {
		dimensions = embeddingService.Dimensions()
	}
	vectorIndex, err := index.New(ctx, index.Config{
		Backend:      vectorBackend,
		Dimensions:   dimensions,
		QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
		Collection:   getEnv("QDRANT_COLLECTION", ""),
		PostgresURL:  getEnv("DATABASE_URL", ""),
	}, logger)
	if err != nil {
		log.Printf("Warning: vector index unavailable: %v (running degraded)", err)
	} else if err := runtimeServices.ValidateAndSetVectorIndex(ctx, vectorIndex); err != nil {
		log.Printf("Warning: vector index unavailable: %v (running degraded)", err)
	}

	// ===== Redis task queue (optional) =====
	var redisClient *redis.Client
	var taskQueue driven.TaskQueue
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Redis task queue connected")
	} else {
		log.Println("No REDIS_URL configured, ingestion runs inline")
	}

	// ===== Connectors and normalisation mappings =====
	registry := connectors.NewRegistry()
	registry.Register(connectors.NewLegifrance(connectors.LegifranceConfig{
		ClientID:     getEnv("LEGIFRANCE_CLIENT_ID", ""),
		ClientSecret: getEnv("LEGIFRANCE_CLIENT_SECRET", ""),
	}))
	registry.Register(connectors.NewEurLex(connectors.EurLexConfig{
		APIKey: getEnv("EURLEX_API_KEY", ""),
	}))
	registry.Register(connectors.NewConseilConstitutionnel(connectors.ConseilConstConfig{
		Offline: getEnv("CONSEIL_CONST_OFFLINE", "") != "",
	}))
	registry.Register(connectors.NewJudilibre(connectors.JudilibreConfig{
		KeyID: getEnv("JUDILIBRE_KEY_ID", ""),
		Token: getEnv("JUDILIBRE_TOKEN", ""),
	}))

	mappings := normalise.NewRegistry()
	mappings.Register(normalise.DefaultMapping("legifrance", "Légifrance", domain.DocTypeLoi))
	mappings.Register(normalise.DefaultMapping("eurlex", "EUR-Lex", domain.DocTypeRegulationEU))
	mappings.Register(normalise.DefaultMapping("conseil_constitutionnel", "Conseil constitutionnel", domain.DocTypeDecisionConst))
	mappings.Register(normalise.DefaultMapping("judilibre", "Judilibre", domain.DocTypeJurisprudence))

	// ===== Enrichment =====
	// Analyzer ports are nil here: the heuristic fallbacks carry the
	// enrichment stage until an NLP backend adapter is configured.
	enricher := enrich.New(enrich.Config{
		MaxParallel: getEnvInt("ENRICH_MAX_PARALLEL", enrich.DefaultMaxParallel),
		Logger:      logger,
	})

	// ===== Run store =====
	runStore, err := statsfile.New(getEnv("STATS_DIR", "./stats"))
	if err != nil {
		log.Fatalf("Failed to create stats store: %v", err)
	}

	// ===== Core services =====
	ingestionService := services.NewIngestionService(services.IngestionConfig{
		Registry:  registry,
		Mappings:  mappings,
		Enricher:  enricher,
		Services:  runtimeServices,
		RunStore:  runStore,
		BatchSize: getEnvInt("INGEST_BATCH_SIZE", services.DefaultBatchSize),
		Logger:    logger,
	})
	queryService := services.NewQueryService(services.QueryConfig{
		Registry: registry,
		Mappings: mappings,
		Enricher: enricher,
		Services: runtimeServices,
		Logger:   logger,
	})

	log.Printf("Runtime config: vector_backend=%s, embedding=%t, llm=%t, index=%t",
		runtimeConfig.VectorBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.LLMAvailable(),
		runtimeConfig.IndexAvailable(),
	)

	server := http.NewServer(http.Config{
		Host:         getEnv("HOST", "0.0.0.0"),
		Port:         port,
		Version:      version,
		QueryService: queryService,
		Ingestion:    ingestionService,
		Registry:     registry,
		Services:     runtimeServices,
		TaskQueue:    taskQueue,
		Logger:       logger,
	})

	switch mode {
	case "api":
		runAPI(ctx, server, port)

	case "worker":
		if taskQueue == nil {
			log.Fatal("Worker mode requires REDIS_URL")
		}
		runWorkerMode(ctx, taskQueue, ingestionService)

	case "all":
		if taskQueue != nil {
			go runWorkerMode(ctx, taskQueue, ingestionService)
		}
		runAPI(ctx, server, port)

	case "ingest":
		// One-shot ingestion of all sources, then exit
		run, err := ingestionService.Run(ctx, nil)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Ingestion completed: imported=%d errors=%d duration=%.1fs",
			run.TotalImported, run.ErrorCount, run.DurationSeconds)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, ingest, or all)", mode)
	}
}

func runAPI(ctx context.Context, server *http.Server, port int) {
	log.Printf("API server starting on :%d", port)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the worker loop and blocks until shutdown.
func runWorkerMode(ctx context.Context, taskQueue driven.TaskQueue, ingestion driving.IngestionService) {
	log.Println("Starting worker mode...")

	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Ingestion:      ingestion,
		Logger:         slog.Default(),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 2),
		DequeueTimeout: getEnvInt("WORKER_DEQUEUE_TIMEOUT", 5),
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
