package main

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"maison-core/internal/adapter/api"
	"maison-core/internal/adapter/client"
	"maison-core/internal/adapter/reference"
	"maison-core/internal/adapter/store"
	"maison-core/internal/config"
	"maison-core/internal/domain/entity"
	"maison-core/internal/domain/repository"
	applog "maison-core/internal/log"
	"maison-core/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		stdlog.Println("Warning: .env.dev file not found, using system environment variables")
	}
	cfg := config.Load()

	logger, err := applog.New(cfg.Debug)
	if err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	genaiClient, err := client.NewGenAIClient(ctx, cfg.GoogleAPIKey, cfg.GoogleProject, cfg.GoogleLocation)
	if err != nil {
		logger.Fatal("failed to init genai client", zap.Error(err))
	}
	chatModel := client.NewGeminiClientFromClient(genaiClient, cfg.ChatModel)
	embedder := client.NewEmbedderFromClient(genaiClient, cfg.EmbeddingModel)
	extractor := client.NewGeminiExtractor(genaiClient, cfg.ExtractionModel)

	// Redis backs sessions (by default) and the image cache.
	var rdb *redis.Client
	if cfg.SessionBackend == "redis" || cfg.ImageCacheTTL > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
	}

	index, err := newVectorIndex(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init vector index", zap.Error(err))
	}

	sessions, err := newSessionStore(cfg, rdb)
	if err != nil {
		logger.Fatal("failed to init session store", zap.Error(err))
	}

	var images repository.ImageSearcher = client.NewSerperImageSearch(cfg.SerperAPIKey, cfg.SerperURL, cfg.ImageTimeout)
	if rdb != nil && cfg.ImageCacheTTL > 0 {
		images = usecase.NewCachedImageSearcher(images, store.NewRedisImageCache(rdb), cfg.ImageCacheTTL, logger)
	}

	menu, err := reference.Load(cfg.MenuPath)
	if err != nil {
		logger.Fatal("failed to load menu", zap.String("path", cfg.MenuPath), zap.Error(err))
	}
	if menu == "" {
		logger.Warn("no menu loaded, set MENU_PATH to ground answers in the menu")
	}

	generator := usecase.NewGuardedModel(chatModel, cfg.ModelTimeout)
	retriever := usecase.NewContextRetriever(embedder, index, cfg.RetrievalTopK, cfg.EmbedTimeout, cfg.SearchTimeout, logger)
	composer := usecase.NewPromptComposer(usecase.DefaultPolicy, menu, cfg.HistoryMaxTurns, cfg.HistoryMaxChars)
	enricher := usecase.NewEnricher(extractor, images, usecase.EnricherConfig{
		ImagesPerDish:  cfg.ImagesPerDish,
		Concurrency:    cfg.ImageConcurrency,
		ExtractTimeout: cfg.ModelTimeout,
		ImageTimeout:   cfg.ImageTimeout,
	}, logger)

	orchestrator := usecase.NewOrchestrator(retriever, composer, generator, enricher, sessions, usecase.OrchestratorConfig{
		TopK:         cfg.RetrievalTopK,
		StoreTimeout: cfg.StoreTimeout,
	}, logger)

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
			logger.Warn("[WARMER] embedder warm-up failed", zap.Error(err))
		}
		_, err := generator.Complete(warmCtx, entity.ModelRequest{
			Messages: []entity.Message{{Role: entity.RoleUser, Content: "."}},
		})
		if err != nil {
			logger.Warn("[WARMER] gemini warm-up failed", zap.Error(err))
		}
		logger.Info("[WARMER] pre-warm complete")
	}()

	info := api.AppInfo{
		Name:    "La Maison Chatbot API",
		Version: cfg.AppVersion,
		Env:     cfg.Env,
	}
	app := api.NewApp(info)
	api.SetupRouter(app, api.NewChatHandler(orchestrator), info)

	logger.Info("La Maison chat API running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newVectorIndex(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.VectorIndex, error) {
	switch cfg.VectorBackend {
	case "chromem":
		return store.OpenChromemIndex(cfg.ChromemPath, cfg.ChromemCollection)
	case "qdrant":
		qClient, err := qdrant.NewClient(&qdrant.Config{
			Host:   cfg.QdrantHost,
			Port:   cfg.QdrantPort,
			APIKey: cfg.QdrantAPIKey,
			UseTLS: cfg.QdrantUseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		idx := store.NewQdrantIndex(qClient, cfg.QdrantCollection, logger)
		checkCtx, cancel := context.WithTimeout(ctx, cfg.SearchTimeout)
		defer cancel()
		if err := idx.EnsureCollection(checkCtx); err != nil {
			logger.Warn("[QDRANT] collection check failed, retrieval will degrade", zap.Error(err))
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}
}

func newSessionStore(cfg *config.Config, rdb *redis.Client) (repository.SessionStore, error) {
	switch cfg.SessionBackend {
	case "redis":
		return store.NewRedisSessionStore(rdb, cfg.SessionTTL), nil
	case "sqlite":
		return store.NewSQLiteSessionStore(cfg.SQLitePath)
	case "memory":
		return store.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
