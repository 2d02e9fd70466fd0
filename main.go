package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/config"
	"github.com/siteforge-io/design-engine/pkg/database"
	"github.com/siteforge-io/design-engine/pkg/handlers"
	"github.com/siteforge-io/design-engine/pkg/llm"
	"github.com/siteforge-io/design-engine/pkg/logging"
	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/repositories"
	"github.com/siteforge-io/design-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("provider_catalog", cfg.Providers.CatalogPath))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate).
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, trend caching disabled")
	}

	providers, err := config.LoadProviders(cfg.Providers.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load provider catalog", zap.Error(err))
	}
	registry := services.NewProviderRegistry(logger, providers...)

	invoker, embedder := buildInvokers(cfg, logger)

	// Repositories
	componentRepo := repositories.NewComponentRepository(db)
	embeddingRepo := repositories.NewEmbeddingRepository(db, logger)
	candidateRepo := repositories.NewCandidateRepository(db)
	siteRepo := repositories.NewSiteRepository(db)
	insightRepo := repositories.NewInsightRepository(db)
	patternRepo := repositories.NewPatternRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// Services
	embeddingService := services.NewEmbeddingService(componentRepo, embeddingRepo, embedder, logger)
	catalogService := services.NewCatalogService(componentRepo, embeddingService, logger)
	trendService := services.NewTrendService(componentRepo, redisClient,
		time.Duration(cfg.Trends.WindowDays)*24*time.Hour, cfg.Trends.CacheTTL, logger)
	executor := services.NewTaskExecutor(registry, invoker, taskRepo, componentRepo, trendService,
		cfg.Executor.MaxConcurrentCalls, cfg.Executor.DefaultTimeout, logger)
	learningService := services.NewLearningService(catalogService, componentRepo, candidateRepo,
		siteRepo, insightRepo, patternRepo, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewComponentHandler(catalogService, embeddingService, logger).RegisterRoutes(mux)
	handlers.NewTrendHandler(trendService, logger).RegisterRoutes(mux)
	handlers.NewLearningHandler(learningService, logger).RegisterRoutes(mux)
	handlers.NewTaskHandler(executor, registry, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting design-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// buildInvokers wires the vendor mux and embedder from configured credentials.
// Vendors without credentials fall back to the deterministic local
// implementations so the service stays functional offline.
func buildInvokers(cfg *config.Config, logger *zap.Logger) (llm.ProviderInvoker, llm.Embedder) {
	mux := llm.NewVendorMux()
	deterministic := llm.NewDeterministicInvoker()
	mux.Register(models.VendorMock, deterministic)

	openAICfg := &llm.OpenAIConfig{
		BaseURL:        cfg.Providers.OpenAIBaseURL,
		APIKey:         cfg.Providers.OpenAIAPIKey,
		EmbeddingModel: cfg.Providers.EmbeddingModel,
	}

	if cfg.Providers.OpenAIAPIKey != "" {
		openAI, err := llm.NewOpenAIInvoker(openAICfg, logger)
		if err != nil {
			logger.Fatal("Failed to create OpenAI invoker", zap.Error(err))
		}
		mux.Register(models.VendorOpenAI, openAI)
	} else {
		logger.Info("OPENAI_API_KEY not set, openai providers run deterministically")
		mux.Register(models.VendorOpenAI, deterministic)
	}

	if cfg.Providers.AnthropicAPIKey != "" {
		mux.Register(models.VendorAnthropic, llm.NewAnthropicInvoker(cfg.Providers.AnthropicAPIKey, logger))
	} else {
		logger.Info("ANTHROPIC_API_KEY not set, anthropic providers run deterministically")
		mux.Register(models.VendorAnthropic, deterministic)
	}

	var embedder llm.Embedder = llm.NewDeterministicEmbedder()
	if cfg.Providers.OpenAIAPIKey != "" && cfg.Providers.EmbeddingModel != "" {
		e, err := llm.NewOpenAIEmbedder(openAICfg)
		if err != nil {
			logger.Fatal("Failed to create embedder", zap.Error(err))
		}
		embedder = e
	}

	return mux, embedder
}
