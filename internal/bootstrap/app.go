package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"recruit-analysis/internal/analyses"
	"recruit-analysis/internal/batches"
	"recruit-analysis/internal/documents"
	"recruit-analysis/internal/llm"
	"recruit-analysis/internal/llm/aiservice"
	"recruit-analysis/internal/llm/gemini"
	"recruit-analysis/internal/llm/openai"
	"recruit-analysis/internal/queue"
	"recruit-analysis/internal/services/health"
	"recruit-analysis/internal/shared/config"
	"recruit-analysis/internal/shared/server"
	"recruit-analysis/internal/shared/storage/db"
	"recruit-analysis/internal/shared/storage/object"
	localstore "recruit-analysis/internal/shared/storage/object/local"
	s3store "recruit-analysis/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Queue    queue.Client
	Oracle   llm.Client
	Redis    *redis.Client
	JobStore batches.JobStore
	// MemoryJobs is set when JobStore is in-process; cmd/api runs its sweeper.
	MemoryJobs *batches.MemoryStore
	Health     *health.Service

	DocumentsRepo    documents.Repo
	AnalysesRepo     analyses.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	BatchesService   *batches.Service
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	BatchHandler     *batches.Handler

	closers []func() error
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{
		Config: cfg,
		Health: health.NewService(),
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
		app.Health.Register("database", sqlDB.PingContext)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store
	if s3, ok := store.(*s3store.Store); ok {
		app.Health.Register("object_store", s3.Ping)
	}

	if err := buildOracle(ctx, app); err != nil {
		_ = app.Close()
		return nil, err
	}

	if err := buildJobStore(ctx, app); err != nil {
		_ = app.Close()
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Queue = queueClient

	if err := buildServices(app); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		AnalysisHandler: app.AnalysisHandler,
		BatchHandler:    app.BatchHandler,
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildOracle(ctx context.Context, app *App) error {
	cfg := app.Config
	var client llm.Client
	switch cfg.LLMProvider {
	case "openai":
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			return err
		}
		client = c
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, c.Close)
		client = c
	default:
		c, err := aiservice.NewClient(cfg.AIServiceURL)
		if err != nil {
			return err
		}
		app.Health.Register("ai_service", c.Ping)
		client = c
	}
	app.Oracle = llm.WithTimeout(client, cfg.OracleTimeout)
	return nil
}

func buildJobStore(ctx context.Context, app *App) error {
	cfg := app.Config
	if cfg.JobStoreType != "redis" {
		mem := batches.NewMemoryStore(cfg.BatchCompletedTTL)
		app.JobStore = mem
		app.MemoryJobs = mem
		return nil
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return fmt.Errorf("JOB_STORE=redis requires REDIS_URL")
	}
	client, err := batches.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping: %w", err)
	}
	store := batches.NewRedisStore(client, cfg.BatchCompletedTTL)
	app.Redis = client
	app.JobStore = store
	app.closers = append(app.closers, client.Close)
	app.Health.Register("redis", store.Ping)
	return nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.EventsQueueURL, cfg.AWSRegion)
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	texts, err := analyses.NewTextCache(app.Config.ExtractCacheSize)
	if err != nil {
		return fmt.Errorf("extract cache: %w", err)
	}

	app.DocumentsService = &documents.Service{
		Store:           app.Store,
		Repo:            app.DocumentsRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}
	app.AnalysesService = &analyses.Service{
		Repo:     app.AnalysesRepo,
		DocRepo:  app.DocumentsRepo,
		Store:    app.Store,
		Oracle:   app.Oracle,
		Texts:    texts,
		Provider: app.Config.LLMProvider,
		Model:    app.Config.LLMModel,
	}
	app.BatchesService = &batches.Service{
		Store:       app.JobStore,
		Analyzer:    app.AnalysesService,
		Notifier:    app.Queue,
		Concurrency: app.Config.BatchConcurrency,
	}

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.BatchHandler = batches.NewHandler(app.BatchesService, app.DocumentsService, app.Config.PollMinInterval)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil || app.BatchHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
