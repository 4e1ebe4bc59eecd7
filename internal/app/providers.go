package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"go.uber.org/zap"
	"lazo-pipeline/internal/api/server"
	"lazo-pipeline/internal/api/v1/routes"
	"lazo-pipeline/internal/api/v1/services"
	"lazo-pipeline/internal/app/analysis"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/common"
	"lazo-pipeline/internal/app/pipeline"
	"lazo-pipeline/internal/app/repository"
	"lazo-pipeline/internal/app/repository/pg"
	"lazo-pipeline/internal/app/repository/redisstore"
	"lazo-pipeline/internal/app/repository/sqlite"
	"lazo-pipeline/internal/app/worker"
	"lazo-pipeline/internal/config"

	// Transcription backends register their creators in init
	_ "lazo-pipeline/internal/app/api/deepgram"
	_ "lazo-pipeline/internal/app/api/elevenlabs"
	_ "lazo-pipeline/internal/app/api/openai/whisper"
	_ "lazo-pipeline/internal/app/api/whisper_server"
)

// PipelineSet builds the orchestrator and everything behind it
var PipelineSet = wire.NewSet(
	provideZapLogger,
	provideProviderConfig,
	provideTranscriber,
	provideAnalysisRouter,
	provideStore,
	provideJobStore,
	provideQuotaStore,
	provideArchive,
	providePool,
	provideOrchestrator,
	wire.Bind(new(pipeline.Transcriber), new(*provider.Adapter)),
	wire.Bind(new(pipeline.SessionAnalyzer), new(*analysis.Router)),
	wire.Bind(new(pipeline.Scheduler), new(*worker.Pool)),
)

// ServerSet adds the HTTP layer on top of PipelineSet
var ServerSet = wire.NewSet(
	PipelineSet,
	provideSlogLogger,
	provideSessionService,
	provideServiceContainer,
	provideServerConfig,
	server.NewServer,
	wire.Bind(new(services.SessionOrchestrator), new(*pipeline.Orchestrator)),
	wire.Bind(new(services.ActionRunner), new(*analysis.Router)),
)

func provideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Development())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	return common.NewSlogLogger(cfg.LogLevel, os.Stdout)
}

// provideProviderConfig loads the provider configuration
func provideProviderConfig(cfg *config.Config) (*provider.ProviderConfiguration, error) {
	configPath := cfg.ProvidersConfigPath
	if configPath == "" {
		configPath = provider.GetDefaultConfigPath()
	}
	return provider.NewConfigManager(configPath).LoadConfig()
}

func provideTranscriber(pc *provider.ProviderConfiguration) (*provider.Adapter, error) {
	registry, err := provider.BuildRegistry(pc)
	if err != nil {
		return nil, err
	}
	routes, err := pc.TranscriptionRoutes()
	if err != nil {
		return nil, err
	}
	return provider.NewAdapter(registry, routes, provider.NewProviderMetrics())
}

func provideAnalysisRouter(pc *provider.ProviderConfiguration) (*analysis.Router, error) {
	analyzers, err := analysis.BuildAnalyzers(context.Background(), pc)
	if err != nil {
		return nil, err
	}
	routes, err := pc.AnalysisRoutes()
	if err != nil {
		return nil, err
	}
	return analysis.NewRouter(routes, analyzers...)
}

// provideStore opens the SQL database holding quotas, and jobs unless Redis is selected
func provideStore(cfg *config.Config) (repository.Store, func(), error) {
	var store repository.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := pg.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = db
	default:
		dsn := cfg.Database.DSN
		if dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			dsn = sqlite.FileDSN(dsn)
		}
		db, err := sqlite.NewSQLiteDB(dsn)
		if err != nil {
			return nil, nil, err
		}
		store = db
	}
	return store, func() { _ = store.Close() }, nil
}

func provideJobStore(cfg *config.Config, store repository.Store) (repository.JobDAO, func(), error) {
	if cfg.Database.JobStore != config.JobStoreRedis {
		return store, func() {}, nil
	}
	client := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	jobs := redisstore.NewJobStore(client, cfg.Redis.Retention)
	return jobs, func() { _ = jobs.Close() }, nil
}

func provideQuotaStore(store repository.Store) repository.QuotaDAO {
	return store
}

// provideArchive returns a nil Archive when no MinIO endpoint is configured
func provideArchive(cfg *config.Config) (pipeline.Archive, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, nil
	}
	archive, err := services.NewMinioAudioArchive(context.Background(), services.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func providePool(cfg *config.Config, logger *zap.Logger) (*worker.Pool, func(), error) {
	pool, err := worker.NewPool(cfg.Pool.Size, logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, func() {
		if err := pool.Release(cfg.Pool.ShutdownTimeout); err != nil {
			logger.Warn("Worker pool did not drain before shutdown", zap.Error(err))
		}
	}, nil
}

func provideOrchestrator(
	jobs repository.JobDAO,
	quotas repository.QuotaDAO,
	transcriber pipeline.Transcriber,
	analyzer pipeline.SessionAnalyzer,
	scheduler pipeline.Scheduler,
	archive pipeline.Archive,
	logger *zap.Logger,
) (*pipeline.Orchestrator, error) {
	return pipeline.NewOrchestrator(pipeline.Dependencies{
		Jobs:        jobs,
		Quotas:      quotas,
		Transcriber: transcriber,
		Analyzer:    analyzer,
		Scheduler:   scheduler,
		Archive:     archive,
		Logger:      logger,
	})
}

func provideSessionService(orchestrator services.SessionOrchestrator, actions services.ActionRunner, logger *slog.Logger) services.SessionService {
	return services.NewSessionService(orchestrator, actions, logger)
}

func provideServiceContainer(cfg *config.Config, sessions services.SessionService) *routes.ServiceContainer {
	return &routes.ServiceContainer{
		SessionService: sessions,
		MaxAudioBytes:  cfg.MaxAudioBytes(),
	}
}

func provideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Environment:  cfg.Environment,
	}
}
