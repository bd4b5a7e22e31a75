// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/bilalmachraa82/propdocs/internal/adapters/db"
	"github.com/bilalmachraa82/propdocs/internal/adapters/gemini"
	"github.com/bilalmachraa82/propdocs/internal/adapters/pdf"
	redis_a "github.com/bilalmachraa82/propdocs/internal/adapters/redis_adapter"
	"github.com/bilalmachraa82/propdocs/internal/adapters/storage"
	"github.com/bilalmachraa82/propdocs/internal/core/extract"
	"github.com/bilalmachraa82/propdocs/internal/core/match"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/internal/core/services"
	"github.com/bilalmachraa82/propdocs/internal/pkg/config"
	"github.com/bilalmachraa82/propdocs/internal/pkg/logger"
	"github.com/bilalmachraa82/propdocs/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.ApplySecrets(ctx, secrets); err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	migrationCfg := &db.MigrationConfig{DatabaseURL: cfg.GetDatabaseURL()}
	if err := db.RunMigrationsWithRetry(ctx, migrationCfg, slogger, 5); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slogger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	var archive storage.StorageClient
	if cfg.FileProcessing.ArchiveDocuments {
		archive, err = storage.NewS3Storage(ctx, &storage.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, slogger)
		if err != nil {
			slogger.Error("failed to initialize document archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	pipeline := buildPipeline(cfg, database, cache, slogger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		},
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	mux := asynq.NewServeMux()

	documentProcessor := workers.NewDocumentProcessor(pipeline, database, archive, slogger)
	mux.HandleFunc(workers.TypeDocumentProcess, documentProcessor.ProcessDocument)

	reservationRepo := db.NewReservationRepository(database, slogger)
	reportProcessor := workers.NewReportProcessor(reservationRepo, archive, slogger)
	mux.HandleFunc(workers.TypeGenerateReport, reportProcessor.GenerateReport)

	cleanupProcessor := workers.NewCleanupProcessor(database, workers.CleanupConfig{
		TempDir: cfg.FileProcessing.TempDir,
	}, slogger)
	mux.HandleFunc(workers.TypeCleanupOldJobs, cleanupProcessor.CleanupOldJobs)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanupProcessor.CleanupTempFiles)

	scheduler := newScheduler(cfg, slogger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// buildPipeline assembles the extraction pipeline: PDF text
// extraction, Gemini-backed structured extraction with the manual
// fallback, validation, property matching and persistence.
func buildPipeline(cfg *config.Config, database *db.Database, cache ports.CacheRepository, slogger *slog.Logger) *services.DocumentPipeline {
	textExtractor := pdf.NewExtractor(cfg.Pipeline.MinTextLength, slogger)

	llm := gemini.NewClient(gemini.Config{
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		CallTimeout:       cfg.LLM.CallTimeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, slogger)

	manualCfg := extract.DefaultManualConfig()
	manualCfg.Denylist = append(manualCfg.Denylist, cfg.Pipeline.ExtraDenylist...)
	manual := extract.NewManualExtractor(manualCfg, slogger)

	extractor := extract.NewStructuredExtractor(llm, manual, extract.ExtractorConfig{
		BasePromptLength: cfg.Pipeline.BasePromptLength,
		MinPromptLength:  cfg.Pipeline.MinPromptLength,
		MaxAttempts:      cfg.Pipeline.MaxAttempts,
		MaxOutputTokens:  cfg.Pipeline.MaxOutputTokens,
		Temperature:      cfg.Pipeline.Temperature,
	}, slogger)

	matcher := match.New(match.Config{
		AcceptThreshold:   cfg.Pipeline.AcceptThreshold,
		FlexibleThreshold: cfg.Pipeline.FlexibleThreshold,
		FlexibleWordRatio: cfg.Pipeline.FlexibleWordRatio,
	}, slogger)

	return services.NewDocumentPipeline(
		textExtractor,
		extractor,
		services.NewValidator(slogger),
		services.NewAssembler(slogger),
		matcher,
		db.NewPropertyRepository(database, slogger),
		db.NewReservationRepository(database, slogger),
		cache,
		services.PipelineConfig{CacheTTL: cfg.Pipeline.CacheTTL},
		slogger,
	)
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

// newScheduler registers the recurring housekeeping and reporting
// tasks. The report fires on the first day of each month for the
// previous month, which the zero-value payload resolves to.
func newScheduler(cfg *config.Config, slogger *slog.Logger) *asynq.Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		},
		&asynq.SchedulerOpts{Logger: newAsynqLogger(slogger)},
	)

	register := func(spec, taskType string) {
		if _, err := scheduler.Register(spec, asynq.NewTask(taskType, nil)); err != nil {
			slogger.Warn("failed to register scheduled task",
				slog.String("type", taskType),
				slog.String("error", err.Error()))
		}
	}

	register("0 3 * * *", workers.TypeCleanupOldJobs)
	register("0 4 * * *", workers.TypeCleanupTempFiles)
	register("0 6 1 * *", workers.TypeGenerateReport)

	return scheduler
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
