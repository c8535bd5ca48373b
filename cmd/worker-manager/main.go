// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"psychometric-workers/internal/common/aws"
	"psychometric-workers/internal/common/camunda"
	"psychometric-workers/internal/common/config"
	"psychometric-workers/internal/common/database"
	genai "psychometric-workers/internal/common/http"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/common/observability"
	"psychometric-workers/internal/psychometric"
	"psychometric-workers/internal/psychometric/llm"
	"psychometric-workers/internal/store"
	"psychometric-workers/pkg/registry"

	er "psychometric-workers/internal/workers/psychometric/evaluate-responses"
	ga "psychometric-workers/internal/workers/psychometric/generate-assessment"
	gp "psychometric-workers/internal/workers/psychometric/get-profile"
	qe "psychometric-workers/internal/workers/psychometric/query-evaluations"
	re "psychometric-workers/internal/workers/psychometric/record-engagement"
	sp "psychometric-workers/internal/workers/psychometric/synthesize-profile"
	vc "psychometric-workers/internal/workers/psychometric/validation-context"
)

const roleCacheTTL = 10 * time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting psychometric worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.Observability)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL schema up to date")
	}

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	profileTTL := time.Duration(cfg.Psychometric.ProfileCacheTTL) * time.Second
	cached, err := store.NewCachedStore(
		store.NewPostgresStore(pg, log),
		rdb.Client,
		cfg.Psychometric.AssessmentCacheSize,
		profileTTL,
		log,
	)
	if err != nil {
		zapLog.Fatal("store setup failed", zap.Error(err))
	}
	roles := store.NewCachedRoles(store.NewUserRoles(pg), rdb.Client, roleCacheTTL, log)

	var opts []psychometric.ServiceOption

	// --- Elasticsearch (optional) ---
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		indexer := store.NewEvaluationIndexer(esClient, cfg.Database.Elasticsearch.EvaluationsIndex)
		if err := indexer.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("evaluation index setup failed", zap.Error(err))
		}
		opts = append(opts, psychometric.WithIndexer(indexer))
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", indexer.Index()))
	}

	// --- SNS (optional) ---
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		opts = append(opts, psychometric.WithPublisher(
			aws.NewProfileEventPublisher(snsClient, cfg.Integrations.AWS.SNS.TopicARN, log),
		))
		zapLog.Info("Profile events enabled", zap.String("topic", cfg.Integrations.AWS.SNS.TopicARN))
	}

	gen := genai.NewClient(cfg.APIs.GenAI, log)
	svc := psychometric.NewService(
		psychometric.Config{
			DefaultQuestionCount: cfg.Psychometric.DefaultQuestionCount,
			MinQuestions:         cfg.Psychometric.MinQuestions,
			MaxQuestions:         cfg.Psychometric.MaxQuestions,
			EvaluationListLimit:  cfg.Psychometric.EvaluationListLimit,
		},
		llm.NewGenerator(gen, log),
		llm.NewAnalyzer(gen, log),
		cached,
		roles,
		log,
		opts...,
	)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{ga.TaskType, ga.NewHandler(ga.LoadConfig(config.GetWorkerConfig(cfg, ga.TaskType)), svc, log)},
		{er.TaskType, er.NewHandler(er.LoadConfig(config.GetWorkerConfig(cfg, er.TaskType)), svc, log)},
		{sp.TaskType, sp.NewHandler(sp.LoadConfig(config.GetWorkerConfig(cfg, sp.TaskType)), svc, log)},
		{vc.TaskType, vc.NewHandler(vc.LoadConfig(config.GetWorkerConfig(cfg, vc.TaskType)), svc, log)},
		{re.TaskType, re.NewHandler(re.LoadConfig(config.GetWorkerConfig(cfg, re.TaskType)), svc, log)},
		{qe.TaskType, qe.NewHandler(qe.LoadConfig(config.GetWorkerConfig(cfg, qe.TaskType)), svc, log)},
		{gp.TaskType, gp.NewHandler(gp.LoadConfig(config.GetWorkerConfig(cfg, gp.TaskType)), svc, log)},
	}

	var workers []*camunda.CamundaWorker
	for _, h := range handlers {
		wc := config.GetWorkerConfig(cfg, h.taskType)
		if !wc.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", h.taskType))
			continue
		}
		w := camunda.NewWorker(zeebe.GetClient(), h.taskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, h.handler, obs, log)
		w.Start()
		workers = append(workers, w)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	activities := registry.Psychometric(cfg.App.Version)
	srv := newHealthServer(cfg.Observability.HealthPort, healthDeps{
		ready: func(ctx context.Context) error {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		},
		activities: activities.Enabled(func(taskType string) bool {
			return config.IsWorkerEnabled(cfg, taskType)
		}),
		version: cfg.App.Version,
	})
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
