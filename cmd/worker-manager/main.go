// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"listings-workers/internal/common/camunda"
	"listings-workers/internal/common/config"
	"listings-workers/internal/common/database"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/common/observability"
	"listings-workers/internal/listings"
	"listings-workers/pkg/registry"

	// Analytics Workers (1)
	rse "listings-workers/internal/workers/analytics/record-search-event"

	// Data Access Workers (1)
	qli "listings-workers/internal/workers/data-access/query-listings-index"

	// Listings Workers (5)
	blr "listings-workers/internal/workers/listings/build-listings-request"
	csq "listings-workers/internal/workers/listings/classify-search-query"
	fl "listings-workers/internal/workers/listings/fetch-listings"
	flt "listings-workers/internal/workers/listings/filter-listings"
	plf "listings-workers/internal/workers/listings/parse-listing-filters"
)

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
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry unavailable, starting every configured worker", zap.Error(err))
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	obs := observability.New(cfg.Observability.ServiceName, zapLog)
	tracing, err := observability.NewTracing(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	} else {
		obs.WithTracing(tracing)
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry (optional) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled() {
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

		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureIndex(ctx); err != nil {
			zapLog.Warn("listings index check failed", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", esClient.Index))
	}

	// --- Init Redis (optional, cache only) ---
	var cache *database.RedisClient
	if cfg.Database.Redis.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			cache, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return cache.Ping(ctx)
		}, 5, 1*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, listings cache disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Listings search pipeline ---
	listingsClient := listings.NewClient(listings.ClientConfig{
		BaseURL:  cfg.ListingsAPI.TrimmedBaseURL(),
		Timeout:  config.GetDuration(cfg.ListingsAPI.Timeout),
		CacheTTL: time.Duration(cfg.ListingsAPI.CacheTTL) * time.Second,
	}, nil, cache, log)
	searchService := listings.NewService(listingsClient, cfg.Search.ListingsPath, log).WithRecorder(obs)

	// --- Register Workers ---
	workers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{csq.TaskType, csq.NewHandler(&csq.Config{Timeout: workerTimeout(cfg, csq.TaskType)}, log)},
		{plf.TaskType, plf.NewHandler(&plf.Config{Timeout: workerTimeout(cfg, plf.TaskType), MaxRating: 5}, log)},
		{blr.TaskType, blr.NewHandler(&blr.Config{Timeout: workerTimeout(cfg, blr.TaskType), ListingsPath: cfg.Search.ListingsPath}, log)},
		{fl.TaskType, fl.NewHandler(&fl.Config{Timeout: workerTimeout(cfg, fl.TaskType)}, searchService, log)},
		{flt.TaskType, flt.NewHandler(&flt.Config{Timeout: workerTimeout(cfg, flt.TaskType)}, log)},
	}
	if esClient != nil {
		workers = append(workers, struct {
			taskType string
			handler  camunda.JobHandler
		}{qli.TaskType, qli.NewHandler(&qli.Config{Timeout: workerTimeout(cfg, qli.TaskType), Index: esClient.Index}, esClient.Client, log)})
	} else {
		zapLog.Info("elasticsearch not configured, skipping worker", zap.String("taskType", qli.TaskType))
	}
	if pg != nil {
		workers = append(workers, struct {
			taskType string
			handler  camunda.JobHandler
		}{rse.TaskType, rse.NewHandler(&rse.Config{Timeout: workerTimeout(cfg, rse.TaskType)}, pg.DB, log)})
	} else {
		zapLog.Info("postgres not configured, skipping worker", zap.String("taskType", rse.TaskType))
	}

	var jobWorkers []worker.JobWorker
	for _, w := range workers {
		if !config.IsWorkerEnabled(cfg, w.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", w.taskType))
			continue
		}
		if reg != nil {
			if _, ok := reg.Find(w.taskType); !ok {
				zapLog.Warn("worker not in activity registry", zap.String("taskType", w.taskType))
			}
		}
		jobWorkers = append(jobWorkers,
			camunda.StartWorker(zeebe.GetClient(), w.taskType, config.GetWorkerConfig(cfg, w.taskType), w.handler, obs, zapLog))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(jobWorkers)))

	// --- Health & Metrics Server ---
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"time": time.Now().Format(time.RFC3339)}
		code := http.StatusOK

		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status["zeebe"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if pg != nil {
			if err := pg.Ping(r.Context()); err != nil {
				status["postgres"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				// cache is optional; report it without failing readiness
				status["redis"] = err.Error()
			}
		}

		status["status"] = "ready"
		if code != http.StatusOK {
			status["status"] = "not ready"
		}
		writeStatus(w, code, status)
	})
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	for _, jw := range jobWorkers {
		jw.Close()
	}
	for _, jw := range jobWorkers {
		jw.AwaitClose()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	if d := config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout); d > 0 {
		return d
	}
	return 30 * time.Second
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
