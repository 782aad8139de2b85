package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/cache"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/dataset"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/http/api"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/http/site"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/http/swagger"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/mq/kafka"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/registry"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/repository"
	app "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/app"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/config"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Log file rotation limits.
const (
	logMaxSizeMB  = 50
	logMaxBackups = 5
	logMaxAgeDays = 14
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			_, _ = os.Stderr.WriteString("failed to sync logs: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if cfg.LogFile != "" {
		if err := logger.Init(logger.WithFile(cfg.LogFile, logMaxSizeMB, logMaxBackups, logMaxAgeDays)); err != nil {
			_, _ = os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			return
		}
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newMux registers the API, the docs and the demo page.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// buildService wires the configured adapters into a prediction service.
// Optional backends (Postgres, Redis, Kafka, price dataset) are only
// connected when configured.
func buildService(ctx context.Context, cfg *config.Config, l logger.Logger) (*app.Service, error) {
	reg, err := registry.New(
		registry.WithRoot(cfg.ModelsRoot),
		registry.WithCacheSize(cfg.ModelCacheSize),
		registry.WithLogger(l.Named("registry")),
	)
	if err != nil {
		return nil, fmt.Errorf("model registry: %w", err)
	}
	warmModels(ctx, reg, cfg, l)

	opts := []app.Option{
		app.WithLogger(l),
		app.WithModels(reg),
		app.WithSatisfactionModel(cfg.SatisfactionModelURI),
		app.WithPriceModel(cfg.PriceModelURI),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithMaxHistoryLimit(cfg.MaxHistoryLimit),
		app.WithHistogramBins(cfg.PriceHistogramBins),
		app.WithCurrency(cfg.Currency),
	}

	if cfg.PostgresDSN != "" {
		store, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("prediction history: %w", err)
		}
		l.Info(ctx, "using postgres prediction history")
		opts = append(opts, app.WithHistory(store))
	} else {
		opts = append(opts, app.WithHistory(repository.NewMemoryStore(ctx, repository.WithCapacity(cfg.HistorySize))))
	}

	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cache.WithTTL(cfg.PredictionCacheTTL()))
		if err := c.Ping(ctx); err != nil {
			l.Warn(ctx, "prediction cache unreachable; predictions will bypass it until it recovers",
				logger.String("addr", cfg.RedisAddr), logger.Error(err))
		}
		opts = append(opts, app.WithPredictionCache(c))
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub, err := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("prediction publisher: %w", err)
		}
		l.Info(ctx, "publishing predictions", logger.String("topic", pub.Topic()), logger.Int("brokers", len(brokers)))
		opts = append(opts, app.WithPublisher(pub))
	}

	if cfg.PriceDatasetPath != "" {
		ds, err := dataset.Load(cfg.PriceDatasetPath)
		if err != nil {
			l.Warn(ctx, "price dataset not loaded; distribution chart disabled",
				logger.String("path", cfg.PriceDatasetPath), logger.Error(err))
		} else {
			l.Info(ctx, "price dataset loaded", logger.String("path", ds.Source()), logger.Int("rows", ds.Rows()))
			opts = append(opts, app.WithPriceData(ds))
		}
	}

	return app.New(opts...), nil
}

// warmModels loads both models once so a broken artifact shows up at start
// rather than on the first request. Failures are not fatal.
func warmModels(ctx context.Context, reg *registry.Registry, cfg *config.Config, l logger.Logger) {
	if _, err := reg.Classifier(ctx, cfg.SatisfactionModelURI); err != nil {
		l.Warn(ctx, "satisfaction model unavailable", logger.String("uri", cfg.SatisfactionModelURI), logger.Error(err))
	}
	if _, err := reg.Regressor(ctx, cfg.PriceModelURI); err != nil {
		l.Warn(ctx, "price model unavailable", logger.String("uri", cfg.PriceModelURI), logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if historySize, ok := stats["historySize"].(int); ok {
		metrics.UpdateHistorySize(historySize)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
