// Package service provides the prediction orchestrator behind the HTTP API:
// it validates form input, encodes it, runs the configured models and
// records every prediction asynchronously.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/cache"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/dataset"
	eventqueue "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/mq/queue"
	workerpool "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/mq/worker"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/adapters/repository"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/scoring"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/money"
)

// Defaults used when no option overrides them.
const (
	defaultQueueSize      = 10_000
	defaultHistoryLimit   = 20
	defaultMaxHistory     = 100
	defaultHistogramBins  = 30
	maxHistogramBins      = 200
	defaultCurrency       = "INR"
	defaultStopTimeout    = 10 * time.Second
	defaultCacheOpTimeout = 200 * time.Millisecond
)

// ModelSource returns the models predictions run against.
type ModelSource interface {
	Classifier(ctx context.Context, uri string) (scoring.Classifier, error)
	Regressor(ctx context.Context, uri string) (scoring.Regressor, error)
}

// PredictionCache stores raw model outputs by encoded input.
type PredictionCache interface {
	Get(ctx context.Context, key string) (cache.Entry, bool, error)
	Set(ctx context.Context, key string, e cache.Entry) error
}

// PriceData serves the historical price distribution.
type PriceData interface {
	Histogram(bins int) (dataset.Histogram, error)
}

// Service implements the API dependencies for the prediction forms.
type Service struct {
	mu sync.RWMutex

	// Core components
	models     ModelSource
	history    repository.Store
	cache      PredictionCache
	publisher  workerpool.Sink
	prices     PriceData
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	formatter  *money.Formatter

	// Configuration
	satisfactionURI string
	priceURI        string
	workerCount     int
	queueSize       int
	maxHistory      int
	histogramBins   int
	currency        string

	newID func() string
	now   func() time.Time

	// State
	started     bool
	ownsHistory bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModels sets where models are loaded from.
func WithModels(src ModelSource) Option {
	return func(s *Service) { s.models = src }
}

// WithSatisfactionModel sets the classifier URI.
func WithSatisfactionModel(uri string) Option {
	return func(s *Service) { s.satisfactionURI = uri }
}

// WithPriceModel sets the regressor URI.
func WithPriceModel(uri string) Option {
	return func(s *Service) { s.priceURI = uri }
}

// WithHistory sets the prediction history store. Without it Start creates
// an in-memory store.
func WithHistory(store repository.Store) Option {
	return func(s *Service) { s.history = store }
}

// WithPredictionCache enables caching of model outputs.
func WithPredictionCache(c PredictionCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher adds a second sink that every recorded prediction is
// written to after history.
func WithPublisher(sink workerpool.Sink) Option {
	return func(s *Service) { s.publisher = sink }
}

// WithPriceData sets the dataset behind the price distribution chart.
func WithPriceData(d PriceData) Option {
	return func(s *Service) { s.prices = d }
}

// WithWorkerCount sets the number of recording workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recording queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxHistoryLimit caps how many predictions History returns.
func WithMaxHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxHistory = limit
		}
	}
}

// WithHistogramBins sets the default number of price chart bins.
func WithHistogramBins(bins int) Option {
	return func(s *Service) {
		if bins > 0 && bins <= maxHistogramBins {
			s.histogramBins = bins
		}
	}
}

// WithCurrency sets the ISO 4217 code predicted prices are shown in.
func WithCurrency(code string) Option {
	return func(s *Service) {
		if code != "" {
			s.currency = code
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the random prediction id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces the wall clock used for prediction timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   0, // one per CPU
		queueSize:     defaultQueueSize,
		maxHistory:    defaultMaxHistory,
		histogramBins: defaultHistogramBins,
		currency:      defaultCurrency,
		newID:         uuid.NewString,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the recording pipeline and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.models == nil {
		return fmt.Errorf("%w: no model source", ErrNotConfigured)
	}

	formatter, err := money.NewFormatter(s.currency)
	if err != nil {
		return fmt.Errorf("currency %q: %w", s.currency, err)
	}
	s.formatter = formatter

	if s.history == nil {
		s.history = repository.NewMemoryStore(ctx)
		s.ownsHistory = true
		s.logger.Info(ctx, "using in-memory prediction history")
	}

	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	sinks := []workerpool.Sink{workerpool.SinkFunc(s.saveHistory)}
	if s.publisher != nil {
		sinks = append(sinks, s.publisher)
	}
	// Workers outlive the request that started them.
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, sinks...)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.workerPool.Stats().Workers),
		logger.Int("queueSize", s.queueSize),
		logger.String("satisfactionModel", s.satisfactionURI),
		logger.String("priceModel", s.priceURI),
		logger.String("currency", s.formatter.Code()),
	)
	return nil
}

// Stop drains the recording queue and closes the sinks.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping prediction service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "recording queue not drained", logger.Error(err))
	}
	closeQuietly(ctx, s.logger, "history", s.history)
	if s.ownsHistory {
		s.history, s.ownsHistory = nil, false
	}
	if c, ok := s.publisher.(io.Closer); ok {
		closeQuietly(ctx, s.logger, "publisher", c)
	}
	if c, ok := s.cache.(io.Closer); ok {
		closeQuietly(ctx, s.logger, "prediction cache", c)
	}

	s.started = false
	s.logger.Info(ctx, "prediction service stopped")
}

func closeQuietly(ctx context.Context, l logger.Logger, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		l.Warn(ctx, "close failed", logger.String("component", name), logger.Error(err))
	}
}

// PredictSatisfaction runs the satisfaction classifier on one form.
func (s *Service) PredictSatisfaction(ctx context.Context, in features.SatisfactionInput) (model.SatisfactionPrediction, error) { //nolint:gocritic // hugeParam: form values travel by value
	const task = types.TaskSatisfaction
	start := time.Now()

	if err := s.ready(); err != nil {
		return model.SatisfactionPrediction{}, err
	}
	if err := in.Validate(); err != nil {
		return model.SatisfactionPrediction{}, s.encodingError(task, err)
	}
	feats, err := features.EncodeSatisfaction(in)
	if err != nil {
		return model.SatisfactionPrediction{}, s.encodingError(task, err)
	}

	clf, err := s.models.Classifier(ctx, s.satisfactionURI)
	if err != nil {
		return model.SatisfactionPrediction{}, fmt.Errorf("satisfaction model: %w", err)
	}

	x := feats.Vector()
	key := cache.Key(task, s.satisfactionURI, x)
	entry, cached := s.cachedOutput(ctx, task, key)
	if !cached {
		proba, err := clf.PredictProba(ctx, x)
		if err != nil {
			return model.SatisfactionPrediction{}, fmt.Errorf("satisfaction probabilities: %w", err)
		}
		class, err := clf.Predict(ctx, x)
		if err != nil {
			return model.SatisfactionPrediction{}, fmt.Errorf("satisfaction class: %w", err)
		}
		entry = cache.Entry{Class: class, Proba: proba}
		s.storeOutput(ctx, key, entry)
	}

	p := model.SatisfactionPrediction{
		ID:         s.newID(),
		Label:      types.SatisfactionLabel(entry.Class),
		Class:      entry.Class,
		Confidence: model.ConfidencePercent(entry.Class, entry.Proba),
		Probabilities: model.Probabilities{
			Dissatisfied: entry.Proba[0],
			Satisfied:    entry.Proba[1],
		},
		Features:  feats.Named(),
		ModelURI:  s.satisfactionURI,
		Cached:    cached,
		CreatedAt: s.now().UTC(),
	}
	s.record(ctx, p.Record())

	metrics.RecordPrediction(string(task), p.Label)
	metrics.RecordPredictionLatency(string(task), float64(time.Since(start).Milliseconds()))
	return p, nil
}

// PredictPrice runs the price regressor on one form.
func (s *Service) PredictPrice(ctx context.Context, in features.PriceInput) (model.PricePrediction, error) { //nolint:gocritic // hugeParam: form values travel by value
	const task = types.TaskPrice
	start := time.Now()

	if err := s.ready(); err != nil {
		return model.PricePrediction{}, err
	}
	if err := in.Validate(); err != nil {
		return model.PricePrediction{}, s.encodingError(task, err)
	}
	feats, err := features.EncodePrice(in)
	if err != nil {
		return model.PricePrediction{}, s.encodingError(task, err)
	}

	reg, err := s.models.Regressor(ctx, s.priceURI)
	if err != nil {
		return model.PricePrediction{}, fmt.Errorf("price model: %w", err)
	}

	key := cache.Key(task, s.priceURI, feats.Vector())
	entry, cached := s.cachedOutput(ctx, task, key)
	if !cached {
		amount, err := reg.Predict(ctx, feats.Record())
		if err != nil {
			return model.PricePrediction{}, fmt.Errorf("price regression: %w", err)
		}
		entry = cache.Entry{Amount: amount}
		s.storeOutput(ctx, key, entry)
	}

	p := model.PricePrediction{
		ID:        s.newID(),
		Amount:    entry.Amount,
		Currency:  s.formatter.Code(),
		Display:   s.formatter.Format(entry.Amount),
		Features:  feats.Named(),
		ModelURI:  s.priceURI,
		Cached:    cached,
		CreatedAt: s.now().UTC(),
	}
	s.record(ctx, p.Record())

	metrics.RecordPrediction(string(task), "amount")
	metrics.RecordPredictionLatency(string(task), float64(time.Since(start).Milliseconds()))
	return p, nil
}

// Form returns the input descriptor for task.
func (s *Service) Form(task types.Task) (features.Form, error) {
	switch task {
	case types.TaskSatisfaction:
		return features.SatisfactionForm(), nil
	case types.TaskPrice:
		return features.PriceForm(), nil
	default:
		return features.Form{}, fmt.Errorf("%w: %q", types.ErrUnknownTask, task)
	}
}

// History returns the most recent recorded predictions, newest first. An
// empty task matches both forms; a zero limit means the default page size
// and limits above the configured maximum are clamped.
func (s *Service) History(ctx context.Context, task types.Task, limit int) ([]model.Prediction, error) {
	store, err := s.historyStore()
	if err != nil {
		return nil, err
	}
	if task != "" && !task.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownTask, task)
	}
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	case limit == 0:
		limit = min(defaultHistoryLimit, s.maxHistory)
	case limit > s.maxHistory:
		limit = s.maxHistory
	}
	return store.Recent(ctx, task, limit)
}

// Prediction returns one recorded prediction by id.
func (s *Service) Prediction(ctx context.Context, id string) (model.Prediction, error) {
	store, err := s.historyStore()
	if err != nil {
		return model.Prediction{}, err
	}
	return store.Get(ctx, id)
}

// PriceDistribution returns the historical price histogram. Zero bins
// means the configured default.
func (s *Service) PriceDistribution(_ context.Context, bins int) (dataset.Histogram, error) {
	metrics.RecordChartRequest()
	if s.prices == nil {
		return dataset.Histogram{}, fmt.Errorf("%w: price dataset", ErrNotConfigured)
	}
	if bins == 0 {
		bins = s.histogramBins
	}
	if bins < 0 || bins > maxHistogramBins {
		return dataset.Histogram{}, fmt.Errorf("%w: %d not in [1,%d]", dataset.ErrInvalidBins, bins, maxHistogramBins)
	}
	return s.prices.Histogram(bins)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"queueSize":         s.queueSize,
		"satisfactionModel": s.satisfactionURI,
		"priceModel":        s.priceURI,
		"currency":          s.currency,
		"predictionCache":   s.cache != nil,
		"publisher":         s.publisher != nil,
		"priceDataset":      s.prices != nil,
	}
	if c, ok := s.models.(interface{ Len() int }); ok {
		stats["cachedModels"] = c.Len()
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.eventQueue.Len()
		pool := s.workerPool.Stats()

		stats["queueLength"] = queueLen
		stats["workerCount"] = pool.Workers
		stats["recorded"] = pool.Processed
		stats["recordFailures"] = pool.Failed
		if n, err := s.history.Count(ctx); err == nil {
			stats["historySize"] = n
			metrics.UpdateHistorySize(n)
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(pool.Workers)
	}
	return stats
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// historyStore returns the history store of a running service. Stop drops
// a store the service created itself, so it is read under the lock.
func (s *Service) historyStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.history == nil {
		return nil, ErrNotStarted
	}
	return s.history, nil
}

// encodingError counts a rejected form and passes err through.
func (s *Service) encodingError(task types.Task, err error) error {
	kind := "other"
	switch {
	case errors.Is(err, features.ErrOutOfRange):
		kind = "out_of_range"
	case errors.Is(err, features.ErrInvalidCategory):
		kind = "invalid_category"
	}
	metrics.RecordEncodingError(string(task), kind)
	return fmt.Errorf("%s input: %w", task, err)
}

// cachedOutput looks key up in the prediction cache. Cache failures are
// logged and treated as a miss.
func (s *Service) cachedOutput(ctx context.Context, task types.Task, key string) (cache.Entry, bool) {
	if s.cache == nil {
		return cache.Entry{}, false
	}
	cctx, cancel := context.WithTimeout(ctx, defaultCacheOpTimeout)
	defer cancel()

	e, ok, err := s.cache.Get(cctx, key)
	switch {
	case err != nil:
		metrics.RecordPredictionCacheError()
		s.logger.Warn(ctx, "prediction cache read failed", logger.String("task", string(task)), logger.Error(err))
		return cache.Entry{}, false
	case ok:
		metrics.RecordPredictionCacheHit(string(task))
		return e, true
	default:
		metrics.RecordPredictionCacheMiss(string(task))
		return cache.Entry{}, false
	}
}

func (s *Service) storeOutput(ctx context.Context, key string, e cache.Entry) {
	if s.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, defaultCacheOpTimeout)
	defer cancel()

	if err := s.cache.Set(cctx, key, e); err != nil {
		metrics.RecordPredictionCacheError()
		s.logger.Warn(ctx, "prediction cache write failed", logger.Error(err))
	}
}

// record hands p to the recording queue. A full queue drops the record,
// never the prediction.
func (s *Service) record(ctx context.Context, p model.Prediction) { //nolint:gocritic // hugeParam
	if err := s.eventQueue.Enqueue(ctx, model.NewEvent(p)); err != nil {
		s.logger.Warn(ctx, "prediction not recorded",
			logger.String("id", p.ID),
			logger.String("task", string(p.Task)),
			logger.Error(err),
		)
		return
	}
	metrics.UpdateQueueSize(s.eventQueue.Len())
}

// saveHistory is the worker sink writing into the history store.
func (s *Service) saveHistory(ctx context.Context, ev model.Event) error { //nolint:gocritic // hugeParam
	if err := s.history.Save(ctx, ev.Prediction); err != nil {
		metrics.RecordHistoryError()
		return fmt.Errorf("save prediction %s: %w", ev.EventID, err)
	}
	metrics.RecordHistoryWrite()
	return nil
}
