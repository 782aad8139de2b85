// Package registry loads trained model artifacts by URI and keeps the
// decoded models in an LRU cache.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/features"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/scoring"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

// Default registry configuration constants.
const (
	defaultRoot      = "mlruns"
	defaultCacheSize = 8
)

// Registry resolves model URIs to artifacts and serves decoded models.
type Registry struct {
	root      string
	cacheSize int
	cache     *lru.Cache[string, scoring.Model]

	// loadMu serialises cache misses so a model is decoded once.
	loadMu sync.Mutex

	logger logger.Logger
}

// New creates a registry with configuration options.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		root:      defaultRoot,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("registry")
	}

	cache, err := lru.New[string, scoring.Model](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Root returns the directory registry URIs resolve under.
func (r *Registry) Root() string { return r.root }

// Len returns the number of cached models.
func (r *Registry) Len() int { return r.cache.Len() }

// Purge drops every cached model; the next request reloads from disk.
func (r *Registry) Purge() { r.cache.Purge() }

// Classifier returns the satisfaction classifier at uri. The model must
// declare exactly the satisfaction encoder's columns in order.
func (r *Registry) Classifier(ctx context.Context, uri string) (scoring.Classifier, error) {
	m, err := r.load(ctx, uri, types.TaskSatisfaction, func(m scoring.Model) error {
		if _, ok := m.(scoring.Classifier); !ok {
			return fmt.Errorf("%w: %s is a %s model, not a classifier", ErrWrongTask, uri, m.Kind())
		}
		return features.CheckSatisfactionSchema(m.FeatureNames())
	})
	if err != nil {
		return nil, err
	}
	return m.(scoring.Classifier), nil
}

// Regressor returns the price regressor at uri. The model must declare the
// same column set the price encoder produces.
func (r *Registry) Regressor(ctx context.Context, uri string) (scoring.Regressor, error) {
	m, err := r.load(ctx, uri, types.TaskPrice, func(m scoring.Model) error {
		if _, ok := m.(scoring.Regressor); !ok {
			return fmt.Errorf("%w: %s is a %s model, not a regressor", ErrWrongTask, uri, m.Kind())
		}
		return features.CheckPriceSchema(m.FeatureNames())
	})
	if err != nil {
		return nil, err
	}
	return m.(scoring.Regressor), nil
}

// load returns the cached model for uri or reads, decodes and checks it.
// Only models that pass check are cached.
func (r *Registry) load(ctx context.Context, uri string, task types.Task, check func(scoring.Model) error) (scoring.Model, error) {
	if m, ok := r.cache.Get(uri); ok {
		metrics.RecordModelCacheHit()
		return m, nil
	}

	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	// Another caller may have loaded it while we waited.
	if m, ok := r.cache.Get(uri); ok {
		metrics.RecordModelCacheHit()
		return m, nil
	}
	metrics.RecordModelCacheMiss()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	start := time.Now()
	m, err := r.read(uri, task)
	if err == nil {
		err = check(m)
	}
	metrics.RecordModelLoadLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordModelLoad(string(task), "error")
		r.logger.Error(ctx, "model load failed",
			logger.String("uri", uri),
			logger.String("task", string(task)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	r.cache.Add(uri, m)
	metrics.RecordModelLoad(string(task), "ok")
	r.logger.Info(ctx, "model loaded",
		logger.String("uri", uri),
		logger.String("task", string(task)),
		logger.String("kind", string(m.Kind())),
		logger.Int("features", len(m.FeatureNames())),
	)
	return m, nil
}

// read resolves, reads and decodes one artifact without touching the cache.
func (r *Registry) read(uri string, task types.Task) (scoring.Model, error) {
	path, err := Resolve(r.root, uri)
	if err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, artifactFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, uri, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	a, err := DecodeArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.Task != "" && a.Task != task {
		return nil, fmt.Errorf("%w: %s is trained for %s", ErrWrongTask, uri, a.Task)
	}
	return scoring.FromArtifact(a)
}

// DecodeArtifact parses a YAML (or JSON) model artifact. Unknown keys are
// rejected so a typo cannot silently zero a parameter.
func DecodeArtifact(data []byte) (*scoring.Artifact, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var a scoring.Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &a, nil
}
