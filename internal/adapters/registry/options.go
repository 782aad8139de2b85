package registry

import "github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithRoot sets the directory that runs:/ and models:/ URIs resolve under.
func WithRoot(root string) Option {
	return func(r *Registry) {
		if root != "" {
			r.root = root
		}
	}
}

// WithCacheSize bounds how many decoded models stay in memory.
func WithCacheSize(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

// WithLogger sets a custom logger for the registry.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
