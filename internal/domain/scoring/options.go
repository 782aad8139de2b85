package scoring

// Option applies a configuration option to a classifier.
type Option func(*classifierConfig)

type classifierConfig struct {
	threshold float64
}

// WithThreshold sets the probability at or above which a sample is class 1.
// Values outside (0, 1) are ignored.
func WithThreshold(threshold float64) Option {
	return func(c *classifierConfig) {
		if threshold > 0 && threshold < 1 {
			c.threshold = threshold
		}
	}
}

func newClassifierConfig(opts []Option) classifierConfig {
	c := classifierConfig{threshold: defaultThreshold}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
