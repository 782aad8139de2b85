// Package scoring defines the model contracts the prediction service calls
// and the artifact-backed implementations behind them.
//
// A model is loaded once from an artifact and is read-only afterwards, so
// every implementation here is safe for concurrent use.
package scoring

import (
	"context"
	"fmt"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

const defaultThreshold = 0.5

// Kind names an artifact's model family.
type Kind string

const (
	KindLogistic Kind = "logistic" // binary classifier
	KindForest   Kind = "forest"   // binary classifier
	KindLinear   Kind = "linear"   // regressor
	KindBoosted  Kind = "boosted"  // regressor
)

// Model is what every loaded model exposes regardless of task.
type Model interface {
	Kind() Kind
	// FeatureNames returns the columns the model was trained on.
	FeatureNames() []string
}

// Classifier is a binary classifier over an ordered feature vector.
type Classifier interface {
	Model
	// Predict returns the class index, 0 or 1.
	Predict(ctx context.Context, x []float64) (int, error)
	// PredictProba returns [p0, p1].
	PredictProba(ctx context.Context, x []float64) ([2]float64, error)
}

// Regressor predicts a scalar from a record keyed by column name.
type Regressor interface {
	Model
	Predict(ctx context.Context, record map[string]float64) (float64, error)
}

// Artifact is the on-disk description of a trained model.
type Artifact struct {
	Name     string     `yaml:"name" json:"name"`
	Kind     Kind       `yaml:"kind" json:"kind"`
	Task     types.Task `yaml:"task" json:"task"`
	Features []string   `yaml:"features" json:"features"`

	// Classifiers.
	Threshold float64   `yaml:"threshold" json:"threshold"`
	Weights   []float64 `yaml:"weights" json:"weights"`

	// Regressors.
	Coefficients map[string]float64 `yaml:"coefficients" json:"coefficients"`
	BaseScore    float64            `yaml:"base_score" json:"base_score"`
	LearningRate float64            `yaml:"learning_rate" json:"learning_rate"`

	Intercept float64 `yaml:"intercept" json:"intercept"`
	Trees     []Tree  `yaml:"trees" json:"trees"`
}

// FromArtifact builds the model an artifact describes.
func FromArtifact(a *Artifact, opts ...Option) (Model, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if a.Threshold != 0 {
		opts = append([]Option{WithThreshold(a.Threshold)}, opts...)
	}
	var (
		m   Model
		err error
	)
	switch a.Kind {
	case KindLogistic:
		m, err = NewLogistic(a.Features, a.Weights, a.Intercept, opts...)
	case KindForest:
		m, err = NewForest(a.Features, a.Trees, opts...)
	case KindLinear:
		m, err = NewLinear(a.Intercept, a.Coefficients)
	case KindBoosted:
		m, err = NewBoosted(a.Features, a.BaseScore, a.LearningRate, a.Trees)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func checkWidth(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), want)
	}
	return nil
}

func classify(proba [2]float64, threshold float64) int {
	if proba[1] >= threshold {
		return 1
	}
	return 0
}

func copyNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
