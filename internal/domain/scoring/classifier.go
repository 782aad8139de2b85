package scoring

import (
	"context"
	"fmt"
	"math"
)

// Logistic is a logistic-regression classifier with one weight per feature.
type Logistic struct {
	features  []string
	weights   []float64
	intercept float64
	cfg       classifierConfig
}

// NewLogistic builds a logistic classifier. weights[i] applies to features[i].
func NewLogistic(features []string, weights []float64, intercept float64, opts ...Option) (*Logistic, error) {
	if len(features) == 0 || len(features) != len(weights) {
		return nil, fmt.Errorf("%w: %d features, %d weights", ErrInvalidArtifact, len(features), len(weights))
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Logistic{
		features:  copyNames(features),
		weights:   w,
		intercept: intercept,
		cfg:       newClassifierConfig(opts),
	}, nil
}

func (m *Logistic) Kind() Kind             { return KindLogistic }
func (m *Logistic) FeatureNames() []string { return copyNames(m.features) }

// PredictProba returns [1-σ(z), σ(z)] with z = intercept + w·x.
func (m *Logistic) PredictProba(ctx context.Context, x []float64) ([2]float64, error) {
	if err := ctx.Err(); err != nil {
		return [2]float64{}, fmt.Errorf("context cancelled: %w", err)
	}
	if err := checkWidth(x, len(m.weights)); err != nil {
		return [2]float64{}, err
	}
	z := m.intercept
	for i, w := range m.weights {
		z += w * x[i]
	}
	p1 := 1 / (1 + math.Exp(-z))
	return [2]float64{1 - p1, p1}, nil
}

// Predict returns 1 when the satisfied probability reaches the threshold.
func (m *Logistic) Predict(ctx context.Context, x []float64) (int, error) {
	proba, err := m.PredictProba(ctx, x)
	if err != nil {
		return 0, err
	}
	return classify(proba, m.cfg.threshold), nil
}

// Forest is a random-forest classifier. Each tree's leaves hold the class-1
// probability and the forest averages them. Splits address features by index.
type Forest struct {
	features []string
	trees    []Tree
	cfg      classifierConfig
}

// NewForest builds a forest classifier over the given ordered features.
func NewForest(features []string, trees []Tree, opts ...Option) (*Forest, error) {
	if len(features) == 0 || len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest needs features and trees", ErrInvalidArtifact)
	}
	for i, t := range trees {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for j, n := range t.Nodes {
			if !n.IsLeaf && (n.FeatureIdx < 0 || n.FeatureIdx >= len(features)) {
				return nil, fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrInvalidArtifact, i, j, n.FeatureIdx)
			}
			if n.IsLeaf && (n.Value < 0 || n.Value > 1) {
				return nil, fmt.Errorf("%w: tree %d leaf %d probability %g", ErrInvalidArtifact, i, j, n.Value)
			}
		}
	}
	return &Forest{
		features: copyNames(features),
		trees:    trees,
		cfg:      newClassifierConfig(opts),
	}, nil
}

func (m *Forest) Kind() Kind             { return KindForest }
func (m *Forest) FeatureNames() []string { return copyNames(m.features) }

// PredictProba averages the leaf probabilities of every tree.
func (m *Forest) PredictProba(ctx context.Context, x []float64) ([2]float64, error) {
	if err := ctx.Err(); err != nil {
		return [2]float64{}, fmt.Errorf("context cancelled: %w", err)
	}
	if err := checkWidth(x, len(m.features)); err != nil {
		return [2]float64{}, err
	}
	byIndex := func(n TreeNode) (float64, error) { return x[n.FeatureIdx], nil }

	var sum float64
	for _, t := range m.trees {
		v, err := t.walk(byIndex)
		if err != nil {
			return [2]float64{}, err
		}
		sum += v
	}
	p1 := sum / float64(len(m.trees))
	return [2]float64{1 - p1, p1}, nil
}

// Predict returns 1 when the averaged probability reaches the threshold.
func (m *Forest) Predict(ctx context.Context, x []float64) (int, error) {
	proba, err := m.PredictProba(ctx, x)
	if err != nil {
		return 0, err
	}
	return classify(proba, m.cfg.threshold), nil
}
