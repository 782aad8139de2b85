package scoring

import (
	"context"
	"fmt"
	"sort"
)

// Linear is a linear regressor with coefficients keyed by column name.
type Linear struct {
	intercept    float64
	coefficients map[string]float64
	features     []string
}

// NewLinear builds a linear regressor.
func NewLinear(intercept float64, coefficients map[string]float64) (*Linear, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrInvalidArtifact)
	}
	coef := make(map[string]float64, len(coefficients))
	names := make([]string, 0, len(coefficients))
	for k, v := range coefficients {
		coef[k] = v
		names = append(names, k)
	}
	sort.Strings(names)
	return &Linear{intercept: intercept, coefficients: coef, features: names}, nil
}

func (m *Linear) Kind() Kind             { return KindLinear }
func (m *Linear) FeatureNames() []string { return copyNames(m.features) }

// Predict returns intercept + Σ coef[name]·record[name]. Every coefficient
// must have a value in the record; extra record keys are an error too.
func (m *Linear) Predict(ctx context.Context, record map[string]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	if len(record) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(record), len(m.coefficients))
	}
	y := m.intercept
	for name, c := range m.coefficients {
		v, ok := record[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		y += c * v
	}
	return y, nil
}

// Boosted is a gradient-boosted tree ensemble. Splits address features by
// name so the record's key order never matters.
type Boosted struct {
	features     []string
	baseScore    float64
	learningRate float64
	trees        []Tree
}

// NewBoosted builds a boosted regressor. A zero learning rate means 1.
func NewBoosted(features []string, baseScore, learningRate float64, trees []Tree) (*Boosted, error) {
	if len(features) == 0 || len(trees) == 0 {
		return nil, fmt.Errorf("%w: boosted model needs features and trees", ErrInvalidArtifact)
	}
	if learningRate == 0 {
		learningRate = 1
	}
	known := make(map[string]struct{}, len(features))
	for _, f := range features {
		known[f] = struct{}{}
	}
	for i, t := range trees {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for j, n := range t.Nodes {
			if n.IsLeaf {
				continue
			}
			if _, ok := known[n.Feature]; !ok {
				return nil, fmt.Errorf("%w: tree %d node %d splits on unknown feature %q", ErrInvalidArtifact, i, j, n.Feature)
			}
		}
	}
	return &Boosted{
		features:     copyNames(features),
		baseScore:    baseScore,
		learningRate: learningRate,
		trees:        trees,
	}, nil
}

func (m *Boosted) Kind() Kind             { return KindBoosted }
func (m *Boosted) FeatureNames() []string { return copyNames(m.features) }

// Predict returns base + learning_rate · Σ tree(record).
func (m *Boosted) Predict(ctx context.Context, record map[string]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	for _, f := range m.features {
		if _, ok := record[f]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingFeature, f)
		}
	}
	byName := func(n TreeNode) (float64, error) { return record[n.Feature], nil }

	var sum float64
	for _, t := range m.trees {
		v, err := t.walk(byName)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return m.baseScore + m.learningRate*sum, nil
}
