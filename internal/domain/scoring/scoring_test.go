package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	scoring "github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func stump(idx int, feature string, threshold, left, right float64) scoring.Tree {
	return scoring.Tree{Nodes: []scoring.TreeNode{
		{FeatureIdx: idx, Feature: feature, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: left},
		{IsLeaf: true, Value: right},
	}}
}

func TestLogistic(t *testing.T) {
	Convey("Given a two-feature logistic classifier", t, func() {
		m, err := scoring.NewLogistic([]string{"a", "b"}, []float64{1, -1}, 0)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When z is zero", func() {
			proba, err := m.PredictProba(ctx, []float64{2, 2})

			Convey("Then both classes are equally likely and the threshold picks 1", func() {
				So(err, ShouldBeNil)
				So(proba[0], ShouldAlmostEqual, 0.5)
				So(proba[1], ShouldAlmostEqual, 0.5)
				class, err := m.Predict(ctx, []float64{2, 2})
				So(err, ShouldBeNil)
				So(class, ShouldEqual, 1)
			})
		})

		Convey("When z is strongly negative", func() {
			class, err := m.Predict(ctx, []float64{0, 10})
			So(err, ShouldBeNil)
			So(class, ShouldEqual, 0)
		})

		Convey("When the vector is too short", func() {
			_, err := m.PredictProba(ctx, []float64{1})
			So(errors.Is(err, scoring.ErrFeatureCount), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.Predict(cctx, []float64{1, 1})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a logistic classifier with a high threshold", t, func() {
		m, err := scoring.NewLogistic([]string{"a"}, []float64{1}, 0, scoring.WithThreshold(0.9))
		So(err, ShouldBeNil)

		Convey("Then a 0.73 probability is class 0", func() {
			class, err := m.Predict(context.Background(), []float64{1})
			So(err, ShouldBeNil)
			So(class, ShouldEqual, 0)
		})
	})

	Convey("Given mismatched weights", t, func() {
		_, err := scoring.NewLogistic([]string{"a", "b"}, []float64{1}, 0)
		So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
	})
}

func TestForest(t *testing.T) {
	Convey("Given a forest of two stumps", t, func() {
		trees := []scoring.Tree{
			stump(0, "", 30, 0.2, 0.8),
			stump(1, "", 3, 0.0, 1.0),
		}
		m, err := scoring.NewForest([]string{"age", "seat"}, trees)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When both trees go right", func() {
			proba, err := m.PredictProba(ctx, []float64{40, 5})
			So(err, ShouldBeNil)

			Convey("Then the probability is the mean of the leaves", func() {
				So(proba[1], ShouldAlmostEqual, 0.9)
				So(proba[0], ShouldAlmostEqual, 0.1)
			})
		})

		Convey("When both trees go left", func() {
			class, err := m.Predict(ctx, []float64{20, 1})
			So(err, ShouldBeNil)
			So(class, ShouldEqual, 0)
		})

		Convey("When the value equals the threshold it goes left", func() {
			proba, err := m.PredictProba(ctx, []float64{30, 3})
			So(err, ShouldBeNil)
			So(proba[1], ShouldAlmostEqual, 0.1)
		})
	})

	Convey("Given a tree that splits on a missing feature index", t, func() {
		_, err := scoring.NewForest([]string{"age"}, []scoring.Tree{stump(3, "", 1, 0, 1)})
		So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
	})

	Convey("Given a tree whose child points backwards", t, func() {
		tree := scoring.Tree{Nodes: []scoring.TreeNode{
			{FeatureIdx: 0, LeftChild: 0, RightChild: 1},
			{IsLeaf: true, Value: 1},
		}}
		_, err := scoring.NewForest([]string{"age"}, []scoring.Tree{tree})
		So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
	})

	Convey("Given a leaf that is not a probability", t, func() {
		_, err := scoring.NewForest([]string{"age"}, []scoring.Tree{stump(0, "", 1, 0, 2)})
		So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
	})
}

func TestLinear(t *testing.T) {
	Convey("Given a linear regressor", t, func() {
		m, err := scoring.NewLinear(1000, map[string]float64{"Duration": 10, "Total_Stops": 2000})
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Then feature names are sorted", func() {
			So(m.FeatureNames(), ShouldResemble, []string{"Duration", "Total_Stops"})
		})

		Convey("When every column is present", func() {
			y, err := m.Predict(ctx, map[string]float64{"Duration": 120, "Total_Stops": 1})
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 1000+1200+2000)
		})

		Convey("When a column is missing", func() {
			_, err := m.Predict(ctx, map[string]float64{"Duration": 120, "Other": 1})
			So(errors.Is(err, scoring.ErrMissingFeature), ShouldBeTrue)
		})

		Convey("When there are extra columns", func() {
			_, err := m.Predict(ctx, map[string]float64{"Duration": 120, "Total_Stops": 1, "X": 0})
			So(errors.Is(err, scoring.ErrFeatureCount), ShouldBeTrue)
		})
	})
}

func TestBoosted(t *testing.T) {
	Convey("Given a boosted regressor", t, func() {
		trees := []scoring.Tree{
			stump(0, "Total_Stops", 0.5, -1000, 2000),
			stump(0, "Airline_Jet Airways", 0.5, 0, 3000),
		}
		m, err := scoring.NewBoosted([]string{"Total_Stops", "Airline_Jet Airways"}, 9000, 0.5, trees)
		So(err, ShouldBeNil)

		Convey("When predicting a one-stop Jet Airways flight", func() {
			y, err := m.Predict(context.Background(), map[string]float64{"Total_Stops": 1, "Airline_Jet Airways": 1})

			Convey("Then it adds the scaled tree outputs to the base score", func() {
				So(err, ShouldBeNil)
				So(y, ShouldEqual, 9000+0.5*(2000+3000))
			})
		})

		Convey("When the record lacks a column", func() {
			_, err := m.Predict(context.Background(), map[string]float64{"Total_Stops": 1})
			So(errors.Is(err, scoring.ErrMissingFeature), ShouldBeTrue)
		})
	})

	Convey("Given a boosted tree splitting on an undeclared column", t, func() {
		_, err := scoring.NewBoosted([]string{"Duration"}, 0, 1, []scoring.Tree{stump(0, "Year", 1, 0, 1)})
		So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
	})
}

func TestFromArtifact(t *testing.T) {
	Convey("Given artifacts of each kind", t, func() {
		Convey("When the kind is logistic with a threshold", func() {
			m, err := scoring.FromArtifact(&scoring.Artifact{
				Kind:      scoring.KindLogistic,
				Features:  []string{"a"},
				Weights:   []float64{1},
				Threshold: 0.99,
			})
			So(err, ShouldBeNil)
			c, ok := m.(scoring.Classifier)
			So(ok, ShouldBeTrue)

			Convey("Then the artifact threshold is applied", func() {
				class, err := c.Predict(context.Background(), []float64{2})
				So(err, ShouldBeNil)
				So(class, ShouldEqual, 0)
			})
		})

		Convey("When the kind is linear", func() {
			m, err := scoring.FromArtifact(&scoring.Artifact{
				Kind:         scoring.KindLinear,
				Coefficients: map[string]float64{"x": 1},
			})
			So(err, ShouldBeNil)
			_, ok := m.(scoring.Regressor)
			So(ok, ShouldBeTrue)
			So(m.Kind(), ShouldEqual, scoring.KindLinear)
		})

		Convey("When the kind is unknown", func() {
			_, err := scoring.FromArtifact(&scoring.Artifact{Kind: "svm"})
			So(errors.Is(err, scoring.ErrUnsupportedKind), ShouldBeTrue)
		})

		Convey("When the artifact is nil", func() {
			_, err := scoring.FromArtifact(nil)
			So(errors.Is(err, scoring.ErrInvalidArtifact), ShouldBeTrue)
		})

		Convey("When a boosted artifact is built", func() {
			m, err := scoring.FromArtifact(&scoring.Artifact{
				Kind:      scoring.KindBoosted,
				Features:  []string{"x"},
				BaseScore: 1,
				Trees:     []scoring.Tree{stump(0, "x", 0, 0, 1)},
			})
			So(err, ShouldBeNil)
			r := m.(scoring.Regressor)
			y, err := r.Predict(context.Background(), map[string]float64{"x": 5})
			So(err, ShouldBeNil)
			So(math.Abs(y-2), ShouldBeLessThan, 1e-9)
		})
	})
}
