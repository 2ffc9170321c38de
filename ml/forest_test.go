package ml

import (
	"math"
	"testing"
)

func identityScaler() StandardScaler {
	mean := make([]float64, FeatureCount)
	scale := make([]float64, FeatureCount)
	for i := range scale {
		scale[i] = 1
	}
	return StandardScaler{Mean: mean, Scale: scale}
}

// stump splits on feature 0 at threshold 0.
func stump(leftValue, rightValue float64) RegressionTree {
	return RegressionTree{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 0, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: leftValue, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: rightValue, IsLeaf: true},
	}}
}

func TestForestAveragesTrees(t *testing.T) {
	forest := &RegressionForest{
		Scaler: identityScaler(),
		Trees:  []RegressionTree{stump(1, 3), stump(2, 4)},
	}

	vec := make([]float64, FeatureCount)
	vec[0] = 5 // routes right in both trees

	y, err := forest.PredictRaw(vec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y != 3.5 {
		t.Fatalf("expected (3+4)/2 = 3.5, got %v", y)
	}
}

func TestForestRejectsWrongLength(t *testing.T) {
	forest := &RegressionForest{
		Scaler: identityScaler(),
		Trees:  []RegressionTree{stump(1, 3)},
	}

	if _, err := forest.PredictRaw([]float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for wrong vector length")
	}
}

func TestScalerTransform(t *testing.T) {
	scaler := StandardScaler{
		Mean:  []float64{10, 3},
		Scale: []float64{2, 0},
	}

	scaled, err := scaler.Transform([]float64{14, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scaled[0] != 2 {
		t.Fatalf("expected (14-10)/2 = 2, got %v", scaled[0])
	}
	// A zero-variance feature centers without dividing, as if scale were 1.
	if scaled[1] != 4 {
		t.Fatalf("expected 7-3 = 4 for zero-scale feature, got %v", scaled[1])
	}
}

func TestTreePredictWalk(t *testing.T) {
	tree := stump(-1, 1)

	left := make([]float64, FeatureCount)
	left[0] = -0.5
	y, err := tree.Predict(left)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(y+1) > 1e-12 {
		t.Fatalf("expected left leaf -1, got %v", y)
	}

	right := make([]float64, FeatureCount)
	right[0] = 0.5
	y, err = tree.Predict(right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(y-1) > 1e-12 {
		t.Fatalf("expected right leaf 1, got %v", y)
	}
}
