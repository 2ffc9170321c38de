package ml

import (
	"errors"
	"fmt"
)

// TreeNode is one node of a regression tree, stored in a flat array. Leaf
// nodes carry the predicted value; inner nodes route on a single feature.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// RegressionTree is a single fitted tree. Node 0 is the root.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree from the root to a leaf.
func (t *RegressionTree) Predict(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// StandardScaler holds the per-feature mean and scale fitted at training
// time. Transform standardizes a vector without mutating it.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) || len(features) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}
	scaled := make([]float64, len(features))
	for i, v := range features {
		// Zero-variance features keep scale 1, matching the fitted
		// pipeline's convention for constant columns.
		if s.Scale[i] == 0 {
			scaled[i] = v - s.Mean[i]
			continue
		}
		scaled[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return scaled, nil
}

// RegressionForest is the fitted pipeline: standardization followed by an
// averaged ensemble of regression trees.
type RegressionForest struct {
	Scaler StandardScaler   `json:"scaler"`
	Trees  []RegressionTree `json:"trees"`
}

// PredictRaw applies the scaler and averages the tree outputs. A vector of
// the wrong length is a caller bug and fails immediately.
func (f *RegressionForest) PredictRaw(features []float64) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("model expects %d features, got %d", FeatureCount, len(features))
	}
	if len(f.Trees) == 0 {
		return 0, errors.New("model has no trees")
	}

	scaled, err := f.Scaler.Transform(features)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for i := range f.Trees {
		y, err := f.Trees[i].Predict(scaled)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += y
	}
	return sum / float64(len(f.Trees)), nil
}
