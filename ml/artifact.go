package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metrics are the held-out evaluation numbers captured when the artifact was
// trained. They are reported as-is; nothing recomputes them at serve time.
type Metrics struct {
	MAE float64 `json:"mae_100k"`
	R2  float64 `json:"r2"`
}

// Artifact is the trained pipeline plus its metadata, loaded once at startup
// and treated as read-only for the process lifetime.
type Artifact struct {
	FeatureNames []string          `json:"feature_names"`
	TargetUnit   string            `json:"target_unit"`
	Metrics      Metrics           `json:"metrics"`
	Model        *RegressionForest `json:"model"`
}

// PredictRaw delegates to the fitted pipeline.
func (a *Artifact) PredictRaw(features []float64) (float64, error) {
	return a.Model.PredictRaw(features)
}

// LoadArtifact reads and validates a trained artifact. The feature order the
// pipeline was trained with is positional, so a name list that differs from
// FeatureOrder in any way means predictions would be silently wrong; that is
// rejected here rather than trusted.
func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &artifact, nil
}

func (a *Artifact) validate() error {
	if len(a.FeatureNames) != FeatureCount {
		return fmt.Errorf("artifact declares %d features, want %d", len(a.FeatureNames), FeatureCount)
	}
	for i, name := range a.FeatureNames {
		if name != FeatureOrder[i] {
			return fmt.Errorf("feature %d is %q, want %q: artifact was trained with a different feature order", i, name, FeatureOrder[i])
		}
	}
	if a.Model == nil {
		return fmt.Errorf("artifact has no model")
	}
	if len(a.Model.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	for i, tree := range a.Model.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", i)
		}
	}
	if len(a.Model.Scaler.Mean) != FeatureCount || len(a.Model.Scaler.Scale) != FeatureCount {
		return fmt.Errorf("scaler dimensions %d/%d, want %d", len(a.Model.Scaler.Mean), len(a.Model.Scaler.Scale), FeatureCount)
	}
	return nil
}
