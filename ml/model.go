package ml

// RegressionModel is the capability the serving layer needs from the trained
// pipeline: map an ordered feature vector to the raw model output. The output
// is in the artifact's native unit, not a currency amount.
type RegressionModel interface {
	PredictRaw(features []float64) (float64, error)
}
