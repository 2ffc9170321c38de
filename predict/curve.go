package predict

import (
	"errors"
	"fmt"

	"homeval/ml"
)

// MaxCurvePoints bounds a sweep; model evaluation is cheap but unbounded
// grids would let one request monopolize a worker.
const MaxCurvePoints = 200

// ErrInvalidRequest marks client-side validation failures. The HTTP layer
// maps anything wrapping it to a 400.
var ErrInvalidRequest = errors.New("invalid request")

// CurveRequest asks how the predicted price moves when one feature varies
// over [MinValue, MaxValue] while the rest stay at the Base values.
type CurveRequest struct {
	FeatureName string             `json:"feature_name"`
	Base        ml.HousingFeatures `json:"base"`
	MinValue    float64            `json:"min_value"`
	MaxValue    float64            `json:"max_value"`
	NumPoints   int                `json:"num_points"`
}

// CurveResult holds the sampled axis and the price at each sample, in strict
// index correspondence.
type CurveResult struct {
	FeatureName string    `json:"feature_name"`
	XValues     []float64 `json:"x_values"`
	Prices      []float64 `json:"prices"`
}

// Sweep samples the model along one feature axis. The grid is linear and
// inclusive of both endpoints; a reversed range is normalized rather than
// rejected, a deliberate tolerance kept from the service's documented
// behavior. All validation happens before the first model call, so a failed
// request never returns a partial curve.
func (e *Engine) Sweep(req CurveRequest) (CurveResult, error) {
	featureIdx, ok := ml.FeatureIndex(req.FeatureName)
	if !ok {
		return CurveResult{}, fmt.Errorf("%w: feature_name must be one of %v", ErrInvalidRequest, ml.FeatureOrder)
	}
	if req.NumPoints < 2 {
		return CurveResult{}, fmt.Errorf("%w: num_points must be at least 2", ErrInvalidRequest)
	}
	if req.NumPoints > MaxCurvePoints {
		return CurveResult{}, fmt.Errorf("%w: num_points must be at most %d", ErrInvalidRequest, MaxCurvePoints)
	}

	lo, hi := req.MinValue, req.MaxValue
	if lo > hi {
		lo, hi = hi, lo
	}

	base := req.Base.Vector()
	step := (hi - lo) / float64(req.NumPoints-1)

	xValues := make([]float64, req.NumPoints)
	prices := make([]float64, req.NumPoints)
	for i := 0; i < req.NumPoints; i++ {
		x := lo + float64(i)*step
		vec := make([]float64, len(base))
		copy(vec, base)
		vec[featureIdx] = x

		pred, err := e.PredictVector(vec)
		if err != nil {
			return CurveResult{}, fmt.Errorf("evaluate %s=%g: %w", req.FeatureName, x, err)
		}
		xValues[i] = x
		prices[i] = pred.PredictedPrice
	}

	return CurveResult{
		FeatureName: req.FeatureName,
		XValues:     xValues,
		Prices:      prices,
	}, nil
}
