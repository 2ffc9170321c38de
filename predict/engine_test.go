package predict

import (
	"errors"
	"testing"

	"homeval/ml"
)

type stubModel struct {
	fn    func([]float64) (float64, error)
	calls int
}

func (s *stubModel) PredictRaw(vec []float64) (float64, error) {
	s.calls++
	return s.fn(vec)
}

func constModel(y float64) *stubModel {
	return &stubModel{fn: func([]float64) (float64, error) { return y, nil }}
}

func baseFeatures() ml.HousingFeatures {
	return ml.HousingFeatures{
		MedInc:      4.0,
		HouseAge:    20.0,
		AveRooms:    5.0,
		AveBedrooms: 1.0,
		Population:  1000.0,
		AveOccup:    3.0,
		Latitude:    34.0,
		Longitude:   -118.0,
	}
}

func TestPredictAppliesUnitScale(t *testing.T) {
	engine := NewEngine(constModel(2.5))

	pred, err := engine.Predict(baseFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pred.YUnit != 2.5 {
		t.Fatalf("expected raw output 2.5, got %v", pred.YUnit)
	}
	if pred.PredictedPrice != 250_000.0 {
		t.Fatalf("expected exactly y_unit*100000 = 250000, got %v", pred.PredictedPrice)
	}
}

func TestPredictFormatsGroupedPrice(t *testing.T) {
	engine := NewEngine(constModel(12.34567))

	pred, err := engine.Predict(baseFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Formatted != "1,234,567 $" {
		t.Fatalf("expected \"1,234,567 $\", got %q", pred.Formatted)
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	model := &stubModel{fn: func(vec []float64) (float64, error) { return vec[0] + vec[7], nil }}
	engine := NewEngine(model)

	first, err := engine.Predict(baseFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Predict(baseFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("identical inputs gave different outputs: %+v vs %+v", first, second)
	}
}

func TestPredictPropagatesModelError(t *testing.T) {
	modelErr := errors.New("boom")
	engine := NewEngine(&stubModel{fn: func([]float64) (float64, error) { return 0, modelErr }})

	if _, err := engine.Predict(baseFeatures()); !errors.Is(err, modelErr) {
		t.Fatalf("expected model error to surface, got %v", err)
	}
}
