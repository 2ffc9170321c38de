// Package predict turns raw model outputs into prices and drives
// one-dimensional sensitivity sweeps over the feature space.
package predict

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"homeval/ml"
)

// PriceUnitScale converts the model's native output (hundreds of thousands of
// dollars, the California housing target unit) into dollars.
const PriceUnitScale = 100_000.0

// Prediction is one scored feature record.
type Prediction struct {
	// PredictedPrice is the price in dollars.
	PredictedPrice float64
	// Formatted is the price grouped with zero decimals and a currency
	// suffix, e.g. "231,459 $".
	Formatted string
	// YUnit is the raw model output before unit conversion, kept for
	// diagnostics.
	YUnit float64
}

// Engine evaluates a trained model. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	model   ml.RegressionModel
	printer *message.Printer
}

func NewEngine(model ml.RegressionModel) *Engine {
	return &Engine{
		model:   model,
		printer: message.NewPrinter(language.English),
	}
}

// Predict scores a named feature record.
func (e *Engine) Predict(features ml.HousingFeatures) (Prediction, error) {
	return e.PredictVector(features.Vector())
}

// PredictVector scores an ordered feature vector. The vector must already be
// in ml.FeatureOrder order; a wrong-length vector is a caller bug and is
// rejected by the model.
func (e *Engine) PredictVector(vec []float64) (Prediction, error) {
	yUnit, err := e.model.PredictRaw(vec)
	if err != nil {
		return Prediction{}, err
	}

	price := yUnit * PriceUnitScale
	return Prediction{
		PredictedPrice: price,
		Formatted:      e.FormatPrice(price),
		YUnit:          yUnit,
	}, nil
}

// FormatPrice renders a dollar amount grouped with zero decimals.
func (e *Engine) FormatPrice(price float64) string {
	return e.printer.Sprintf("%v $", number.Decimal(price, number.MaxFractionDigits(0)))
}
