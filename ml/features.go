package ml

import "fmt"

// FeatureOrder is the positional order of the model inputs. It must match the
// order the artifact was trained with; LoadArtifact rejects any artifact
// whose declared feature names differ from this list.
var FeatureOrder = []string{
	"med_inc",
	"house_age",
	"ave_rooms",
	"ave_bedrooms",
	"population",
	"ave_occup",
	"latitude",
	"longitude",
}

// FeatureCount is the dimensionality of the model input.
const FeatureCount = 8

// HousingFeatures is one district's input record. All fields are plain reals;
// the model extrapolates silently outside its training distribution, so no
// range checks are applied here.
type HousingFeatures struct {
	MedInc      float64 `json:"med_inc"`      // median income, tens of thousands of dollars
	HouseAge    float64 `json:"house_age"`    // median house age in the district
	AveRooms    float64 `json:"ave_rooms"`    // average rooms per household
	AveBedrooms float64 `json:"ave_bedrooms"` // average bedrooms per household
	Population  float64 `json:"population"`   // district population
	AveOccup    float64 `json:"ave_occup"`    // average household occupancy
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Vector returns the features as a slice ordered per FeatureOrder.
func (h HousingFeatures) Vector() []float64 {
	return []float64{
		h.MedInc,
		h.HouseAge,
		h.AveRooms,
		h.AveBedrooms,
		h.Population,
		h.AveOccup,
		h.Latitude,
		h.Longitude,
	}
}

// FeaturesFromVector is the inverse of Vector.
func FeaturesFromVector(vec []float64) (HousingFeatures, error) {
	if len(vec) != FeatureCount {
		return HousingFeatures{}, fmt.Errorf("feature vector must have %d values, got %d", FeatureCount, len(vec))
	}
	return HousingFeatures{
		MedInc:      vec[0],
		HouseAge:    vec[1],
		AveRooms:    vec[2],
		AveBedrooms: vec[3],
		Population:  vec[4],
		AveOccup:    vec[5],
		Latitude:    vec[6],
		Longitude:   vec[7],
	}, nil
}

// FeatureIndex returns the position of name in FeatureOrder.
func FeatureIndex(name string) (int, bool) {
	for i, feature := range FeatureOrder {
		if feature == name {
			return i, true
		}
	}
	return -1, false
}
