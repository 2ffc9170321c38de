package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"homeval/db"
	"homeval/ml"
	"homeval/monitoring"
	"homeval/predict"
)

// defaultCurvePoints is used when a curve request omits num_points.
const defaultCurvePoints = 20

var (
	engine       *predict.Engine
	modelMetrics ml.Metrics
	hub          *monitoring.Hub
	logger       = zap.NewNop()

	// Swappable for tests and for running without a database.
	savePrediction   = db.SavePrediction
	getPrediction    = db.GetPrediction
	queryPredictions = db.QueryRecentPredictions
	historyEnabled   = false
)

func SetEngine(e *predict.Engine) {
	engine = e
}

func SetModelMetrics(m ml.Metrics) {
	modelMetrics = m
}

func SetHub(h *monitoring.Hub) {
	hub = h
}

func SetLogger(l *zap.Logger) {
	logger = l
}

// EnableHistory turns on prediction persistence and the history endpoints'
// backing store. Off by default so handler tests need no database.
func EnableHistory(enabled bool) {
	historyEnabled = enabled
}

func RegisterHandlers(mux *http.ServeMux, staticDir string) {
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /predict_price", handlePredictPrice)
	mux.HandleFunc("POST /feature_curve", handleFeatureCurve)
	mux.HandleFunc("GET /api/features", handleFeatures)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
	mux.HandleFunc("GET /api/predictions/{id}", handlePredictionByID)
	mux.HandleFunc("GET /api/ws/predictions", handlePredictionStream)
	mux.HandleFunc("GET /{$}", handleIndex)

	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status":        "ok",
		"model_metrics": modelMetrics,
	})
}

type predictionResponse struct {
	PredictedPrice          float64            `json:"predicted_price"`
	PredictedPriceFormatted string             `json:"predicted_price_formatted"`
	Details                 map[string]float64 `json:"details"`
}

func handlePredictPrice(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	var features ml.HousingFeatures
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	pred, err := engine.Predict(features)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if historyEnabled {
		if _, err := savePrediction(features, pred.YUnit, pred.PredictedPrice); err != nil {
			// History is best-effort; the prediction itself already succeeded.
			logger.Error("save prediction", zap.Error(err))
		}
	}
	if hub != nil {
		hub.Publish(monitoring.PredictionEvent, map[string]interface{}{
			"features":        features,
			"predicted_price": pred.PredictedPrice,
			"y_100k":          pred.YUnit,
		})
	}

	respondJSON(w, predictionResponse{
		PredictedPrice:          pred.PredictedPrice,
		PredictedPriceFormatted: pred.Formatted,
		Details:                 map[string]float64{"y_100k": pred.YUnit},
	})
}

type featureCurveRequest struct {
	FeatureName string             `json:"feature_name"`
	Base        ml.HousingFeatures `json:"base"`
	MinValue    float64            `json:"min_value"`
	MaxValue    float64            `json:"max_value"`
	NumPoints   *int               `json:"num_points"`
}

func handleFeatureCurve(w http.ResponseWriter, r *http.Request) {
	if engine == nil {
		respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	var req featureCurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	numPoints := defaultCurvePoints
	if req.NumPoints != nil {
		numPoints = *req.NumPoints
	}

	result, err := engine.Sweep(predict.CurveRequest{
		FeatureName: req.FeatureName,
		Base:        req.Base,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		NumPoints:   numPoints,
	})
	if err != nil {
		if errors.Is(err, predict.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if hub != nil {
		hub.Publish(monitoring.CurveEvent, map[string]interface{}{
			"feature_name": result.FeatureName,
			"num_points":   len(result.XValues),
		})
	}

	respondJSON(w, result)
}

func handleFeatures(w http.ResponseWriter, r *http.Request) {
	descriptions := map[string]string{
		"med_inc":      "median district income, in tens of thousands of dollars",
		"house_age":    "median house age in the district",
		"ave_rooms":    "average rooms per household",
		"ave_bedrooms": "average bedrooms per household",
		"population":   "district population",
		"ave_occup":    "average household occupancy",
		"latitude":     "district latitude",
		"longitude":    "district longitude",
	}

	features := make([]map[string]string, 0, len(ml.FeatureOrder))
	for _, name := range ml.FeatureOrder {
		features = append(features, map[string]string{
			"name":        name,
			"description": descriptions[name],
		})
	}

	respondJSON(w, map[string]interface{}{
		"feature_order": ml.FeatureOrder,
		"features":      features,
	})
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	if !historyEnabled {
		respondError(w, http.StatusServiceUnavailable, "prediction history is disabled")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	records, err := queryPredictions(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func handlePredictionByID(w http.ResponseWriter, r *http.Request) {
	if !historyEnabled {
		respondError(w, http.StatusServiceUnavailable, "prediction history is disabled")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	record, err := getPrediction(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "prediction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, record)
}

func handlePredictionStream(w http.ResponseWriter, r *http.Request) {
	if hub == nil {
		respondError(w, http.StatusServiceUnavailable, "event stream is disabled")
		return
	}
	hub.HandleWebSocket(w, r)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"service": "homeval",
		"endpoints": []string{
			"GET /health",
			"POST /predict_price",
			"POST /feature_curve",
			"GET /api/features",
			"GET /api/predictions",
			"GET /api/predictions/{id}",
			"GET /api/ws/predictions",
		},
	})
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
