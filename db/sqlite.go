package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"homeval/ml"
)

var database *sql.DB

// recentCache fronts by-id lookups; the dashboard polls the same handful of
// fresh predictions repeatedly.
var recentCache *lru.Cache[int64, PredictionRecord]

const cacheSize = 512

// maxQueryLimit caps history queries; the limit comes straight from an
// unauthenticated query parameter and sizes an allocation.
const maxQueryLimit = 500

// ErrNotFound is returned when a prediction id does not exist.
var ErrNotFound = errors.New("prediction not found")

// PredictionRecord is one served prediction, kept for history queries.
type PredictionRecord struct {
	ID             int64              `json:"id"`
	Features       ml.HousingFeatures `json:"features"`
	YUnit          float64            `json:"y_unit"`
	PredictedPrice float64            `json:"predicted_price"`
	CreatedAt      time.Time          `json:"created_at"`
}

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	recentCache, err = lru.New[int64, PredictionRecord](cacheSize)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        features TEXT,
        y_unit REAL,
        predicted_price REAL,
        created_at DATETIME
    );`
	_, err = database.Exec(query)
	return err
}

// Close closes the database.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// SavePrediction appends a prediction to the history and returns its id.
func SavePrediction(features ml.HousingFeatures, yUnit, predictedPrice float64) (int64, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return 0, err
	}

	createdAt := time.Now().UTC()
	result, err := database.Exec(
		`INSERT INTO predictions (features, y_unit, predicted_price, created_at) VALUES (?, ?, ?, ?)`,
		string(payload), yUnit, predictedPrice, createdAt,
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	recentCache.Add(id, PredictionRecord{
		ID:             id,
		Features:       features,
		YUnit:          yUnit,
		PredictedPrice: predictedPrice,
		CreatedAt:      createdAt,
	})
	return id, nil
}

// GetPrediction returns one prediction by id, preferring the cache.
func GetPrediction(id int64) (PredictionRecord, error) {
	if record, ok := recentCache.Get(id); ok {
		return record, nil
	}

	row := database.QueryRow(
		`SELECT id, features, y_unit, predicted_price, created_at FROM predictions WHERE id = ?`, id)

	record, err := scanPrediction(row)
	if err == sql.ErrNoRows {
		return PredictionRecord{}, ErrNotFound
	}
	if err != nil {
		return PredictionRecord{}, err
	}

	recentCache.Add(record.ID, record)
	return record, nil
}

// QueryRecentPredictions returns the newest predictions, most recent first.
// The limit is clamped to maxQueryLimit.
func QueryRecentPredictions(limit int) ([]PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := database.Query(
		`SELECT id, features, y_unit, predicted_price, created_at FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0, limit)
	for rows.Next() {
		record, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (PredictionRecord, error) {
	var record PredictionRecord
	var featuresJSON string
	if err := row.Scan(&record.ID, &featuresJSON, &record.YUnit, &record.PredictedPrice, &record.CreatedAt); err != nil {
		return PredictionRecord{}, err
	}
	if err := json.Unmarshal([]byte(featuresJSON), &record.Features); err != nil {
		return PredictionRecord{}, err
	}
	return record, nil
}
