package db

import (
	"errors"
	"testing"

	"homeval/ml"
)

func setupDB(t *testing.T) {
	t.Helper()

	if err := InitDB(":memory:"); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func sample() ml.HousingFeatures {
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

func TestSaveAndGetPrediction(t *testing.T) {
	setupDB(t)

	id, err := SavePrediction(sample(), 2.5, 250000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	record, err := GetPrediction(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.PredictedPrice != 250000 || record.YUnit != 2.5 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Features != sample() {
		t.Fatalf("features not round-tripped: %+v", record.Features)
	}
}

func TestGetPredictionBypassingCache(t *testing.T) {
	setupDB(t)

	id, err := SavePrediction(sample(), 1.2, 120000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Force the next read through SQLite.
	recentCache.Remove(id)

	record, err := GetPrediction(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.YUnit != 1.2 {
		t.Fatalf("unexpected record from db: %+v", record)
	}
}

func TestGetPredictionNotFound(t *testing.T) {
	setupDB(t)

	if _, err := GetPrediction(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryRecentPredictionsOrder(t *testing.T) {
	setupDB(t)

	for i := 0; i < 5; i++ {
		if _, err := SavePrediction(sample(), float64(i), float64(i)*100000); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	records, err := QueryRecentPredictions(3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Most recent first.
	if records[0].YUnit != 4 || records[2].YUnit != 2 {
		t.Fatalf("unexpected order: %+v", records)
	}
}

func TestQueryRecentPredictionsClampsHugeLimit(t *testing.T) {
	setupDB(t)

	if _, err := SavePrediction(sample(), 1.0, 100000); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The limit comes from an unauthenticated query parameter; an absurd
	// value must not size an allocation.
	records, err := QueryRecentPredictions(1 << 40)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}
