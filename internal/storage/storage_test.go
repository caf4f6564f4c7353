package storage

import (
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(id, customer string, score float64, ts time.Time) PredictionRecord {
	return PredictionRecord{
		ID:           id,
		CustomerID:   customer,
		Amount:       100,
		RiskScore:    score,
		RiskLevel:    "Low Risk",
		ModelVersion: "2.1.0",
		Timestamp:    ts,
	}
}

func TestStoreAndRetrievePredictions(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := record(fmt.Sprintf("id-%d", i), "CUST001", 0.1*float64(i), base.Add(time.Duration(i)*time.Hour))
		if err := store.StorePrediction(rec); err != nil {
			t.Fatalf("StorePrediction failed: %v", err)
		}
	}

	records, err := store.GetPredictionsInRange(base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetPredictionsInRange failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records in range, want 3", len(records))
	}
	// Chronological order.
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Error("range results out of chronological order")
		}
	}
}

func TestGetRecentPredictions(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		rec := record(fmt.Sprintf("id-%d", i), "CUST001", 0.5, base.Add(time.Duration(i)*time.Minute))
		if err := store.StorePrediction(rec); err != nil {
			t.Fatalf("StorePrediction failed: %v", err)
		}
	}

	records, err := store.GetRecentPredictions(3)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].ID != "id-9" {
		t.Errorf("first record = %s, want newest id-9", records[0].ID)
	}
	if records[2].ID != "id-7" {
		t.Errorf("last record = %s, want id-7", records[2].ID)
	}
}

func TestGetRecentPredictions_DefaultLimit(t *testing.T) {
	store := newTestStore(t)
	if err := store.StorePrediction(record("only", "A", 0.1, time.Now())); err != nil {
		t.Fatalf("StorePrediction failed: %v", err)
	}

	records, err := store.GetRecentPredictions(0)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestCustomerHistory(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	store.StorePrediction(record("a1", "CUST_A", 0.1, now))
	store.StorePrediction(record("b1", "CUST_B", 0.2, now.Add(time.Minute)))
	store.StorePrediction(record("a2", "CUST_A", 0.3, now.Add(2*time.Minute)))

	records, err := store.CustomerHistory("CUST_A")
	if err != nil {
		t.Fatalf("CustomerHistory failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.CustomerID != "CUST_A" {
			t.Errorf("unexpected customer %s in history", rec.CustomerID)
		}
	}
}

func TestKeysCollisionFree(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Same timestamp, different IDs: both must survive.
	store.StorePrediction(record("first", "A", 0.1, ts))
	store.StorePrediction(record("second", "A", 0.2, ts))

	records, err := store.GetRecentPredictions(10)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2 despite identical timestamps", len(records))
	}
}
