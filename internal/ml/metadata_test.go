package ml

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model_metadata.json")
	writeFile(t, path, `{
		"model_type": "GradientBoostingClassifier",
		"model_version": "2.1.0",
		"training_date": "2024-06-01",
		"optimal_threshold": 0.42,
		"features": ["amount_foreign", "risk_score"],
		"model_metrics": {"roc_auc": 0.93}
	}`)

	md, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if md.Version() != "2.1.0" {
		t.Errorf("Version = %q, want 2.1.0", md.Version())
	}
	if md.Threshold(0.5) != 0.42 {
		t.Errorf("Threshold = %f, want 0.42", md.Threshold(0.5))
	}
	if md.ModelMetrics["roc_auc"] != 0.93 {
		t.Errorf("metrics = %v", md.ModelMetrics)
	}
}

func TestLoadMetadata_TimestampedFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model_metadata_20240101.json"), `{"model_version": "1.0.0"}`)
	writeFile(t, filepath.Join(dir, "model_metadata_20240601.json"), `{"model_version": "2.0.0"}`)

	// The exact file is absent; the newest timestamped sibling wins.
	md, err := LoadMetadata(filepath.Join(dir, "model_metadata.json"))
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if md.Version() != "2.0.0" {
		t.Errorf("Version = %q, want newest sibling 2.0.0", md.Version())
	}
}

func TestLoadMetadata_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := LoadMetadata(filepath.Join(dir, "model_metadata.json")); err == nil {
		t.Error("expected error for missing metadata")
	}
}

func TestMetadata_Defaults(t *testing.T) {
	t.Parallel()

	var md *Metadata
	if md.Version() != "unknown" {
		t.Errorf("nil Version = %q, want unknown", md.Version())
	}
	if md.Threshold(0.5) != 0.5 {
		t.Errorf("nil Threshold = %f, want default", md.Threshold(0.5))
	}

	md = &Metadata{}
	if md.Version() != "unknown" {
		t.Errorf("empty Version = %q, want unknown", md.Version())
	}
	if md.Threshold(0.5) != 0.5 {
		t.Errorf("empty Threshold = %f, want default", md.Threshold(0.5))
	}
}

func TestStubScorer_ProbabilityRows(t *testing.T) {
	t.Parallel()

	s := &StubScorer{Score: func(row []float64) float64 { return 0.7 }}
	proba, err := s.PredictProba([][]float64{{1}, {2}})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if len(proba) != 2 {
		t.Fatalf("got %d rows, want 2", len(proba))
	}
	for _, p := range proba {
		if len(p) != 2 {
			t.Fatalf("probability row has %d entries, want 2", len(p))
		}
		if p[0]+p[1] != 1 {
			t.Errorf("probabilities do not sum to 1: %v", p)
		}
		if p[1] != 0.7 {
			t.Errorf("fraud probability = %f, want 0.7", p[1])
		}
	}
}
