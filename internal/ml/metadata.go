package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Metadata describes the persisted model: version, fitted feature contract,
// decision threshold, and training metrics. It is read-only after load.
type Metadata struct {
	ModelType        string             `json:"model_type"`
	ModelVersion     string             `json:"model_version"`
	TrainingDate     string             `json:"training_date"`
	OptimalThreshold *float64           `json:"optimal_threshold,omitempty"`
	Features         []string           `json:"features"`
	ModelMetrics     map[string]float64 `json:"model_metrics"`
}

// Version returns the model version or "unknown" when the metadata did not
// carry one.
func (m *Metadata) Version() string {
	if m == nil || m.ModelVersion == "" {
		return "unknown"
	}
	return m.ModelVersion
}

// Threshold returns the fitted decision threshold, or the supplied default
// when the metadata did not record one.
func (m *Metadata) Threshold(def float64) float64 {
	if m == nil || m.OptimalThreshold == nil {
		return def
	}
	return *m.OptimalThreshold
}

// LoadMetadata reads model metadata from the given path. When the exact
// file is absent it falls back to the newest timestamp-suffixed sibling
// (model_metadata_*.json). A missing or unreadable file is fatal to the
// load path and surfaced, not swallowed.
func LoadMetadata(path string) (*Metadata, error) {
	if md, err := decodeMetadata(path); err == nil {
		return md, nil
	}

	pattern := filepath.Join(filepath.Dir(path), "model_metadata_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("model metadata not found at %s", path)
	}
	sort.Strings(matches)
	return decodeMetadata(matches[len(matches)-1])
}

func decodeMetadata(path string) (*Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var md Metadata
	if err := json.NewDecoder(file).Decode(&md); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	return &md, nil
}
