package ml

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewPipelineModel_MissingArtifact(t *testing.T) {
	t.Parallel()

	// A missing artifact is a broken deployment: fail fast, before any
	// interpreter lookup.
	_, err := NewPipelineModel(filepath.Join(t.TempDir(), "missing.pkl"), 5*time.Second)
	if err == nil {
		t.Fatal("expected error for missing model artifact")
	}
}
