package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PipelineModel scores the persisted scikit-learn pipeline through a small
// Python bridge: one subprocess per call, JSON over stdin/stdout, bounded
// by a context timeout. The artifact is treated as opaque; the bridge is
// the only place that knows it is a joblib pickle.
//
// The model is read-only after load, so concurrent scoring calls are safe;
// each call runs its own subprocess.
type PipelineModel struct {
	modelPath  string
	pythonPath string
	scriptPath string
	timeout    time.Duration
}

type bridgeRequest struct {
	Features [][]float64 `json:"features,omitempty"`
	Want     []string    `json:"want"`
}

type bridgeResponse struct {
	Probabilities [][]float64 `json:"probabilities,omitempty"`
	Importances   []float64   `json:"importances,omitempty"`
	Attributions  []float64   `json:"attributions,omitempty"`
	FeatureNames  []string    `json:"feature_names,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// NewPipelineModel prepares the bridge for the artifact at modelPath.
// Unlike feature engineering, nothing here degrades: a missing artifact or
// interpreter is a broken deployment and fails fast.
func NewPipelineModel(modelPath string, timeout time.Duration) (*PipelineModel, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model artifact not readable at %s: %w", modelPath, err)
	}

	pythonPath, err := findPython()
	if err != nil {
		return nil, fmt.Errorf("scoring runtime unavailable: %w", err)
	}

	scriptPath := filepath.Join(filepath.Dir(modelPath), "pipeline_bridge.py")
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		if err := writeBridgeScript(scriptPath); err != nil {
			return nil, fmt.Errorf("write bridge script: %w", err)
		}
	}

	m := &PipelineModel{
		modelPath:  modelPath,
		pythonPath: pythonPath,
		scriptPath: scriptPath,
		timeout:    timeout,
	}

	log.Info().Str("model_path", modelPath).Str("python_path", pythonPath).Msg("pipeline model loaded")
	return m, nil
}

// PredictProba scores a batch of feature rows, returning one
// [P(legitimate), P(fraudulent)] pair per row.
func (m *PipelineModel) PredictProba(features [][]float64) ([][]float64, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("empty feature matrix")
	}
	for i, row := range features {
		for j, v := range row {
			if v != v {
				return nil, fmt.Errorf("feature [%d][%d] is NaN", i, j)
			}
		}
	}

	resp, err := m.invoke(bridgeRequest{Features: features, Want: []string{"proba"}})
	if err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != len(features) {
		return nil, fmt.Errorf("expected %d probability rows, got %d", len(features), len(resp.Probabilities))
	}
	for i, p := range resp.Probabilities {
		if len(p) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 class probabilities, got %d", i, len(p))
		}
		if p[1] < 0 || p[1] > 1 || p[1] != p[1] {
			return nil, fmt.Errorf("row %d: invalid probability %f", i, p[1])
		}
	}
	return resp.Probabilities, nil
}

// Importances returns the classifier's built-in per-feature importances.
func (m *PipelineModel) Importances() ([]float64, error) {
	resp, err := m.invoke(bridgeRequest{Want: []string{"importances"}})
	if err != nil {
		return nil, err
	}
	if len(resp.Importances) == 0 {
		return nil, fmt.Errorf("model exposes no feature importances")
	}
	return resp.Importances, nil
}

// Attributions returns per-prediction attribution values for one
// transformed feature row, using a tree attribution method where the model
// family supports it.
func (m *PipelineModel) Attributions(features []float64) ([]float64, error) {
	resp, err := m.invoke(bridgeRequest{Features: [][]float64{features}, Want: []string{"attributions"}})
	if err != nil {
		return nil, err
	}
	if len(resp.Attributions) == 0 {
		return nil, fmt.Errorf("attribution computation returned nothing")
	}
	return resp.Attributions, nil
}

// OutputNames returns the preprocessing stage's reported output feature
// names.
func (m *PipelineModel) OutputNames() ([]string, error) {
	resp, err := m.invoke(bridgeRequest{Want: []string{"names"}})
	if err != nil {
		return nil, err
	}
	if len(resp.FeatureNames) == 0 {
		return nil, fmt.Errorf("preprocessor reports no output names")
	}
	return resp.FeatureNames, nil
}

func (m *PipelineModel) invoke(req bridgeRequest) (*bridgeResponse, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal bridge request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.pythonPath, m.scriptPath, m.modelPath)
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().
			Err(err).
			Str("model_path", m.modelPath).
			Str("stderr", stderr.String()).
			Strs("want", req.Want).
			Msg("pipeline bridge execution failed")

		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("scoring timeout after %v", m.timeout)
		}
		if strings.Contains(stderr.String(), "No module named") {
			return nil, fmt.Errorf("scoring runtime dependency missing: %w", err)
		}
		if strings.Contains(stderr.String(), "No such file or directory") {
			return nil, fmt.Errorf("model artifact not accessible: %w", err)
		}
		return nil, fmt.Errorf("pipeline bridge failed: %w, stderr: %s", err, stderr.String())
	}

	var resp bridgeResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("parse bridge response: %w, stdout: %s", err, stdout.String())
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("pipeline bridge error: %s", resp.Error)
	}
	return &resp, nil
}

func findPython() (string, error) {
	if venvPath := os.Getenv("VIRTUAL_ENV"); venvPath != "" {
		candidates := []string{
			filepath.Join(venvPath, "bin", "python3"),
			filepath.Join(venvPath, "bin", "python"),
			filepath.Join(venvPath, "Scripts", "python.exe"),
		}
		for _, p := range candidates {
			if usablePython(p) {
				log.Info().Str("python_path", p).Msg("using virtual environment python")
				return p, nil
			}
		}
	}

	for _, candidate := range []string{"python3", "python", "python3.12", "python3.11", "python3.10"} {
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		if usablePython(path) {
			log.Info().Str("python_path", path).Msg("using system python")
			return path, nil
		}
	}

	return "", fmt.Errorf("no python 3 with joblib and scikit-learn found")
}

func usablePython(path string) bool {
	cmd := exec.Command(path, "-c", "import sys, joblib, sklearn; sys.exit(0 if sys.version_info[0] == 3 else 1)")
	return cmd.Run() == nil
}

func writeBridgeScript(scriptPath string) error {
	script := `#!/usr/bin/env python3
"""Scores the persisted fraud-detection pipeline for the Go service."""
import sys
import json
import numpy as np

try:
    import joblib
except ImportError:
    print(json.dumps({"error": "joblib not installed"}))
    sys.exit(1)

COLUMNS = [
    "amount_foreign", "is_foreign_transaction", "is_high_risk_country",
    "previous_fraud_flag", "risk_score", "rolling_std_amount",
    "rolling_mean_amount", "hours_since_last_tx", "amount_hour",
]


def main():
    if len(sys.argv) != 2:
        print(json.dumps({"error": "usage: pipeline_bridge.py <model_path>"}))
        sys.exit(1)

    try:
        model = joblib.load(sys.argv[1])
        request = json.load(sys.stdin)
        want = set(request.get("want", ["proba"]))
        response = {}

        features = request.get("features")
        X = None
        if features is not None:
            import pandas as pd
            X = pd.DataFrame(features, columns=COLUMNS)

        if "proba" in want:
            proba = model.predict_proba(X)
            response["probabilities"] = np.asarray(proba).tolist()

        classifier = model
        preprocessor = None
        if hasattr(model, "named_steps"):
            preprocessor = model.named_steps.get("preprocessor")
            classifier = model.named_steps.get("model", model)

        if "importances" in want:
            if hasattr(classifier, "feature_importances_"):
                response["importances"] = np.asarray(classifier.feature_importances_).tolist()

        if "names" in want and preprocessor is not None:
            if hasattr(preprocessor, "get_feature_names_out"):
                response["feature_names"] = [str(n) for n in preprocessor.get_feature_names_out()]

        if "attributions" in want:
            import shap
            Xt = preprocessor.transform(X) if preprocessor is not None else X
            explainer = shap.TreeExplainer(classifier)
            values = explainer.shap_values(np.asarray(Xt))
            if isinstance(values, list) and len(values) > 1:
                values = values[1]
            response["attributions"] = np.asarray(values).reshape(-1).tolist()

        print(json.dumps(response))
    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(1)


if __name__ == "__main__":
    main()
`

	return os.WriteFile(scriptPath, []byte(script), 0o755)
}
