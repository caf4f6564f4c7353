package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/ml"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/predict"
)

func testServer(t *testing.T, scorer ml.Scorer, md *ml.Metadata) *Server {
	t.Helper()
	engine := predict.NewEngine(predict.Config{}, func() (ml.Scorer, *ml.Metadata, error) {
		if scorer == nil {
			return nil, nil, fmt.Errorf("model artifact missing")
		}
		return scorer, md, nil
	}, nil)
	return NewServer(engine, nil, nil, 0)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestPredictEndpoint(t *testing.T) {
	t.Parallel()

	threshold := 0.6
	scorer := &ml.StubScorer{Score: func([]float64) float64 { return 0.8 }}
	s := testServer(t, scorer, &ml.Metadata{ModelVersion: "2.1.0", OptimalThreshold: &threshold})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict", map[string]any{
		"transaction_amount": 250.0,
		"customer_id":        "CUST001",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Prediction)
	assert.Equal(t, 0.8, resp.Probability)
	assert.Equal(t, "High Risk", resp.Explanation.RiskLevel)
	assert.True(t, resp.Explanation.IsFraudulent)
	assert.Equal(t, "2.1.0", resp.Explanation.ModelVersion)
	assert.Equal(t, 0.6, resp.Explanation.ThresholdUsed)
	assert.GreaterOrEqual(t, resp.ProcessingTimeMs, 0.0)
}

func TestPredictEndpoint_ValidationErrors(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})

	tests := []struct {
		name string
		body any
	}{
		{"missing amount", map[string]any{"customer_id": "CUST001"}},
		{"null amount", map[string]any{"transaction_amount": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s.Handler(), http.MethodPost, "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
			assert.NotEmpty(t, resp["detail"])
		})
	}
}

func TestPredictEndpoint_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictEndpoint_ModelUnavailable(t *testing.T) {
	t.Parallel()

	s := testServer(t, nil, nil)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict", map[string]any{
		"transaction_amount": 100.0,
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPredictEndpoint_ScoringFailure(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{FailScoring: true}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict", map[string]any{
		"transaction_amount": 100.0,
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBatchEndpoint(t *testing.T) {
	t.Parallel()

	scorer := &ml.StubScorer{Score: func([]float64) float64 { return 0.2 }}
	s := testServer(t, scorer, &ml.Metadata{})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict/batch", BatchRequest{
		Transactions: []map[string]any{
			{"transaction_amount": 100.0, "customer_id": "A", "transaction_time": "2024-01-01T10:00:00Z"},
			{"transaction_amount": 200.0, "customer_id": "A", "transaction_time": "2024-01-02T10:00:00Z"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Predictions, 2)
	for _, p := range resp.Predictions {
		assert.Equal(t, 0, p.Prediction)
		assert.Equal(t, "Low Risk", p.Explanation.RiskLevel)
	}
}

func TestBatchEndpoint_EmptyBatch(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict/batch", BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEndpoint_OneInvalidRowFailsWholeBatch(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/predict/batch", BatchRequest{
		Transactions: []map[string]any{
			{"transaction_amount": 100.0},
			{"customer_id": "no-amount"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelInfoEndpoint(t *testing.T) {
	t.Parallel()

	md := &ml.Metadata{
		ModelType:    "GradientBoostingClassifier",
		ModelVersion: "2.1.0",
		TrainingDate: "2024-06-01",
		Features:     []string{"amount_foreign", "risk_score"},
		ModelMetrics: map[string]float64{"roc_auc": 0.93},
	}
	s := testServer(t, &ml.StubScorer{}, md)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/model/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ModelInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "GradientBoostingClassifier", resp.ModelInfo["model_type"])
	assert.Equal(t, "2.1.0", resp.ModelInfo["model_version"])
	assert.Equal(t, "2024-06-01", resp.ModelInfo["training_date"])
	assert.Equal(t, []string{"amount_foreign", "risk_score"}, resp.Features)
	assert.Equal(t, 0.93, resp.Metrics["roc_auc"])
}

func TestModelInfoEndpoint_UnknownDefaults(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/model/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ModelInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown", resp.ModelInfo["model_type"])
	assert.Equal(t, "unknown", resp.ModelInfo["model_version"])
}

func TestModelInfoEndpoint_ModelUnavailable(t *testing.T) {
	t.Parallel()

	s := testServer(t, nil, nil)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/model/info", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodRouting(t *testing.T) {
	t.Parallel()

	s := testServer(t, &ml.StubScorer{}, &ml.Metadata{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/predict", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
