// Package api exposes the transaction risk engine over HTTP: single and
// batch prediction, model information, a health probe, and Prometheus
// metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/predict"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/storage"
)

// RequestMetrics defines the metrics methods the server needs; nil is
// allowed.
type RequestMetrics interface {
	RequestInc(endpoint string)
	ValidationErrorsInc()
	FraudFlaggedInc()
}

// Server serves the prediction API.
type Server struct {
	engine  *predict.Engine
	store   *storage.Store // optional prediction history
	metrics RequestMetrics
	server  *http.Server
}

// PredictionResponse is the caller-facing result for one transaction.
type PredictionResponse struct {
	Status           string              `json:"status"`
	Prediction       int                 `json:"prediction"`
	Probability      float64             `json:"probability"`
	Explanation      predict.Explanation `json:"explanation"`
	ProcessingTimeMs float64             `json:"processing_time_ms"`
}

// BatchRequest wraps a list of transactions for batch scoring.
type BatchRequest struct {
	Transactions []map[string]any `json:"transactions"`
}

// BatchResponse is the caller-facing result for a batch.
type BatchResponse struct {
	Status           string               `json:"status"`
	Predictions      []PredictionResponse `json:"predictions"`
	ProcessingTimeMs float64              `json:"processing_time_ms"`
}

// ModelInfoResponse describes the loaded model.
type ModelInfoResponse struct {
	Status    string             `json:"status"`
	ModelInfo map[string]string  `json:"model_info"`
	Features  []string           `json:"features"`
	Metrics   map[string]float64 `json:"metrics"`
}

type errorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// NewServer creates the API server on the given port. The store and
// metrics are optional.
func NewServer(engine *predict.Engine, store *storage.Store, metrics RequestMetrics, port int) *Server {
	s := &Server{engine: engine, store: store, metrics: metrics}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/predict/batch", s.handlePredictBatch).Methods(http.MethodPost)
	r.HandleFunc("/model/info", s.handleModelInfo).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting risk API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.countRequest("health")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "transaction risk intelligence API is running",
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	s.countRequest("predict")

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, &predict.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}

	resp, err := s.predictOne(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	s.countRequest("predict_batch")
	start := time.Now()

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &predict.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}
	if len(req.Transactions) == 0 {
		s.writeError(w, &predict.ValidationError{Field: "transactions", Msg: "batch cannot be empty"})
		return
	}

	for _, raw := range req.Transactions {
		if err := predict.Validate(raw); err != nil {
			s.writeError(w, err)
			return
		}
	}

	// One engine call for the whole batch: rolling aggregates are defined
	// over the batch, not per record.
	results, err := s.engine.Predict(req.Transactions...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	predictions := make([]PredictionResponse, len(results))
	for i, res := range results {
		predictions[i] = toResponse(res)
		s.persist(res)
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Status:           "success",
		Predictions:      predictions,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	s.countRequest("model_info")

	md, err := s.engine.Metadata()
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ModelInfoResponse{
		Status: "success",
		ModelInfo: map[string]string{
			"model_type":    orUnknown(md.ModelType),
			"model_version": md.Version(),
			"training_date": orUnknown(md.TrainingDate),
		},
		Features: md.Features,
		Metrics:  md.ModelMetrics,
	})
}

func (s *Server) predictOne(raw map[string]any) (*PredictionResponse, error) {
	if err := predict.Validate(raw); err != nil {
		return nil, err
	}

	results, err := s.engine.Predict(raw)
	if err != nil {
		return nil, err
	}

	res := results[0]
	s.persist(res)

	resp := toResponse(res)
	return &resp, nil
}

func toResponse(res predict.Result) PredictionResponse {
	return PredictionResponse{
		Status:           "success",
		Prediction:       res.Prediction,
		Probability:      res.Probability,
		Explanation:      res.Explanation,
		ProcessingTimeMs: res.ProcessingTimeMs,
	}
}

// persist stores a scored transaction for the dashboard's trend views.
// History is best-effort; a storage failure never fails the prediction.
func (s *Server) persist(res predict.Result) {
	if res.Prediction == 1 && s.metrics != nil {
		s.metrics.FraudFlaggedInc()
	}
	if s.store == nil {
		return
	}
	err := s.store.StorePrediction(storage.PredictionRecord{
		ID:           res.ID,
		CustomerID:   res.CustomerID,
		Amount:       res.Amount,
		RiskScore:    res.Probability,
		RiskLevel:    res.Explanation.RiskLevel,
		IsFraudulent: res.Explanation.IsFraudulent,
		ModelVersion: res.Explanation.ModelVersion,
		Timestamp:    time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("prediction_id", res.ID).Msg("failed to persist prediction history")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		valErr  *predict.ValidationError
		cfgErr  *predict.ConfigError
		predErr *predict.PredictionError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		if s.metrics != nil {
			s.metrics.ValidationErrorsInc()
		}
	case errors.As(err, &cfgErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &predErr):
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Status: "error", Detail: err.Error()})
}

func (s *Server) countRequest(endpoint string) {
	if s.metrics != nil {
		s.metrics.RequestInc(endpoint)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
