// Package predict turns raw transactions into fraud risk decisions. It
// owns the process-wide model handle (lazily loaded, read-only after
// load), applies the threshold and risk-band policy, and attaches
// best-effort explanations.
package predict

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/explain"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/features"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/ml"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/txn"
)

// Risk band labels, for human communication only. The operational fraud
// decision uses the model threshold and is independent of banding.
const (
	BandLow    = "Low Risk"
	BandMedium = "Medium Risk"
	BandHigh   = "High Risk"
)

// DefaultThreshold is the decision cut point when the model metadata does
// not carry a fitted optimal_threshold.
const DefaultThreshold = 0.5

// MetricsInterface defines the metrics methods the engine needs.
type MetricsInterface interface {
	PredictionsInc()
	PredictionFailuresInc()
	PredictionLatencyObserve(float64)
	RiskScoreObserve(float64)
	RiskBandInc(band string)
	ExplanationFailuresInc()
}

// Loader produces the model capability and its metadata. The engine calls
// it at most once per successful load; a failed load is retried on the
// next prediction.
type Loader func() (ml.Scorer, *ml.Metadata, error)

// Config carries the threshold policy knobs.
type Config struct {
	LowRiskCut  float64 // band cut point, default 0.3
	HighRiskCut float64 // band cut point, default 0.7
	TopFeatures int     // importance pairs per explanation, default 5
}

// Explanation is the per-prediction evidence payload.
type Explanation struct {
	RiskScore     float64                `json:"risk_score"`
	RiskLevel     string                 `json:"risk_level"`
	IsFraudulent  bool                   `json:"is_fraudulent"`
	Confidence    float64                `json:"confidence"`
	ModelVersion  string                 `json:"model_version"`
	ThresholdUsed float64                `json:"threshold_used"`
	Timestamp     string                 `json:"timestamp"`
	TopFeatures   []explain.Contribution `json:"top_features,omitempty"`
}

// Result is one scored transaction. Created fresh per call; no persisted
// lifecycle.
type Result struct {
	ID               string            `json:"id"`
	Prediction       int               `json:"prediction"`
	Probability      float64           `json:"probability"`
	Explanation      Explanation       `json:"explanation"`
	ProcessingTimeMs float64           `json:"processing_time_ms"`
	CustomerID       string            `json:"customer_id,omitempty"`
	Amount           float64           `json:"amount"`
	Degradations     []txn.Degradation `json:"degradations,omitempty"`

	// FeatureRow is the engineered row behind this result, kept for the
	// dashboard's attribution path.
	FeatureRow features.Vector `json:"-"`
}

// Engine scores transactions against the lazily loaded model.
type Engine struct {
	cfg     Config
	loader  Loader
	metrics MetricsInterface

	mu       sync.Mutex
	scorer   ml.Scorer
	metadata *ml.Metadata
}

// NewEngine creates an engine. The model is not loaded until the first
// prediction (or an explicit Warm call); metrics may be nil.
func NewEngine(cfg Config, loader Loader, metrics MetricsInterface) *Engine {
	if cfg.LowRiskCut == 0 {
		cfg.LowRiskCut = 0.3
	}
	if cfg.HighRiskCut == 0 {
		cfg.HighRiskCut = 0.7
	}
	if cfg.TopFeatures == 0 {
		cfg.TopFeatures = explain.DefaultTopN
	}
	return &Engine{cfg: cfg, loader: loader, metrics: metrics}
}

// Warm eagerly loads the model so a broken deployment fails at startup
// instead of on the first request.
func (e *Engine) Warm() error {
	_, _, err := e.model()
	return err
}

// model returns the process-wide model handle, loading it on first use.
// The handle is immutable after a successful load, so the lock only guards
// initialization.
func (e *Engine) model() (ml.Scorer, *ml.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scorer != nil {
		return e.scorer, e.metadata, nil
	}

	scorer, metadata, err := e.loader()
	if err != nil {
		log.Error().Err(err).Msg("model load failed")
		return nil, nil, &ConfigError{Err: err}
	}

	e.scorer = scorer
	e.metadata = metadata
	log.Info().Str("model_version", metadata.Version()).Msg("model loaded")
	return e.scorer, e.metadata, nil
}

// Metadata returns the loaded model metadata, loading the model first if
// needed.
func (e *Engine) Metadata() (*ml.Metadata, error) {
	_, md, err := e.model()
	return md, err
}

// Scorer returns the loaded model capability for callers that need the
// richer explanation path.
func (e *Engine) Scorer() (ml.Scorer, error) {
	s, _, err := e.model()
	return s, err
}

// Validate checks caller-facing required fields. The transaction amount is
// mandatory; the legacy alias satisfies it.
func Validate(raw map[string]any) error {
	if v, ok := raw[txn.FieldAmount]; ok && v != nil {
		return nil
	}
	if v, ok := raw[txn.FieldAmountOld]; ok && v != nil {
		return nil
	}
	return &ValidationError{Field: txn.FieldAmount, Msg: "transaction amount is required"}
}

// Predict scores one or more raw transactions as a single batch. The whole
// batch is engineered at once so per-customer rolling aggregates see every
// row; results come back in input order.
func (e *Engine) Predict(raw ...map[string]any) ([]Result, error) {
	start := time.Now()

	scorer, metadata, err := e.model()
	if err != nil {
		return nil, err
	}

	records, batch := txn.CanonicalizeBatch(raw)
	matrix := features.Engineer(records, batch)

	proba, err := scorer.PredictProba(matrix.Rows())
	if err != nil {
		if e.metrics != nil {
			e.metrics.PredictionFailuresInc()
		}
		log.Error().Err(err).Int("rows", matrix.Len()).Msg("scoring call failed")
		return nil, &PredictionError{Err: err}
	}

	threshold := metadata.Threshold(DefaultThreshold)
	topFeatures := e.topFeatures(scorer, metadata)

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	now := time.Now().Format(time.RFC3339)

	results := make([]Result, len(records))
	for i, rec := range records {
		score := proba[i][1]
		fraudulent := score >= threshold

		res := Result{
			ID:               uuid.NewString(),
			Probability:      score,
			ProcessingTimeMs: elapsed,
			CustomerID:       rec.CustomerID,
			Amount:           rec.Amount,
			Degradations:     rec.Degradations,
			FeatureRow:       matrix.Row(i),
			Explanation: Explanation{
				RiskScore:     score,
				RiskLevel:     Band(score, e.cfg.LowRiskCut, e.cfg.HighRiskCut),
				IsFraudulent:  fraudulent,
				Confidence:    confidence(score),
				ModelVersion:  metadata.Version(),
				ThresholdUsed: threshold,
				Timestamp:     now,
				TopFeatures:   topFeatures,
			},
		}
		if fraudulent {
			res.Prediction = 1
		}
		results[i] = res

		if e.metrics != nil {
			e.metrics.PredictionsInc()
			e.metrics.RiskScoreObserve(score)
			e.metrics.RiskBandInc(res.Explanation.RiskLevel)
		}
	}

	if e.metrics != nil {
		e.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
	}

	return results, nil
}

// topFeatures asks the explainer for the global importance ranking.
// Best-effort: on any failure the field is omitted and the prediction
// continues.
func (e *Engine) topFeatures(scorer ml.Scorer, metadata *ml.Metadata) []explain.Contribution {
	top, err := explain.TopFeatures(scorer, metadata, e.cfg.TopFeatures)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ExplanationFailuresInc()
		}
		log.Warn().Err(err).Msg("feature importance unavailable, omitting from explanation")
		return nil
	}
	return top
}

// Band maps a risk score to its communication band using the two cut
// points. Bands are deliberately independent of the fraud threshold.
func Band(score, lowCut, highCut float64) string {
	switch {
	case score < lowCut:
		return BandLow
	case score < highCut:
		return BandMedium
	default:
		return BandHigh
	}
}

// confidence is reported regardless of decision direction.
func confidence(score float64) float64 {
	if score >= 0.5 {
		return score
	}
	return 1 - score
}
