package metrics

// Wrapper adapts the Prometheus metrics to the narrow interface the
// prediction engine needs, avoiding a direct dependency on the metrics
// package from core logic.
type Wrapper struct {
	m *Metrics
}

// NewWrapper wraps the given metrics set.
func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc() {
	w.m.PredictionsTotal.Inc()
}

func (w *Wrapper) PredictionFailuresInc() {
	w.m.PredictionFailures.Inc()
	w.m.ErrorsTotal.Inc()
}

func (w *Wrapper) PredictionLatencyObserve(seconds float64) {
	w.m.PredictionLatency.Observe(seconds)
}

func (w *Wrapper) RiskScoreObserve(score float64) {
	w.m.RiskScores.Observe(score)
}

func (w *Wrapper) RiskBandInc(band string) {
	w.m.RiskBands.WithLabelValues(band).Inc()
}

func (w *Wrapper) FraudFlaggedInc() {
	w.m.FraudFlagged.Inc()
}

func (w *Wrapper) ExplanationFailuresInc() {
	w.m.ExplanationFailures.Inc()
}

func (w *Wrapper) RequestInc(endpoint string) {
	w.m.RequestsTotal.WithLabelValues(endpoint).Inc()
}

func (w *Wrapper) ValidationErrorsInc() {
	w.m.ValidationErrors.Inc()
}

func (w *Wrapper) ModelLoadFailuresInc() {
	w.m.ModelLoadFailures.Inc()
	w.m.ErrorsTotal.Inc()
}
