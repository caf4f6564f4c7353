// Package ml wraps the pre-trained fraud classifier as a narrow scoring
// capability. The persisted artifact is a scikit-learn pipeline; it is
// scored through an embedded Python bridge so the Go core stays decoupled
// from any serialized-model runtime. Tests substitute a deterministic
// in-process stub through the same interfaces.
package ml

// Scorer is the minimal capability the predictor needs from a model:
// probability scoring over a batch of fixed-width feature rows. The result
// has one [P(legitimate), P(fraudulent)] pair per input row.
type Scorer interface {
	PredictProba(features [][]float64) ([][]float64, error)
}

// ImportanceReporter is an optional capability: classifiers with built-in
// per-feature importances expose them for global explanation.
type ImportanceReporter interface {
	Importances() ([]float64, error)
}

// AttributionReporter is an optional capability: per-prediction attribution
// values (SHAP-style) for one transformed feature row.
type AttributionReporter interface {
	Attributions(features []float64) ([]float64, error)
}

// NameReporter is an optional capability: the preprocessing stage's own
// reported output feature names, which may rename or expand columns.
type NameReporter interface {
	OutputNames() ([]string, error)
}
