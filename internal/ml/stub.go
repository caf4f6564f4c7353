package ml

import "fmt"

// StubScorer is a deterministic in-process model used in tests and local
// development. Scores come from a fixed per-row function so assertions are
// exact; the optional capabilities can be disabled or forced to fail to
// exercise degradation paths.
type StubScorer struct {
	// Score computes the fraudulent-class probability for one feature
	// row. When nil, a fixed 0.5 is returned.
	Score func(row []float64) float64

	// ImportanceValues are returned by Importances when non-empty.
	ImportanceValues []float64

	// Names are returned by OutputNames when non-empty.
	Names []string

	// FailImportances / FailAttributions force the optional capabilities
	// to error, for explanation-degradation tests.
	FailImportances  bool
	FailAttributions bool

	// FailScoring forces PredictProba to error.
	FailScoring bool
}

func (s *StubScorer) PredictProba(features [][]float64) ([][]float64, error) {
	if s.FailScoring {
		return nil, fmt.Errorf("stub scoring failure")
	}
	out := make([][]float64, len(features))
	for i, row := range features {
		p := 0.5
		if s.Score != nil {
			p = s.Score(row)
		}
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (s *StubScorer) Importances() ([]float64, error) {
	if s.FailImportances {
		return nil, fmt.Errorf("stub importance failure")
	}
	if len(s.ImportanceValues) == 0 {
		return nil, fmt.Errorf("no importances configured")
	}
	return s.ImportanceValues, nil
}

func (s *StubScorer) Attributions(features []float64) ([]float64, error) {
	if s.FailAttributions {
		return nil, fmt.Errorf("stub attribution failure")
	}
	out := make([]float64, len(features))
	copy(out, features)
	return out, nil
}

func (s *StubScorer) OutputNames() ([]string, error) {
	if len(s.Names) == 0 {
		return nil, fmt.Errorf("no names configured")
	}
	return s.Names, nil
}
