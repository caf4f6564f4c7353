// Package explain derives supporting evidence for a risk score: a global
// feature-importance ranking when the classifier exposes one, and a local
// per-prediction attribution for the dashboard path. Explanation is always
// best-effort; nothing in this package lets a failure cross its boundary.
package explain

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/features"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/ml"
)

// DefaultTopN is the number of feature-importance pairs reported when the
// caller does not ask for a specific count.
const DefaultTopN = 5

// Contribution pairs a resolved feature name with its importance or
// attribution value.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// TopFeatures ranks all features descending by the classifier's built-in
// importances and returns the top n with resolved names. It errors when the
// model exposes no importance capability; callers treat that as an explicit
// "unavailable" signal, never as a prediction failure.
func TopFeatures(scorer ml.Scorer, md *ml.Metadata, n int) ([]Contribution, error) {
	reporter, ok := scorer.(ml.ImportanceReporter)
	if !ok {
		return nil, fmt.Errorf("model exposes no importance capability")
	}

	importances, err := reporter.Importances()
	if err != nil {
		return nil, fmt.Errorf("importances unavailable: %w", err)
	}
	if len(importances) == 0 {
		return nil, fmt.Errorf("empty importance vector")
	}

	names := ResolveNames(scorer, md, len(importances))

	ranked := make([]Contribution, len(importances))
	for i, v := range importances {
		ranked[i] = Contribution{Feature: names[i], Value: v}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Value > ranked[b].Value })

	if n <= 0 {
		n = DefaultTopN
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], nil
}

// Attribute computes a local attribution for one transformed feature row.
// Any failure (unsupported model family, singular input, transform
// mismatch) degrades to an all-zero attribution vector with a warning; the
// second return value reports whether degradation happened.
func Attribute(scorer ml.Scorer, md *ml.Metadata, row []float64) ([]Contribution, bool) {
	names := ResolveNames(scorer, md, len(row))

	reporter, ok := scorer.(ml.AttributionReporter)
	if !ok {
		log.Warn().Msg("model exposes no attribution capability, returning zero attributions")
		return zeroContributions(names), true
	}

	values, err := reporter.Attributions(row)
	if err != nil {
		log.Warn().Err(err).Msg("attribution computation failed, returning zero attributions")
		return zeroContributions(names), true
	}
	if len(values) != len(row) {
		log.Warn().
			Int("attributions", len(values)).
			Int("features", len(row)).
			Msg("attribution width mismatch, returning zero attributions")
		return zeroContributions(names), true
	}

	out := make([]Contribution, len(values))
	for i, v := range values {
		out[i] = Contribution{Feature: names[i], Value: v}
	}
	return out, false
}

// ResolveNames produces exactly width feature names. Preference order:
// the preprocessing stage's own reported output names, then the metadata's
// fitted feature list, then the engineered column names, then generic
// positional names. A count mismatch at any stage discards that source;
// correctness over informativeness.
func ResolveNames(scorer ml.Scorer, md *ml.Metadata, width int) []string {
	if reporter, ok := scorer.(ml.NameReporter); ok {
		if names, err := reporter.OutputNames(); err == nil && len(names) == width {
			return names
		}
	}

	if md != nil && len(md.Features) == width {
		names := make([]string, width)
		copy(names, md.Features)
		return names
	}

	if width == features.Width {
		return features.Columns[:]
	}

	names := make([]string, width)
	for i := range names {
		names[i] = fmt.Sprintf("Feature_%d", i)
	}
	return names
}

func zeroContributions(names []string) []Contribution {
	out := make([]Contribution, len(names))
	for i, n := range names {
		out[i] = Contribution{Feature: n}
	}
	return out
}
