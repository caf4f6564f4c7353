// Package features builds the fixed 9-column numeric feature matrix the
// fraud classifier was fitted against. The transformation is deterministic
// over a batch: per-customer rolling aggregates are defined over the whole
// batch sorted by (customer, time), so batch semantics are not equivalent
// to N independent single-record calls.
package features

import (
	"math"
	"sort"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/txn"
)

// Width is the number of feature columns the model expects.
const Width = 9

// Columns lists the feature columns in the exact order the model was
// fitted with. Any mismatch is a hard failure at scoring time, not here.
var Columns = [Width]string{
	"amount_foreign",
	"is_foreign_transaction",
	"is_high_risk_country",
	"previous_fraud_flag",
	"risk_score",
	"rolling_std_amount",
	"rolling_mean_amount",
	"hours_since_last_tx",
	"amount_hour",
}

// Indexes into a feature row, matching Columns.
const (
	ColAmountForeign = iota
	ColForeign
	ColHighRisk
	ColPrevFraud
	ColRiskScore
	ColRollingStd
	ColRollingMean
	ColHoursSinceLast
	ColAmountHour
)

// rollingWindow is the trailing observation count for per-customer
// aggregates, inclusive of the current row.
const rollingWindow = 5

// defaultHour is used for every row when the batch has no timestamp column
// at all. Rows with a missing or unparseable time inside a batch that does
// have the column fall through to the null-fill (hour 0) instead.
const defaultHour = 12

// Vector is one feature row in fixed column order.
type Vector [Width]float64

// Matrix is the engineered feature matrix, one row per input record, in
// input order.
type Matrix struct {
	rows []Vector
}

// Len returns the number of feature rows.
func (m *Matrix) Len() int { return len(m.rows) }

// Row returns the i-th feature row.
func (m *Matrix) Row(i int) Vector { return m.rows[i] }

// Rows returns the matrix as a [][]float64 suitable for the scoring
// capability. The result is a copy; the matrix is not aliased.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, len(m.rows))
	for i, r := range m.rows {
		row := make([]float64, Width)
		copy(row, r[:])
		out[i] = row
	}
	return out
}

// Engineer transforms canonicalized records into the feature matrix. It
// never fails: every per-row anomaly resolves to a numeric-zero or identity
// fallback. Input records are not mutated.
func Engineer(records []txn.Record, batch txn.BatchInfo) *Matrix {
	n := len(records)
	m := &Matrix{rows: make([]Vector, n)}
	if n == 0 {
		return m
	}

	hours := resolveHours(records, batch)

	for i, rec := range records {
		row := &m.rows[i]
		row[ColForeign] = rec.Foreign
		row[ColHighRisk] = rec.HighRisk
		row[ColPrevFraud] = rec.PrevFraud
		row[ColAmountForeign] = rec.Amount * rec.Foreign
		row[ColAmountHour] = rec.Amount * hours[i]
		row[ColRiskScore] = resolveRiskScore(rec, batch)
	}

	if batch.HasCustomer && batch.HasTime {
		applyCustomerAggregates(records, m)
	} else {
		// No aggregation key: hours gap 0, mean is the identity, std 0.
		for i, rec := range records {
			m.rows[i][ColHoursSinceLast] = 0
			m.rows[i][ColRollingMean] = rec.Amount
			m.rows[i][ColRollingStd] = 0
		}
	}

	// Null fill: any non-finite value that leaked through a computation
	// becomes 0.
	for i := range m.rows {
		for j := range m.rows[i] {
			if math.IsNaN(m.rows[i][j]) || math.IsInf(m.rows[i][j], 0) {
				m.rows[i][j] = 0
			}
		}
	}

	return m
}

// resolveHours extracts the hour-of-day per row. The fixed noon default
// applies only when the whole batch lacks a timestamp column.
func resolveHours(records []txn.Record, batch txn.BatchInfo) []float64 {
	hours := make([]float64, len(records))
	for i, rec := range records {
		switch {
		case !batch.HasTime:
			hours[i] = defaultHour
		case rec.HasTime:
			hours[i] = float64(rec.Time.Hour())
		default:
			hours[i] = 0
		}
	}
	return hours
}

// resolveRiskScore keeps a caller-supplied risk_score verbatim, zero
// included. The recompute fires only when the column was absent from the
// batch entirely: the mean of whichever risk factors were genuinely
// supplied, with previous_fraud_flag double-weighted.
func resolveRiskScore(rec txn.Record, batch txn.BatchInfo) float64 {
	if batch.HasRiskScore {
		return rec.RiskScore
	}

	var sum float64
	var count int
	if batch.HasForeign {
		sum += rec.Foreign
		count++
	}
	if batch.HasHighRisk {
		sum += rec.HighRisk
		count++
	}
	if batch.HasPrevFraud {
		sum += rec.PrevFraud * 2
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// applyCustomerAggregates computes hours_since_last_tx and the rolling
// amount statistics over the batch sorted by (customer, time) ascending.
// The sort order is load-bearing; results are written back to each row's
// original position so the matrix stays in input order.
func applyCustomerAggregates(records []txn.Record, m *Matrix) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}

	// Records without a parseable time sort after timed ones within the
	// same customer, mirroring the reference pipeline's NaT-last ordering.
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.CustomerID != rb.CustomerID {
			return ra.CustomerID < rb.CustomerID
		}
		if ra.HasTime != rb.HasTime {
			return ra.HasTime
		}
		if !ra.HasTime {
			return false
		}
		return ra.Time.Before(rb.Time)
	})

	var (
		customer string
		started  bool
		prevIdx  int
		window   []float64
	)

	for _, idx := range order {
		rec := records[idx]
		row := &m.rows[idx]

		if !started || rec.CustomerID != customer {
			customer = rec.CustomerID
			started = true
			window = window[:0]
			prevIdx = -1
		}

		// Gap to the immediately preceding row of the same customer; the
		// first row per customer, and any pair involving an unparseable
		// time, falls back to 0 through the null fill.
		if prevIdx >= 0 && rec.HasTime && records[prevIdx].HasTime {
			row[ColHoursSinceLast] = rec.Time.Sub(records[prevIdx].Time).Hours()
		} else {
			row[ColHoursSinceLast] = 0
		}
		prevIdx = idx

		window = append(window, rec.Amount)
		if len(window) > rollingWindow {
			window = window[1:]
		}

		mean, std := rollingStats(window)
		row[ColRollingMean] = mean
		row[ColRollingStd] = std
	}
}

// rollingStats returns the mean and sample standard deviation of the
// trailing window. With fewer than two observations the deviation is 0,
// not undefined.
func rollingStats(window []float64) (mean, std float64) {
	n := float64(len(window))
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean = sum / n

	if n < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / (n - 1))
	return mean, std
}
