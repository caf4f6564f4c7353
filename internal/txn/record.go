// Package txn canonicalizes raw transaction records before any feature
// logic runs. Raw input arrives as loosely typed JSON objects with optional
// and aliased keys; canonicalization resolves aliases, normalizes
// boolean-like flags, and parses timestamps into a strictly typed Record.
//
// Canonicalization never fails: every malformed value resolves to a
// documented default and is tagged with a Degradation so callers and tests
// can see why a fallback fired.
package txn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Canonical field names. Legacy aliases are a secondary source only: the
// canonical name always wins when both are present.
const (
	FieldAmount      = "transaction_amount"
	FieldAmountOld   = "amount"
	FieldCustomer    = "customer_id"
	FieldCustomerOld = "user_id"
	FieldTime        = "transaction_time"
	FieldForeign     = "is_foreign_transaction"
	FieldHighRisk    = "is_high_risk_country"
	FieldPrevFraud   = "previous_fraud_flag"
	FieldRiskScore   = "risk_score"
)

// Degradation reasons.
const (
	ReasonUnparseableTime = "unparseable_timestamp"
	ReasonUnmappedFlag    = "unmapped_flag_value"
	ReasonBadNumeric      = "non_numeric_value"
)

// Degradation records a per-field fallback that fired during
// canonicalization. It is informational only; the record remains usable.
type Degradation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Record is the strictly typed form of a raw transaction. Zero values are
// the documented defaults; the Has* flags distinguish a genuinely supplied
// value from a defaulted one where that distinction is load-bearing.
type Record struct {
	Amount     float64
	CustomerID string
	Time       time.Time
	HasTime    bool // Time parsed successfully

	Foreign   float64
	HighRisk  float64
	PrevFraud float64
	RiskScore float64

	// Context carries categorical fields consumed only by the dashboard
	// (device type, merchant category, time-of-day label).
	Context map[string]string

	Degradations []Degradation
}

// BatchInfo tracks column-level presence across a whole batch. The hour
// default, the aggregation skip, and the risk-score recompute are decided
// per column, not per row: a column exists when any record supplied it.
type BatchInfo struct {
	HasAmount    bool
	HasCustomer  bool
	HasTime      bool
	HasForeign   bool
	HasHighRisk  bool
	HasPrevFraud bool
	HasRiskScore bool
}

// contextFields are carried through verbatim for the dashboard path.
var contextFields = []string{"device_type", "merchant_category", "time_of_day", "day_of_week"}

// timeLayouts accepted for transaction_time, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CanonicalizeBatch converts a batch of raw transactions into typed records
// plus column-presence info. The input maps are never mutated.
func CanonicalizeBatch(raw []map[string]any) ([]Record, BatchInfo) {
	records := make([]Record, len(raw))
	var info BatchInfo

	for i, r := range raw {
		records[i] = Canonicalize(r)

		if present(r, FieldAmount) || present(r, FieldAmountOld) {
			info.HasAmount = true
		}
		if present(r, FieldCustomer) || present(r, FieldCustomerOld) {
			info.HasCustomer = true
		}
		if present(r, FieldTime) {
			info.HasTime = true
		}
		if present(r, FieldForeign) {
			info.HasForeign = true
		}
		if present(r, FieldHighRisk) {
			info.HasHighRisk = true
		}
		if present(r, FieldPrevFraud) {
			info.HasPrevFraud = true
		}
		if present(r, FieldRiskScore) {
			info.HasRiskScore = true
		}
	}

	return records, info
}

// Canonicalize converts one raw transaction into a typed Record. It is a
// pure function of its input and never fails.
func Canonicalize(raw map[string]any) Record {
	rec := Record{}

	if v, ok := lookupAlias(raw, FieldAmount, FieldAmountOld); ok {
		if f, ok := asFloat(v); ok {
			rec.Amount = f
		} else {
			rec.degrade(FieldAmount, ReasonBadNumeric)
		}
	}

	if v, ok := lookupAlias(raw, FieldCustomer, FieldCustomerOld); ok {
		rec.CustomerID = asString(v)
	}

	if v, ok := raw[FieldTime]; ok && v != nil {
		if ts, ok := parseTime(v); ok {
			rec.Time = ts
			rec.HasTime = true
		} else {
			rec.degrade(FieldTime, ReasonUnparseableTime)
		}
	}

	rec.Foreign = rec.flag(raw, FieldForeign)
	rec.HighRisk = rec.flag(raw, FieldHighRisk)
	rec.PrevFraud = rec.flag(raw, FieldPrevFraud)

	if v, ok := raw[FieldRiskScore]; ok && v != nil {
		if f, ok := asFloat(v); ok {
			rec.RiskScore = f
		} else {
			rec.degrade(FieldRiskScore, ReasonBadNumeric)
		}
	}

	for _, f := range contextFields {
		if v, ok := raw[f]; ok && v != nil {
			if rec.Context == nil {
				rec.Context = make(map[string]string, len(contextFields))
			}
			rec.Context[f] = asString(v)
		}
	}

	return rec
}

func (r *Record) degrade(field, reason string) {
	r.Degradations = append(r.Degradations, Degradation{Field: field, Reason: reason})
}

// flag normalizes a boolean-like value to 0 or 1. String values map
// Yes/yes/true to 1 and No/no/false to 0; anything unmapped becomes 0 with
// a degradation tag, never an error.
func (r *Record) flag(raw map[string]any, field string) float64 {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0
	}

	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "true", "1":
			return 1
		case "no", "false", "0", "":
			return 0
		default:
			r.degrade(field, ReasonUnmappedFlag)
			return 0
		}
	default:
		if f, ok := asFloat(v); ok {
			if f != 0 {
				return 1
			}
			return 0
		}
		r.degrade(field, ReasonUnmappedFlag)
		return 0
	}
}

// present reports whether a key was genuinely supplied. JSON null counts as
// absent: an explicit null is an omission, not a value.
func present(raw map[string]any, key string) bool {
	v, ok := raw[key]
	return ok && v != nil
}

func lookupAlias(raw map[string]any, canonical, legacy string) (any, bool) {
	if v, ok := raw[canonical]; ok && v != nil {
		return v, true
	}
	if v, ok := raw[legacy]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
