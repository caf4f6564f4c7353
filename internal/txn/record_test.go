package txn

import (
	"testing"
	"time"
)

func TestCanonicalize_AliasPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want float64
	}{
		{
			name: "canonical amount only",
			raw:  map[string]any{"transaction_amount": 250.0},
			want: 250.0,
		},
		{
			name: "legacy amount only",
			raw:  map[string]any{"amount": 99.5},
			want: 99.5,
		},
		{
			name: "canonical wins over legacy",
			raw:  map[string]any{"transaction_amount": 100.0, "amount": 900.0},
			want: 100.0,
		},
		{
			name: "string amount parses",
			raw:  map[string]any{"transaction_amount": "42.5"},
			want: 42.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Canonicalize(tt.raw)
			if rec.Amount != tt.want {
				t.Errorf("Amount = %f, want %f", rec.Amount, tt.want)
			}
		})
	}
}

func TestCanonicalize_CustomerAlias(t *testing.T) {
	t.Parallel()

	rec := Canonicalize(map[string]any{"user_id": "CUST042"})
	if rec.CustomerID != "CUST042" {
		t.Errorf("legacy user_id not resolved, got %q", rec.CustomerID)
	}

	rec = Canonicalize(map[string]any{"customer_id": "A", "user_id": "B"})
	if rec.CustomerID != "A" {
		t.Errorf("canonical customer_id should win, got %q", rec.CustomerID)
	}
}

func TestCanonicalize_FlagMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		value       any
		want        float64
		wantDegrade bool
	}{
		{"yes string", "yes", 1, false},
		{"Yes mixed case", "Yes", 1, false},
		{"no string", "no", 0, false},
		{"true string", "true", 1, false},
		{"false string", "false", 0, false},
		{"numeric one", 1.0, 1, false},
		{"numeric zero", 0.0, 0, false},
		{"bool true", true, 1, false},
		{"empty string", "", 0, false},
		{"unmapped value", "maybe", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Canonicalize(map[string]any{FieldForeign: tt.value})
			if rec.Foreign != tt.want {
				t.Errorf("Foreign = %f, want %f", rec.Foreign, tt.want)
			}
			degraded := false
			for _, d := range rec.Degradations {
				if d.Field == FieldForeign && d.Reason == ReasonUnmappedFlag {
					degraded = true
				}
			}
			if degraded != tt.wantDegrade {
				t.Errorf("degradation = %v, want %v", degraded, tt.wantDegrade)
			}
		})
	}
}

func TestCanonicalize_MissingFlagIsZeroWithoutDegradation(t *testing.T) {
	t.Parallel()

	rec := Canonicalize(map[string]any{"transaction_amount": 10.0})
	if rec.Foreign != 0 || rec.HighRisk != 0 || rec.PrevFraud != 0 {
		t.Error("absent flags must default to 0")
	}
	if len(rec.Degradations) != 0 {
		t.Errorf("absent fields must not be tagged, got %v", rec.Degradations)
	}
}

func TestCanonicalize_Timestamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		wantHas  bool
		wantHour int
	}{
		{"RFC3339", "2024-03-15T14:30:00Z", true, 14},
		{"space separated", "2024-03-15 09:00:00", true, 9},
		{"date only", "2024-03-15", true, 0},
		{"garbage", "not-a-time", false, 0},
		{"empty string", "", false, 0},
		{"numeric", 12345.0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Canonicalize(map[string]any{FieldTime: tt.value})
			if rec.HasTime != tt.wantHas {
				t.Fatalf("HasTime = %v, want %v", rec.HasTime, tt.wantHas)
			}
			if tt.wantHas && rec.Time.Hour() != tt.wantHour {
				t.Errorf("hour = %d, want %d", rec.Time.Hour(), tt.wantHour)
			}
			if !tt.wantHas {
				tagged := false
				for _, d := range rec.Degradations {
					if d.Field == FieldTime && d.Reason == ReasonUnparseableTime {
						tagged = true
					}
				}
				if !tagged {
					t.Error("unparseable time must be tagged")
				}
			}
		})
	}
}

func TestCanonicalize_RiskScorePreservesZero(t *testing.T) {
	t.Parallel()

	rec := Canonicalize(map[string]any{FieldRiskScore: 0.0})
	if rec.RiskScore != 0 {
		t.Errorf("RiskScore = %f, want 0", rec.RiskScore)
	}
	if len(rec.Degradations) != 0 {
		t.Errorf("explicit zero must not degrade, got %v", rec.Degradations)
	}
}

func TestCanonicalize_ContextFields(t *testing.T) {
	t.Parallel()

	rec := Canonicalize(map[string]any{
		"transaction_amount": 10.0,
		"device_type":        "mobile",
		"merchant_category":  "travel",
	})
	if rec.Context["device_type"] != "mobile" {
		t.Errorf("device_type not carried, got %v", rec.Context)
	}
	if rec.Context["merchant_category"] != "travel" {
		t.Errorf("merchant_category not carried, got %v", rec.Context)
	}
}

func TestCanonicalizeBatch_ColumnPresence(t *testing.T) {
	t.Parallel()

	raw := []map[string]any{
		{"transaction_amount": 10.0},
		{"amount": 20.0, "transaction_time": "2024-01-01T00:00:00Z"},
		{"transaction_amount": 30.0, "is_foreign_transaction": "yes"},
	}

	records, info := CanonicalizeBatch(raw)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	if !info.HasAmount {
		t.Error("HasAmount should be true")
	}
	if !info.HasTime {
		t.Error("HasTime should be true: one row supplied it")
	}
	if !info.HasForeign {
		t.Error("HasForeign should be true: one row supplied it")
	}
	if info.HasCustomer || info.HasHighRisk || info.HasPrevFraud || info.HasRiskScore {
		t.Errorf("unsupplied columns must be absent, got %+v", info)
	}
}

func TestCanonicalizeBatch_NullCountsAsAbsent(t *testing.T) {
	t.Parallel()

	raw := []map[string]any{
		{"transaction_amount": 10.0, "risk_score": nil},
	}
	_, info := CanonicalizeBatch(raw)
	if info.HasRiskScore {
		t.Error("explicit null must count as an absent column")
	}
}

func TestCanonicalizeBatch_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	raw := []map[string]any{{"transaction_amount": 10.0, "is_foreign_transaction": "maybe"}}
	CanonicalizeBatch(raw)
	if len(raw[0]) != 2 {
		t.Errorf("input map mutated: %v", raw[0])
	}
	if raw[0]["is_foreign_transaction"] != "maybe" {
		t.Errorf("input value mutated: %v", raw[0])
	}
}

func TestCanonicalize_IdempotentOnCanonicalInput(t *testing.T) {
	t.Parallel()

	// Already-canonical values (0/1 numerics, canonical keys) pass through
	// unchanged and untagged.
	raw := map[string]any{
		"transaction_amount":     250.0,
		"customer_id":            "CUST001",
		"transaction_time":       "2024-03-15T14:30:00Z",
		"is_foreign_transaction": 1.0,
		"is_high_risk_country":   0.0,
		"previous_fraud_flag":    0.0,
		"risk_score":             0.33,
	}

	rec := Canonicalize(raw)
	if rec.Amount != 250.0 || rec.CustomerID != "CUST001" {
		t.Errorf("canonical fields changed: %+v", rec)
	}
	if rec.Foreign != 1 || rec.HighRisk != 0 || rec.PrevFraud != 0 {
		t.Errorf("canonical flags changed: %+v", rec)
	}
	if rec.RiskScore != 0.33 {
		t.Errorf("RiskScore = %f, want 0.33", rec.RiskScore)
	}
	if len(rec.Degradations) != 0 {
		t.Errorf("canonical input must not degrade, got %v", rec.Degradations)
	}
}

func TestCanonicalize_TimeTypePassthrough(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rec := Canonicalize(map[string]any{FieldTime: ts})
	if !rec.HasTime || !rec.Time.Equal(ts) {
		t.Errorf("time.Time value not accepted, got %v has=%v", rec.Time, rec.HasTime)
	}
}
