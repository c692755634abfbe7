package models_test

import (
	"encoding/json"
	"testing"

	"ArborCRM/internal/models"
)

// ── FlexFloat ──────────────────────────────────────────────────────────────

func TestFlexFloat_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `125.5`, 125.5},
		{"integer", `500`, 500},
		{"numeric string", `"99.99"`, 99.99},
		{"zero", `0`, 0},
		// Битые значения превращаются в 0, а не в ошибку: один кривой
		// столбец не должен ронять весь экран
		{"garbage string", `"abc"`, 0},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"object", `{"v": 1}`, 0},
		{"array", `[1, 2]`, 0},
	}
	for _, c := range cases {
		var got models.FlexFloat
		if err := json.Unmarshal([]byte(c.in), &got); err != nil {
			t.Errorf("%s: Unmarshal(%s) вернул ошибку: %v", c.name, c.in, err)
			continue
		}
		if got.Value() != c.want {
			t.Errorf("%s: Unmarshal(%s) = %v, want %v", c.name, c.in, got.Value(), c.want)
		}
	}
}

func TestFlexFloat_MalformedExpenseAmountInsideJob(t *testing.T) {
	raw := `{
		"id": 1,
		"price": "500",
		"expenses": [
			{"id": 10, "category": "materials", "amount": 100},
			{"id": 11, "category": "fuel", "amount": "N/A"}
		]
	}`
	var job models.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}
	if job.Price.Value() != 500 {
		t.Errorf("Price = %v, want 500", job.Price.Value())
	}
	if job.Expenses[1].Amount.Value() != 0 {
		t.Errorf("битая сумма расхода = %v, want 0", job.Expenses[1].Amount.Value())
	}
}

// ── Settings ───────────────────────────────────────────────────────────────

func TestSettings_UnmarshalObjectForm(t *testing.T) {
	raw := `{"tax_rate": 8.5, "branding": {"company": "ArborPro"}}`
	var s models.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}
	if s.TaxRate != 8.5 {
		t.Errorf("TaxRate = %v, want 8.5", s.TaxRate)
	}
	if s.Branding["company"] != "ArborPro" {
		t.Errorf("Branding = %v", s.Branding)
	}
}

func TestSettings_UnmarshalArrayForm(t *testing.T) {
	raw := `[{"key": "tax_rate", "value": "7.25"}, {"key": "other", "value": 1}]`
	var s models.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}
	if s.TaxRate != 7.25 {
		t.Errorf("TaxRate = %v, want 7.25", s.TaxRate)
	}
}

func TestSettings_UnmarshalStringTaxRate(t *testing.T) {
	raw := `{"tax_rate": "10"}`
	var s models.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}
	if s.TaxRate != 10 {
		t.Errorf("TaxRate = %v, want 10", s.TaxRate)
	}
}
