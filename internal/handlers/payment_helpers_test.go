package handlers

import (
	"testing"

	"backend/internal/sslcommerz"
)

func TestMatchesPayable(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		payable  float64
		want     bool
	}{
		{"exact match", "460.00", "460.00", 460, true},
		{"rounding within tolerance", "459.995", "", 460, true},
		{"currency amount matches", "5.48", "460.00", 460, true},
		{"mismatch", "400.00", "400.00", 460, false},
		{"unparseable", "", "abc", 460, false},
		{"off by more than tolerance", "459.90", "459.90", 460, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := sslcommerz.ValidationResponse{Amount: tt.amount, CurrencyAmount: tt.currency}
			if got := matchesPayable(resp, tt.payable); got != tt.want {
				t.Fatalf("matchesPayable(amount=%q currency=%q, %v) = %v, want %v",
					tt.amount, tt.currency, tt.payable, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	if v, ok := parseAmount(" 120.50 "); !ok || v != 120.5 {
		t.Fatalf("parseAmount = %v, %v", v, ok)
	}
	if _, ok := parseAmount("12,5"); ok {
		t.Fatal("expected comma decimal to be rejected")
	}
	if _, ok := parseAmount(""); ok {
		t.Fatal("expected empty string to be rejected")
	}
}
