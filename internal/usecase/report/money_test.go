package report

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"999.999":     "1 000.00",
		"1000":        "1 000.00",
		"12345.6":     "12 345.60",
		"1234567.891": "1 234 567.89",
		"-2375":       "-2 375.00",
		"100000":      "100 000.00",
	}
	for input, expected := range cases {
		if got := FormatMoney(decimal.RequireFromString(input)); got != expected {
			t.Fatalf("FormatMoney(%s) = %q, want %q", input, got, expected)
		}
	}
}

func TestFormatCurrencies(t *testing.T) {
	if got := FormatRUB(decimal.NewFromInt(2375)); got != "2 375.00 ₽" {
		t.Fatalf("unexpected rub: %q", got)
	}
	if got := FormatCNY(decimal.NewFromInt(17000)); got != "17 000.00 ¥" {
		t.Fatalf("unexpected cny: %q", got)
	}
}
