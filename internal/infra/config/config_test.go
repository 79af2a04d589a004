package config

import (
	"testing"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("ALLOWED_USER_IDS", "11,22")
	t.Setenv("LEDGER_CHAT_ID", "-1001")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TZ != "Europe/Moscow" {
		t.Fatalf("unexpected tz %q", cfg.TZ)
	}
	if cfg.Report.MaxChars != 3900 {
		t.Fatalf("unexpected report budget %d", cfg.Report.MaxChars)
	}
	if cfg.Ledger.ChatID != -1001 {
		t.Fatalf("unexpected ledger chat %d", cfg.Ledger.ChatID)
	}
	if !cfg.Ledger.TagPrefixes {
		t.Fatalf("tag prefixes must be enabled by default")
	}
	if !cfg.AllowList().Allows(22, 0) {
		t.Fatalf("user 22 must be allowed")
	}

	policy, err := cfg.PayoutPolicy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if !policy.PayNoDiscount.Equal(decimal.RequireFromString("0.15")) || !policy.PayDiscount.Equal(decimal.RequireFromString("0.10")) {
		t.Fatalf("unexpected payout rates %s/%s", policy.PayNoDiscount, policy.PayDiscount)
	}
	if !policy.CheckAddNoDiscount.Equal(decimal.RequireFromString("0.10")) || !policy.CheckAddDiscount.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected check additives %s/%s", policy.CheckAddNoDiscount, policy.CheckAddDiscount)
	}
}

func TestParseRejectsNegativeRate(t *testing.T) {
	t.Setenv("PAY_DISCOUNT_RATE", "-0.1")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for negative rate")
	}
}

func TestParseRejectsUnknownZone(t *testing.T) {
	t.Setenv("TZ", "Mars/Olympus")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
