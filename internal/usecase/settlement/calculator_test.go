package settlement

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"exchange-payout-bot/internal/domain"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "ожидали %s, получили %s", want, got)
}

func TestCalculateDailyExample(t *testing.T) {
	s, err := Calculate(testTable(), domain.DefaultPayoutPolicy(),
		[]decimal.Decimal{d("1500"), d("12000")},
		[]decimal.Decimal{d("900"), d("2600")})
	require.NoError(t, err)

	requireDecimal(t, "13500", s.SumNoDiscount)
	requireDecimal(t, "3500", s.SumDiscount)
	requireDecimal(t, "17000", s.Total)
	requireDecimal(t, "2025.00", s.PayoutNoDiscount)
	requireDecimal(t, "350.00", s.PayoutDiscount)
	requireDecimal(t, "2375.00", s.PayoutTotal)
}

func TestCalculateVerificationLines(t *testing.T) {
	s, err := Calculate(testTable(), domain.DefaultPayoutPolicy(),
		[]decimal.Decimal{d("1500"), d("12000")},
		[]decimal.Decimal{d("900"), d("2600")})
	require.NoError(t, err)

	require.Len(t, s.CheckNoDiscount, 2)
	require.Len(t, s.CheckDiscount, 2)

	// 1500 × (11.90 + 0.10)
	requireDecimal(t, "11.90", s.CheckNoDiscount[0].Rate)
	requireDecimal(t, "18000", s.CheckNoDiscount[0].Rub)
	// 12000 × (11.80 + 0.10)
	requireDecimal(t, "142800", s.CheckNoDiscount[1].Rub)
	// 900 × (12.00 + 0.05)
	requireDecimal(t, "0.05", s.CheckDiscount[0].Additive)
	requireDecimal(t, "10845", s.CheckDiscount[0].Rub)
	// 2600 × (11.90 + 0.05)
	requireDecimal(t, "31070", s.CheckDiscount[1].Rub)
}

func TestCalculateVerificationNeverAffectsPayout(t *testing.T) {
	cheap := testTable()
	expensive := cheap.With(domain.BracketLT1000, d("99"))
	amounts := []decimal.Decimal{d("10"), d("20")}

	a, err := Calculate(cheap, domain.DefaultPayoutPolicy(), amounts, nil)
	require.NoError(t, err)
	b, err := Calculate(expensive, domain.DefaultPayoutPolicy(), amounts, nil)
	require.NoError(t, err)

	require.True(t, a.PayoutTotal.Equal(b.PayoutTotal))
	require.False(t, a.CheckNoDiscount[0].Rub.Equal(b.CheckNoDiscount[0].Rub))
}

func TestCalculateRejectsIncompleteTable(t *testing.T) {
	partial := testTable().With(domain.Bracket3000To10000, decimal.Zero)
	_, err := Calculate(partial, domain.DefaultPayoutPolicy(), []decimal.Decimal{d("1")}, nil)
	if !errors.Is(err, domain.ErrIncompleteRates) {
		t.Fatalf("expected ErrIncompleteRates, got %v", err)
	}
}

func TestCalculateEmptyLists(t *testing.T) {
	s, err := Calculate(testTable(), domain.DefaultPayoutPolicy(), nil, nil)
	require.NoError(t, err)
	require.True(t, s.PayoutTotal.IsZero())
	require.Empty(t, s.CheckNoDiscount)
	require.Empty(t, s.CheckDiscount)
}
