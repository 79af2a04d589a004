package amounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"exchange-payout-bot/internal/domain"
)

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.RequireFromString(v))
	}
	return out
}

func requireAmounts(t *testing.T, want, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Truef(t, want[i].Equal(got[i]), "позиция %d: ожидали %s, получили %s", i, want[i], got[i])
	}
}

func TestParseMixedColumn(t *testing.T) {
	res := Parse("+1500\n-900\n+12000\n-2600")
	requireAmounts(t, decs("1500", "12000"), res.NoDiscount)
	requireAmounts(t, decs("900", "2600"), res.Discount)
}

func TestParseTrailingTags(t *testing.T) {
	tests := []struct {
		line     string
		discount bool
	}{
		{line: "1500 ns", discount: false},
		{line: "1500 NO", discount: false},
		{line: "1500 без", discount: false},
		{line: "1500 b", discount: false},
		{line: "1500 nd", discount: false},
		{line: "2600 s", discount: true},
		{line: "2600 SO", discount: true},
		{line: "2600 скидка", discount: true},
		{line: "2600 со", discount: true},
		{line: "2600 с", discount: true},
		{line: "2600 disc", discount: true},
		{line: "2600 d", discount: true},
		{line: "2600 whatever", discount: false},
		{line: "2600", discount: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := Parse(tt.line)
			require.Equal(t, 1, res.Count())
			if tt.discount {
				require.Len(t, res.Discount, 1)
			} else {
				require.Len(t, res.NoDiscount, 1)
			}
		})
	}
}

func TestParseLeadingMarkWinsOverTag(t *testing.T) {
	res := Parse("+1500 s\n-700 ns")
	requireAmounts(t, decs("1500"), res.NoDiscount)
	requireAmounts(t, decs("700"), res.Discount)
}

func TestParseTagPrefixes(t *testing.T) {
	res := Parse("bs 1 500\ns2600\nS 3,5")
	requireAmounts(t, decs("1500"), res.NoDiscount)
	requireAmounts(t, decs("2600", "3.5"), res.Discount)

	plain := Parser{}.Parse("bs1500\ns2600")
	requireAmounts(t, decs("1500", "2600"), plain.NoDiscount)
	require.Empty(t, plain.Discount)
}

func TestParseDecimalCommaAndTabs(t *testing.T) {
	res := Parse("1500,50\t-99,9\t\t")
	requireAmounts(t, decs("1500.5"), res.NoDiscount)
	requireAmounts(t, decs("99.9"), res.Discount)
}

func TestParseFallbackStripsGarbage(t *testing.T) {
	res := Parse("12000¥\n+3000руб")
	requireAmounts(t, decs("12000", "3000"), res.NoDiscount)
	require.Empty(t, res.Discount)
}

func TestParseDropsInvalidLines(t *testing.T) {
	for _, line := range []string{"abc", "", "-", "0", "+0", "--5", "1.2.3", "   "} {
		t.Run(line, func(t *testing.T) {
			require.True(t, Parse(line).Empty(), "строка %q должна быть отброшена", line)
		})
	}
}

func TestParseExponentBounds(t *testing.T) {
	res := Parse("1e5\n2e400000000\n-3e-400000000\n+1e13")
	requireAmounts(t, decs("100000"), res.NoDiscount)
	require.Empty(t, res.Discount)
	require.Equal(t, "100000.00", res.NoDiscount[0].StringFixed(2))
}

func TestResultErr(t *testing.T) {
	require.ErrorIs(t, Parse("нет сумм").Err(), domain.ErrEmptyAmounts)
	require.NoError(t, Parse("+1").Err())
}

func TestParseKeepsOrderAndSkipsGarbageInBatch(t *testing.T) {
	res := Parse("100\nмусор\n-5\n200 s\n300")
	requireAmounts(t, decs("100", "300"), res.NoDiscount)
	requireAmounts(t, decs("5", "200"), res.Discount)
}

func TestParseIsDeterministic(t *testing.T) {
	text := "+1500\n-900\n12000 s\nbs 40\n7,25 без"
	first := Parse(text)
	second := Parse(text)
	requireAmounts(t, first.NoDiscount, second.NoDiscount)
	requireAmounts(t, first.Discount, second.Discount)
}
