package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

func testTable() domain.RateTable {
	return domain.RateTable{
		GE30000:       decimal.RequireFromString("11.75"),
		R10000To30000: decimal.RequireFromString("11.80"),
		R3000To10000:  decimal.RequireFromString("11.85"),
		R1000To3000:   decimal.RequireFromString("11.90"),
		LT1000:        decimal.RequireFromString("12.00"),
	}
}

func TestResolveBoundaries(t *testing.T) {
	table := testTable()
	tests := []struct {
		amount string
		want   domain.Bracket
	}{
		{amount: "0.01", want: domain.BracketLT1000},
		{amount: "999.99", want: domain.BracketLT1000},
		{amount: "1000", want: domain.Bracket1000To3000},
		{amount: "2999.99", want: domain.Bracket1000To3000},
		{amount: "3000", want: domain.Bracket3000To10000},
		{amount: "9999.999", want: domain.Bracket3000To10000},
		{amount: "10000", want: domain.Bracket10000To30000},
		{amount: "29999.99", want: domain.Bracket10000To30000},
		{amount: "30000", want: domain.BracketGE30000},
		{amount: "1000000", want: domain.BracketGE30000},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			if got := Bracket(amount); got != tt.want {
				t.Fatalf("Bracket(%s) = %s, want %s", tt.amount, got, tt.want)
			}
			if got, want := Resolve(amount, table), table.Get(tt.want); !got.Equal(want) {
				t.Fatalf("Resolve(%s) = %s, want %s", tt.amount, got, want)
			}
		})
	}
}

func TestResolveIsMonotonic(t *testing.T) {
	order := map[domain.Bracket]int{
		domain.BracketLT1000:       0,
		domain.Bracket1000To3000:   1,
		domain.Bracket3000To10000:  2,
		domain.Bracket10000To30000: 3,
		domain.BracketGE30000:      4,
	}
	prev := -1
	for v := int64(1); v <= 40000; v += 37 {
		got := order[Bracket(decimal.NewFromInt(v))]
		if got < prev {
			t.Fatalf("bracket went down at %d", v)
		}
		prev = got
	}
}
