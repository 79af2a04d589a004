package settlement

import (
	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

var (
	bound30000 = decimal.NewFromInt(30000)
	bound10000 = decimal.NewFromInt(10000)
	bound3000  = decimal.NewFromInt(3000)
	bound1000  = decimal.NewFromInt(1000)
)

// Bracket возвращает диапазон суммы. Нижняя граница диапазона включительна.
func Bracket(amount decimal.Decimal) domain.Bracket {
	switch {
	case amount.GreaterThanOrEqual(bound30000):
		return domain.BracketGE30000
	case amount.GreaterThanOrEqual(bound10000):
		return domain.Bracket10000To30000
	case amount.GreaterThanOrEqual(bound3000):
		return domain.Bracket3000To10000
	case amount.GreaterThanOrEqual(bound1000):
		return domain.Bracket1000To3000
	default:
		return domain.BracketLT1000
	}
}

// Resolve возвращает курс диапазона, в который попадает сумма.
func Resolve(amount decimal.Decimal, table domain.RateTable) decimal.Decimal {
	return table.Get(Bracket(amount))
}
