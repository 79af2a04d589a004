// Package settlement считает выплату партнёру и проверочные суммы в рублях.
package settlement

import (
	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

// Calculate считает суммы и выплаты по фиксированным ставкам политики.
// Курсы диапазонов используются только в проверочных строках.
func Calculate(table domain.RateTable, policy domain.PayoutPolicy, noDiscount, discount []decimal.Decimal) (domain.Settlement, error) {
	if !table.Complete() {
		return domain.Settlement{}, domain.ErrIncompleteRates
	}

	sumNo := decimal.Sum(decimal.Zero, noDiscount...)
	sumDisc := decimal.Sum(decimal.Zero, discount...)
	payoutNo, payoutDisc, payoutTotal := Payouts(policy, sumNo, sumDisc)

	return domain.Settlement{
		Rates:            table,
		Policy:           policy,
		SumNoDiscount:    sumNo,
		SumDiscount:      sumDisc,
		Total:            sumNo.Add(sumDisc),
		PayoutNoDiscount: payoutNo,
		PayoutDiscount:   payoutDisc,
		PayoutTotal:      payoutTotal,
		CheckNoDiscount:  verify(table, policy.CheckAdditive(domain.NoDiscount), noDiscount),
		CheckDiscount:    verify(table, policy.CheckAdditive(domain.Discount), discount),
	}, nil
}

// Payouts считает выплаты по суммам классификаций без проверочных строк.
func Payouts(policy domain.PayoutPolicy, sumNo, sumDisc decimal.Decimal) (payoutNo, payoutDisc, total decimal.Decimal) {
	payoutNo = sumNo.Mul(policy.PayoutRate(domain.NoDiscount))
	payoutDisc = sumDisc.Mul(policy.PayoutRate(domain.Discount))
	return payoutNo, payoutDisc, payoutNo.Add(payoutDisc)
}

func verify(table domain.RateTable, additive decimal.Decimal, amounts []decimal.Decimal) []domain.VerificationLine {
	lines := make([]domain.VerificationLine, 0, len(amounts))
	for _, a := range amounts {
		rate := Resolve(a, table)
		lines = append(lines, domain.VerificationLine{
			Amount:   a,
			Rate:     rate,
			Additive: additive,
			Rub:      a.Mul(rate.Add(additive)),
		})
	}
	return lines
}
