package domain

import "github.com/shopspring/decimal"

// PayoutPolicy содержит фиксированные ставки выплат и надбавки проверочных формул.
// Создаётся один раз при старте и не меняется.
type PayoutPolicy struct {
	// PayNoDiscount задаёт ₽ партнёру за 1 ¥ без скидки.
	PayNoDiscount decimal.Decimal
	// PayDiscount задаёт ₽ партнёру за 1 ¥ со скидкой.
	PayDiscount decimal.Decimal
	// CheckAddNoDiscount прибавляется к курсу в проверочных строках без скидки.
	CheckAddNoDiscount decimal.Decimal
	// CheckAddDiscount прибавляется к курсу в проверочных строках со скидкой.
	CheckAddDiscount decimal.Decimal
}

// DefaultPayoutPolicy возвращает ставки по умолчанию.
func DefaultPayoutPolicy() PayoutPolicy {
	return PayoutPolicy{
		PayNoDiscount:      decimal.RequireFromString("0.15"),
		PayDiscount:        decimal.RequireFromString("0.10"),
		CheckAddNoDiscount: decimal.RequireFromString("0.10"),
		CheckAddDiscount:   decimal.RequireFromString("0.05"),
	}
}

// PayoutRate возвращает ставку выплаты для классификации.
func (p PayoutPolicy) PayoutRate(c Classification) decimal.Decimal {
	if c == Discount {
		return p.PayDiscount
	}
	return p.PayNoDiscount
}

// CheckAdditive возвращает надбавку проверочной формулы для классификации.
func (p PayoutPolicy) CheckAdditive(c Classification) decimal.Decimal {
	if c == Discount {
		return p.CheckAddDiscount
	}
	return p.CheckAddNoDiscount
}
