package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord описывает завершённый расчёт выплаты для журнала.
type AuditRecord struct {
	OccurredAt       time.Time
	Date             time.Time
	SumNoDiscount    decimal.Decimal
	SumDiscount      decimal.Decimal
	Total            decimal.Decimal
	PayoutNoDiscount decimal.Decimal
	PayoutDiscount   decimal.Decimal
	PayoutTotal      decimal.Decimal
}

// AuditRecordFromSettlement переносит итоги расчёта в запись журнала.
func AuditRecordFromSettlement(s Settlement, now time.Time, loc *time.Location) AuditRecord {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return AuditRecord{
		OccurredAt:       local,
		Date:             time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
		SumNoDiscount:    s.SumNoDiscount,
		SumDiscount:      s.SumDiscount,
		Total:            s.Total,
		PayoutNoDiscount: s.PayoutNoDiscount,
		PayoutDiscount:   s.PayoutDiscount,
		PayoutTotal:      s.PayoutTotal,
	}
}
