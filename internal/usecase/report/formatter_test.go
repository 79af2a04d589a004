package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/usecase/settlement"
)

func rates() domain.RateTable {
	return domain.RateTable{
		GE30000:       decimal.RequireFromString("11.75"),
		R10000To30000: decimal.RequireFromString("11.8"),
		R3000To10000:  decimal.RequireFromString("11.85"),
		R1000To3000:   decimal.RequireFromString("11.9"),
		LT1000:        decimal.RequireFromString("12"),
	}
}

func amounts(n int, v int64) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func mustSettle(t *testing.T, no, disc []decimal.Decimal) domain.Settlement {
	t.Helper()
	s, err := settlement.Calculate(rates(), domain.DefaultPayoutPolicy(), no, disc)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	return s
}

func TestRenderSettlementSections(t *testing.T) {
	s := mustSettle(t, []decimal.Decimal{decimal.NewFromInt(1500), decimal.NewFromInt(12000)},
		[]decimal.Decimal{decimal.NewFromInt(900), decimal.NewFromInt(2600)})
	text := RenderSettlement(s, DefaultBudget)

	mustContain(t, text, "<b>Итоги за день</b>")
	mustContain(t, text, "≥ 30000 ¥: <b>11.75</b>")
	mustContain(t, text, "&lt; 1000 ¥: <b>12</b>")
	mustContain(t, text, "Всего: <b>17 000.00 ¥</b>")
	mustContain(t, text, "Без скидки: 13 500.00 ¥ × 0.15 ₽/¥ = <b>2 025.00 ₽</b>")
	mustContain(t, text, "Со скидкой: 3 500.00 ¥ × 0.10 ₽/¥ = <b>350.00 ₽</b>")
	mustContain(t, text, "Итого к выплате: <b>2 375.00 ₽</b>")
	mustContain(t, text, "• 1 500.00 ¥ × (11.9000 + 0.10) = 18 000.00 ₽")
	mustContain(t, text, "• 900.00 ¥ × (12.0000 + 0.05) = 10 845.00 ₽")

	order := []string{"Курсы", "Суммы в юанях", "Выплаты партнёру", "(без скидки)", "(со скидкой)"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(text, marker)
		if idx <= last {
			t.Fatalf("раздел %q стоит не на своём месте", marker)
		}
		last = idx
	}
	if strings.Contains(text, TruncatedNote) {
		t.Fatal("короткий отчёт не должен обрезаться")
	}
}

func TestRenderSettlementEmptyVerification(t *testing.T) {
	s := mustSettle(t, []decimal.Decimal{decimal.NewFromInt(10)}, nil)
	text := RenderSettlement(s, DefaultBudget)
	mustContain(t, text, "<b>Проверьте суммы в рублях (со скидкой):</b>\n—")
}

func TestRenderSettlementDropsVerificationOverBudget(t *testing.T) {
	s := mustSettle(t, amounts(150, 1500), amounts(150, 900))
	full := RenderSettlement(s, 1_000_000)
	if utf8.RuneCountInString(full) <= DefaultBudget {
		t.Fatalf("тестовый отчёт должен превышать лимит")
	}

	cut := RenderSettlement(s, DefaultBudget)
	if !strings.HasSuffix(cut, "\n\n"+TruncatedNote) {
		t.Fatalf("ожидали пояснение в конце отчёта")
	}
	if strings.Contains(cut, "Проверьте суммы") {
		t.Fatalf("проверочные разделы должны быть удалены целиком")
	}
	head := strings.TrimSuffix(cut, "\n\n"+TruncatedNote)
	if !strings.HasPrefix(full, head+"\n\n<b>Проверьте суммы в рублях (без скидки):</b>") {
		t.Fatalf("основные разделы должны остаться без изменений")
	}
}

func TestRenderDaily(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	policy := domain.DefaultPayoutPolicy()
	totals := domain.DailyTotals{
		Date:             date,
		CountNoDiscount:  2,
		CountDiscount:    1,
		SumNoDiscount:    decimal.NewFromInt(13500),
		SumDiscount:      decimal.NewFromInt(3500),
		Total:            decimal.NewFromInt(17000),
		PayoutNoDiscount: decimal.NewFromInt(2025),
		PayoutDiscount:   decimal.NewFromInt(350),
		PayoutTotal:      decimal.NewFromInt(2375),
	}
	text := RenderDaily(totals, policy)
	mustContain(t, text, "<b>Итоги за 19.10.2026</b>")
	mustContain(t, text, "Без скидки: 13 500.00 ¥ (2 шт.)")
	mustContain(t, text, "Итого к выплате: <b>2 375.00 ₽</b>")
	if strings.Contains(text, "Курсы") {
		t.Fatal("в отчёте по учёту не должно быть курсов")
	}

	empty := RenderDaily(domain.DailyTotals{Date: date}, policy)
	if empty != "За 19.10.2026 записей нет." {
		t.Fatalf("unexpected empty report: %q", empty)
	}
}

func TestRenderUndo(t *testing.T) {
	if got := RenderUndo(domain.UndoResult{}); got != "Сегодня нет ваших записей для отмены." {
		t.Fatalf("unexpected text: %q", got)
	}
	text := RenderUndo(domain.UndoResult{
		Found: true,
		Key:   domain.MessageKey{ChatID: -1, MessageID: 77},
		Removal: domain.Removal{
			Count:         2,
			SumNoDiscount: decimal.NewFromInt(1500),
			SumDiscount:   decimal.NewFromInt(900),
		},
	})
	mustContain(t, text, "#77")
	mustContain(t, text, "Удалено записей: 2")
	mustContain(t, text, "Всего: <b>−2 400.00 ¥</b>")
}

func mustContain(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("ожидали найти подстроку %q в %q", substr, s)
	}
}
