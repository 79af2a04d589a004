// Package report формирует HTML-тексты итогов для отправки в Telegram.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

// DefaultBudget ограничивает длину отчёта с запасом до 4096 символов Telegram.
const DefaultBudget = 3900

// TruncatedNote добавляется вместо проверочных разделов, не поместившихся в лимит.
const TruncatedNote = "<i>Список проверочных расчётов слишком длинный. Уменьшите количество строк.</i>"

const dateLayout = "02.01.2006"

type section struct {
	text         string
	verification bool
}

// RenderSettlement формирует отчёт по расчёту: курсы, суммы, выплаты, проверочные строки.
// Если текст длиннее budget символов, оба проверочных раздела заменяются пояснением.
func RenderSettlement(s domain.Settlement, budget int) string {
	if budget <= 0 {
		budget = DefaultBudget
	}
	sections := []section{
		{text: "<b>Итоги за день</b>"},
		{text: ratesSection(s.Rates)},
		{text: amountsSection(s.SumNoDiscount, s.SumDiscount, s.Total, -1, -1)},
		{text: payoutsSection(s.Policy, s.SumNoDiscount, s.SumDiscount, s.PayoutNoDiscount, s.PayoutDiscount, s.PayoutTotal)},
		{text: verificationSection("<b>Проверьте суммы в рублях (без скидки):</b>", s.CheckNoDiscount), verification: true},
		{text: verificationSection("<b>Проверьте суммы в рублях (со скидкой):</b>", s.CheckDiscount), verification: true},
	}

	full := join(sections, true)
	if utf8.RuneCountInString(full) <= budget {
		return full
	}
	return join(sections, false) + "\n\n" + TruncatedNote
}

// RenderDaily формирует отчёт по записям учёта за день. Курсы диапазонов в нём не участвуют.
func RenderDaily(t domain.DailyTotals, policy domain.PayoutPolicy) string {
	date := t.Date.Format(dateLayout)
	if t.CountNoDiscount+t.CountDiscount == 0 {
		return fmt.Sprintf("За %s записей нет.", date)
	}
	sections := []section{
		{text: fmt.Sprintf("<b>Итоги за %s</b>", date)},
		{text: amountsSection(t.SumNoDiscount, t.SumDiscount, t.Total, t.CountNoDiscount, t.CountDiscount)},
		{text: payoutsSection(policy, t.SumNoDiscount, t.SumDiscount, t.PayoutNoDiscount, t.PayoutDiscount, t.PayoutTotal)},
	}
	return join(sections, true)
}

// RenderRemoval описывает удалённые записи для компенсирующего сообщения.
func RenderRemoval(title string, r domain.Removal) string {
	if r.Count == 0 {
		return title + "\nЗаписей не найдено."
	}
	lines := []string{
		title,
		fmt.Sprintf("Удалено записей: %d", r.Count),
		"Без скидки: −" + FormatCNY(r.SumNoDiscount),
		"Со скидкой: −" + FormatCNY(r.SumDiscount),
		"Всего: <b>−" + FormatCNY(r.Total()) + "</b>",
	}
	return strings.Join(lines, "\n")
}

// RenderUndo описывает результат отмены последнего сообщения.
func RenderUndo(res domain.UndoResult) string {
	if !res.Found {
		return "Сегодня нет ваших записей для отмены."
	}
	return RenderRemoval(fmt.Sprintf("<b>Отменено сообщение #%d</b>", res.Key.MessageID), res.Removal)
}

// RenderClear описывает очистку дня.
func RenderClear(date time.Time, r domain.Removal) string {
	return RenderRemoval(fmt.Sprintf("<b>Очищены записи за %s</b>", date.Format(dateLayout)), r)
}

func join(sections []section, withVerification bool) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.verification && !withVerification {
			continue
		}
		parts = append(parts, s.text)
	}
	return strings.Join(parts, "\n\n")
}

func ratesSection(r domain.RateTable) string {
	lines := []string{
		"<b>Курсы (₽/¥):</b>",
		"≥ 30000 ¥: <b>" + r.GE30000.String() + "</b>",
		"10000–30000 ¥: <b>" + r.R10000To30000.String() + "</b>",
		"3000–10000 ¥: <b>" + r.R3000To10000.String() + "</b>",
		"1000–3000 ¥: <b>" + r.R1000To3000.String() + "</b>",
		"&lt; 1000 ¥: <b>" + r.LT1000.String() + "</b>",
	}
	return strings.Join(lines, "\n")
}

// amountsSection выводит суммы; отрицательные счётчики означают, что количество не показывается.
func amountsSection(sumNo, sumDisc, total decimal.Decimal, countNo, countDisc int) string {
	lines := []string{
		"<b>Суммы в юанях:</b>",
		"Без скидки: " + FormatCNY(sumNo) + counter(countNo),
		"Со скидкой: " + FormatCNY(sumDisc) + counter(countDisc),
		"Всего: <b>" + FormatCNY(total) + "</b>",
	}
	return strings.Join(lines, "\n")
}

func counter(n int) string {
	if n < 0 {
		return ""
	}
	return fmt.Sprintf(" (%d шт.)", n)
}

func payoutsSection(p domain.PayoutPolicy, sumNo, sumDisc, payoutNo, payoutDisc, total decimal.Decimal) string {
	lines := []string{
		"<b>Выплаты партнёру:</b>",
		fmt.Sprintf("Без скидки: %s × %s ₽/¥ = <b>%s</b>", FormatCNY(sumNo), p.PayNoDiscount.StringFixed(2), FormatRUB(payoutNo)),
		fmt.Sprintf("Со скидкой: %s × %s ₽/¥ = <b>%s</b>", FormatCNY(sumDisc), p.PayDiscount.StringFixed(2), FormatRUB(payoutDisc)),
		"Итого к выплате: <b>" + FormatRUB(total) + "</b>",
	}
	return strings.Join(lines, "\n")
}

func verificationSection(title string, lines []domain.VerificationLine) string {
	var b strings.Builder
	b.WriteString(title)
	if len(lines) == 0 {
		b.WriteString("\n—")
		return b.String()
	}
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("\n• %s × (%s + %s) = %s",
			FormatCNY(l.Amount), l.Rate.StringFixed(4), l.Additive.StringFixed(2), FormatRUB(l.Rub)))
	}
	return b.String()
}
