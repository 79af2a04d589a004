package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney округляет до двух знаков и разделяет тысячи пробелом: 1234567.891 → "1 234 567.89".
func FormatMoney(x decimal.Decimal) string {
	return groupThousands(x.StringFixed(2))
}

// FormatRUB форматирует сумму в рублях.
func FormatRUB(x decimal.Decimal) string {
	return FormatMoney(x) + " ₽"
}

// FormatCNY форматирует сумму в юанях.
func FormatCNY(x decimal.Decimal) string {
	return FormatMoney(x) + " ¥"
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, hasFrac := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		if hasFrac {
			return sign + intPart + "." + frac
		}
		return sign + intPart
	}
	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteString("." + frac)
	}
	return sign + b.String()
}
