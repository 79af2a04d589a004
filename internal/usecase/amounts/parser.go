// Package amounts разбирает столбик сумм в юанях на заявки без скидки и со скидкой.
package amounts

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

var (
	discountTags   = map[string]struct{}{"s": {}, "so": {}, "скидка": {}, "со": {}, "с": {}, "disc": {}, "d": {}}
	noDiscountTags = map[string]struct{}{"ns": {}, "no": {}, "без": {}, "b": {}, "nd": {}}
)

// Result содержит распознанные суммы в порядке ввода.
type Result struct {
	NoDiscount []decimal.Decimal
	Discount   []decimal.Decimal
}

// Empty сообщает, что не распознано ни одной суммы.
func (r Result) Empty() bool {
	return len(r.NoDiscount) == 0 && len(r.Discount) == 0
}

// Err возвращает domain.ErrEmptyAmounts, если не распознано ни одной суммы.
func (r Result) Err() error {
	if r.Empty() {
		return domain.ErrEmptyAmounts
	}
	return nil
}

// Count возвращает общее количество сумм.
func (r Result) Count() int {
	return len(r.NoDiscount) + len(r.Discount)
}

// Parser разбирает многострочный текст. Нулевое значение понимает только +/- и хвостовые теги.
type Parser struct {
	// TagPrefixes включает префиксы bs<сумма> (без скидки) и s<сумма> (со скидкой).
	TagPrefixes bool
}

// Parse разбирает текст парсером с включёнными префиксами bs/s.
func Parse(text string) Result {
	return Parser{TagPrefixes: true}.Parse(text)
}

// Parse разбирает текст построчно. Нераспознанные строки пропускаются.
func (p Parser) Parse(text string) Result {
	var res Result
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\t", "\n"), "\n") {
		amount, class, ok := p.parseLine(raw)
		if !ok {
			continue
		}
		if class == domain.Discount {
			res.Discount = append(res.Discount, amount)
		} else {
			res.NoDiscount = append(res.NoDiscount, amount)
		}
	}
	return res
}

func (p Parser) parseLine(raw string) (decimal.Decimal, domain.Classification, bool) {
	line := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), ",", ".")
	if line == "" {
		return decimal.Decimal{}, "", false
	}

	var mark domain.Classification
	switch {
	case strings.HasPrefix(line, "+"):
		mark = domain.NoDiscount
		line = strings.TrimSpace(line[1:])
	case strings.HasPrefix(line, "-"):
		mark = domain.Discount
		line = strings.TrimSpace(line[1:])
	case p.TagPrefixes:
		if class, rest, ok := splitTagPrefix(line); ok {
			mark = class
			line = rest
		}
	}

	parts := strings.Fields(line)
	var token string
	if len(parts) > 0 {
		token = parts[0]
	}
	amount, ok := parseAmount(token)
	if !ok || !amount.IsPositive() {
		return decimal.Decimal{}, "", false
	}

	if mark == "" && len(parts) > 1 {
		if _, found := discountTags[parts[1]]; found {
			mark = domain.Discount
		} else if _, found := noDiscountTags[parts[1]]; found {
			mark = domain.NoDiscount
		}
	}
	if mark == "" {
		mark = domain.NoDiscount
	}
	return amount, mark, true
}

// splitTagPrefix склеивает строку без пробелов и отделяет префикс bs или s.
func splitTagPrefix(line string) (domain.Classification, string, bool) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
	switch {
	case strings.HasPrefix(compact, "bs"):
		return domain.NoDiscount, compact[2:], true
	case strings.HasPrefix(compact, "s"):
		return domain.Discount, compact[1:], true
	}
	return "", line, false
}

// Допустимый порядок числа. 1e5 ещё сумма, 2e400000000 уже нет:
// с таким показателем любая арифметика над decimal не завершается.
const (
	maxExponent = 12
	minExponent = -28
)

// parseAmount разбирает число, а при неудаче повторяет попытку по цифрам, точкам и минусам.
func parseAmount(token string) (decimal.Decimal, bool) {
	if token == "" {
		return decimal.Decimal{}, false
	}
	if v, err := decimal.NewFromString(token); err == nil {
		return v, inRange(v)
	}
	filtered := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, token)
	if filtered == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(filtered)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, inRange(v)
}

func inRange(v decimal.Decimal) bool {
	exp := v.Exponent()
	return exp >= minExponent && exp <= maxExponent
}
