package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Classification определяет, по какой ставке выплачивается сумма.
type Classification string

const (
	// NoDiscount обозначает заявку без скидки.
	NoDiscount Classification = "no_discount"
	// Discount обозначает заявку со скидкой.
	Discount Classification = "discount"
)

// Valid сообщает, является ли значение допустимой классификацией.
func (c Classification) Valid() bool {
	return c == NoDiscount || c == Discount
}

// Bracket называет ценовой диапазон курса.
type Bracket string

const (
	BracketGE30000      Bracket = "ge_30000"
	Bracket10000To30000 Bracket = "r_10000_30000"
	Bracket3000To10000  Bracket = "r_3000_10000"
	Bracket1000To3000   Bracket = "r_1000_3000"
	BracketLT1000       Bracket = "lt_1000"
)

// Brackets перечисляет диапазоны в порядке сбора курсов.
var Brackets = []Bracket{BracketGE30000, Bracket10000To30000, Bracket3000To10000, Bracket1000To3000, BracketLT1000}

// RateTable хранит курсы ₽ за 1 ¥ по пяти диапазонам суммы.
// Нулевое значение означает, что курс ещё не введён.
type RateTable struct {
	GE30000       decimal.Decimal `json:"ge_30000"`
	R10000To30000 decimal.Decimal `json:"r_10000_30000"`
	R3000To10000  decimal.Decimal `json:"r_3000_10000"`
	R1000To3000   decimal.Decimal `json:"r_1000_3000"`
	LT1000        decimal.Decimal `json:"lt_1000"`
}

// Get возвращает курс диапазона.
func (t RateTable) Get(b Bracket) decimal.Decimal {
	switch b {
	case BracketGE30000:
		return t.GE30000
	case Bracket10000To30000:
		return t.R10000To30000
	case Bracket3000To10000:
		return t.R3000To10000
	case Bracket1000To3000:
		return t.R1000To3000
	default:
		return t.LT1000
	}
}

// With возвращает копию таблицы с установленным курсом диапазона.
func (t RateTable) With(b Bracket, rate decimal.Decimal) RateTable {
	switch b {
	case BracketGE30000:
		t.GE30000 = rate
	case Bracket10000To30000:
		t.R10000To30000 = rate
	case Bracket3000To10000:
		t.R3000To10000 = rate
	case Bracket1000To3000:
		t.R1000To3000 = rate
	case BracketLT1000:
		t.LT1000 = rate
	}
	return t
}

// Complete сообщает, заполнены ли все пять курсов положительными значениями.
func (t RateTable) Complete() bool {
	for _, b := range Brackets {
		if !t.Get(b).IsPositive() {
			return false
		}
	}
	return true
}

// MessageKey идентифицирует исходное сообщение в чате.
type MessageKey struct {
	ChatID    int64
	MessageID int64
}

// LedgerEntry хранит одну сумму, привязанную к исходному сообщению.
type LedgerEntry struct {
	ID             uuid.UUID
	IngestedAt     time.Time
	Date           time.Time
	Amount         decimal.Decimal
	Classification Classification
	ChatID         int64
	MessageID      int64
	SenderID       *int64
}

// Key возвращает ключ исходного сообщения.
func (e LedgerEntry) Key() MessageKey {
	return MessageKey{ChatID: e.ChatID, MessageID: e.MessageID}
}

// LedgerMessage описывает заголовок группы записей одного сообщения.
// Обновляется при каждой замене, в том числе пустой.
//
// Revision растёт вместе с версией исходного сообщения (номер апдейта Telegram).
// Замена с меньшей ревизией, чем сохранённая, отклоняется. Ноль означает, что
// порядок неизвестен: такая замена применяется всегда и ревизию не понижает.
type LedgerMessage struct {
	Key        MessageKey
	SenderID   *int64
	Date       time.Time
	IngestedAt time.Time
	Revision   int64
}

// Supersedes сообщает, может ли заголовок m заменить сохранённый stored.
func (m LedgerMessage) Supersedes(stored LedgerMessage) bool {
	return m.Revision == 0 || m.Revision >= stored.Revision
}

// Replacement описывает полную замену вклада сообщения в учёт.
type Replacement struct {
	Message LedgerMessage
	Entries []LedgerEntry
}

// Removal описывает удалённые записи.
type Removal struct {
	Count         int
	SumNoDiscount decimal.Decimal
	SumDiscount   decimal.Decimal
}

// Total возвращает общую сумму удалённых записей.
func (r Removal) Total() decimal.Decimal {
	return r.SumNoDiscount.Add(r.SumDiscount)
}

// UndoResult содержит результат отмены последнего сообщения отправителя.
type UndoResult struct {
	Found   bool
	Key     MessageKey
	Removal Removal
}

// DailyTotals содержит итоги дня, пересчитываемые из записей учёта.
type DailyTotals struct {
	Date             time.Time
	CountNoDiscount  int
	CountDiscount    int
	SumNoDiscount    decimal.Decimal
	SumDiscount      decimal.Decimal
	Total            decimal.Decimal
	PayoutNoDiscount decimal.Decimal
	PayoutDiscount   decimal.Decimal
	PayoutTotal      decimal.Decimal
}

// VerificationLine содержит проверочный расчёт одной суммы по курсу её диапазона.
// В выплату не входит.
type VerificationLine struct {
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	Additive decimal.Decimal
	Rub      decimal.Decimal
}

// Settlement содержит результат расчёта выплаты в диалоге.
type Settlement struct {
	Rates            RateTable
	Policy           PayoutPolicy
	SumNoDiscount    decimal.Decimal
	SumDiscount      decimal.Decimal
	Total            decimal.Decimal
	PayoutNoDiscount decimal.Decimal
	PayoutDiscount   decimal.Decimal
	PayoutTotal      decimal.Decimal
	CheckNoDiscount  []VerificationLine
	CheckDiscount    []VerificationLine
}
