// Package dialog ведёт пошаговый сбор пяти курсов и столбика сумм для расчёта выплаты.
package dialog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/usecase/amounts"
	"exchange-payout-bot/internal/usecase/report"
	"exchange-payout-bot/internal/usecase/settlement"
)

// Keyboard задаёт клавиатуру, которую нужно показать вместе с ответом.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMain
	KeyboardCancel
)

const (
	ButtonCalc   = "📊 Расчёт прибыли"
	ButtonCancel = "🚫 Отмена"

	GreetingText  = "Привет! Этот бот считает ежедневную выплату партнёру по обмену. Выбери действие:"
	CancelledText = "Отменено. Возвращаю в главное меню."
	amountsText   = "Введите <b>в ОДИН столбик</b> суммы юаней.\n" +
		"Отмечайте тип заявки:\n" +
		"• <b>+1500</b> — без скидки\n" +
		"• <b>-2600</b> — со скидкой\n" +
		"Также можно: <code>1500 ns</code> (без) или <code>2600 s</code> (со).\n" +
		"Пример:\n<code>\n+1500\n-900\n+12000\n-2600\n</code>"
	noAmountsText = "Не нашёл чисел. Пример:\n<code>\n+1500\n-900\n+12000\n-2600\n</code>"
)

type rateStep struct {
	step    domain.DialogStep
	bracket domain.Bracket
	prompt  string
	example string
}

var rateSteps = []rateStep{
	{domain.StepRateGE30000, domain.BracketGE30000, "Какой был курс сегодня <b>от 30000 юаней</b>? (в ₽ за 1 ¥)", "11.75"},
	{domain.StepRate10000To30000, domain.Bracket10000To30000, "Какой курс был <b>от 10000 до 30000 юаней</b>? (₽/¥)", "11.80"},
	{domain.StepRate3000To10000, domain.Bracket3000To10000, "Какой был курс <b>от 3000 до 10000 юаней</b>? (₽/¥)", "11.85"},
	{domain.StepRate1000To3000, domain.Bracket1000To3000, "Какой был курс <b>от 1000 до 3000 юаней</b>? (₽/¥)", "11.90"},
	{domain.StepRateLT1000, domain.BracketLT1000, "Какой был курс <b>до 1000 юаней</b>? (₽/¥)", "12.00"},
}

// Outcome описывает ответ пользователю на очередной шаг.
type Outcome struct {
	Reply    string
	Keyboard Keyboard
	// Settlement заполнен, когда расчёт завершён.
	Settlement *domain.Settlement
}

// Wizard ведёт диалог как конечный автомат. Состояние хранится снаружи в domain.DialogSession.
type Wizard struct {
	policy domain.PayoutPolicy
	parser amounts.Parser
	budget int
}

// NewWizard создаёт диалог расчёта.
func NewWizard(policy domain.PayoutPolicy, parser amounts.Parser, budget int) *Wizard {
	return &Wizard{policy: policy, parser: parser, budget: budget}
}

// Start начинает сбор курсов с пустой таблицей.
func (w *Wizard) Start() (domain.DialogSession, Outcome) {
	first := rateSteps[0]
	return domain.DialogSession{Step: first.step}, Outcome{Reply: first.prompt, Keyboard: KeyboardCancel}
}

// Cancel сбрасывает диалог.
func (w *Wizard) Cancel() (domain.DialogSession, Outcome) {
	return domain.DialogSession{}, Outcome{Reply: CancelledText, Keyboard: KeyboardMain}
}

// Handle обрабатывает ввод на текущем шаге и возвращает новое состояние.
func (w *Wizard) Handle(s domain.DialogSession, text string) (domain.DialogSession, Outcome, error) {
	if s.Step == domain.StepAmounts {
		return w.handleAmounts(s, text)
	}
	for i, rs := range rateSteps {
		if rs.step != s.Step {
			continue
		}
		rate, err := ParseRate(text)
		if err != nil {
			return s, Outcome{Reply: "Введите положительное число, например: " + rs.example}, nil
		}
		s.Rates = s.Rates.With(rs.bracket, rate)
		if i+1 < len(rateSteps) {
			next := rateSteps[i+1]
			s.Step = next.step
			return s, Outcome{Reply: next.prompt}, nil
		}
		s.Step = domain.StepAmounts
		return s, Outcome{Reply: amountsText, Keyboard: KeyboardCancel}, nil
	}
	return domain.DialogSession{}, Outcome{}, fmt.Errorf("неизвестный шаг диалога %q", s.Step)
}

func (w *Wizard) handleAmounts(s domain.DialogSession, text string) (domain.DialogSession, Outcome, error) {
	parsed := w.parser.Parse(text)
	if parsed.Err() != nil {
		return s, Outcome{Reply: noAmountsText}, nil
	}
	result, err := settlement.Calculate(s.Rates, w.policy, parsed.NoDiscount, parsed.Discount)
	if err != nil {
		return s, Outcome{}, err
	}
	return domain.DialogSession{}, Outcome{
		Reply:      report.RenderSettlement(result, w.budget),
		Keyboard:   KeyboardMain,
		Settlement: &result,
	}, nil
}

// ParseRate разбирает курс: положительное число, допускается десятичная запятая.
func ParseRate(text string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidRate, text)
	}
	return rate, nil
}
