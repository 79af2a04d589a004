package domain

// DialogStep обозначает шаг диалога сбора курсов и сумм.
type DialogStep string

const (
	StepIdle             DialogStep = ""
	StepRateGE30000      DialogStep = "rate_ge_30000"
	StepRate10000To30000 DialogStep = "rate_10000_30000"
	StepRate3000To10000  DialogStep = "rate_3000_10000"
	StepRate1000To3000   DialogStep = "rate_1000_3000"
	StepRateLT1000       DialogStep = "rate_lt_1000"
	StepAmounts          DialogStep = "amounts"
)

// DialogSession хранит текущий шаг и частично заполненную таблицу курсов.
type DialogSession struct {
	Step  DialogStep `json:"step"`
	Rates RateTable  `json:"rates"`
}

// Active сообщает, идёт ли диалог.
func (s DialogSession) Active() bool {
	return s.Step != StepIdle
}
