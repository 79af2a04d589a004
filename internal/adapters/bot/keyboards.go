package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exchange-payout-bot/internal/usecase/dialog"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(dialog.ButtonCalc)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(dialog.ButtonCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func clearKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Очистить", callbackClearConfirm),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", callbackClearCancel),
		),
	)
}

// keyboardFor возвращает разметку для ответа диалога или nil.
func keyboardFor(k dialog.Keyboard) any {
	switch k {
	case dialog.KeyboardMain:
		return mainKeyboard()
	case dialog.KeyboardCancel:
		return cancelKeyboard()
	default:
		return nil
	}
}
