package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/metrics"
	"exchange-payout-bot/internal/usecase/dialog"
)

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil {
		if err := h.sessions.Reset(ctx, msg.Chat.ID, msg.From.ID); err != nil {
			h.log.Warn().Err(err).Msg("не удалось сбросить диалог")
		}
	}
	h.reply(msg.Chat.ID, dialog.GreetingText, mainKeyboard())
}

func (h *Handler) handleCalc(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		h.reply(msg.Chat.ID, "Не удалось определить пользователя", nil)
		return
	}
	session, out := h.wizard.Start()
	if err := h.sessions.Save(ctx, msg.Chat.ID, msg.From.ID, session); err != nil {
		h.log.Error().Err(err).Msg("не удалось сохранить диалог")
		h.reply(msg.Chat.ID, storeFailedText, nil)
		return
	}
	h.reply(msg.Chat.ID, out.Reply, keyboardFor(out.Keyboard))
}

func (h *Handler) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil {
		if err := h.sessions.Reset(ctx, msg.Chat.ID, msg.From.ID); err != nil {
			h.log.Warn().Err(err).Msg("не удалось сбросить диалог")
		}
	}
	_, out := h.wizard.Cancel()
	h.reply(msg.Chat.ID, out.Reply, keyboardFor(out.Keyboard))
}

func (h *Handler) handleDialogInput(ctx context.Context, msg *tgbotapi.Message, text string) {
	switch text {
	case dialog.ButtonCalc:
		h.handleCalc(ctx, msg)
		return
	case dialog.ButtonCancel:
		h.handleCancel(ctx, msg)
		return
	}
	if msg.From == nil {
		return
	}

	chatID, userID := msg.Chat.ID, msg.From.ID
	session, err := h.sessions.Load(ctx, chatID, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user", userID).Msg("не удалось загрузить диалог")
		h.reply(chatID, storeFailedText, nil)
		return
	}
	if !session.Active() {
		if msg.Chat.IsPrivate() {
			h.reply(chatID, "Выберите действие:", mainKeyboard())
		}
		return
	}

	next, out, err := h.wizard.Handle(session, text)
	if err != nil {
		h.log.Error().Err(err).Int64("user", userID).Str("step", string(session.Step)).Msg("диалог прерван")
		_ = h.sessions.Reset(ctx, chatID, userID)
		h.reply(chatID, "Расчёт прерван, начните заново.", mainKeyboard())
		return
	}
	if err := h.sessions.Save(ctx, chatID, userID, next); err != nil {
		h.log.Error().Err(err).Int64("user", userID).Msg("не удалось сохранить диалог")
	}
	if out.Settlement != nil {
		metrics.SettlementsTotal.Inc()
		h.recordAudit(ctx, *out.Settlement)
	}
	h.reply(chatID, out.Reply, keyboardFor(out.Keyboard))
}

// recordAudit пишет расчёт в журнал. Ошибка журнала пользователю не показывается.
func (h *Handler) recordAudit(ctx context.Context, s domain.Settlement) {
	if h.audit == nil {
		return
	}
	rec := domain.AuditRecordFromSettlement(s, h.now(), h.ledger.Location())
	if err := h.audit.Record(ctx, rec); err != nil {
		h.log.Warn().Err(err).Msg("не удалось записать расчёт в журнал")
	}
}
