package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/metrics"
	"exchange-payout-bot/internal/usecase/report"
)

const (
	callbackClearConfirm = "clear_today_confirm"
	callbackClearCancel  = "clear_today_cancel"

	storeFailedText = "Не удалось выполнить операцию, попробуйте позже."
	helpText        = "Команды учёта: /report, /undo, /delete &lt;id&gt;, /clear_today, /whoami"
)

// ingest заменяет вклад сообщения учётного чата. Новое сообщение без сумм пропускается,
// правка заменяет записи всегда, в том числе пустым набором.
func (h *Handler) ingest(ctx context.Context, msg *tgbotapi.Message, text string, edited bool, revision int64) {
	parsed := h.parser.Parse(text)
	if parsed.Empty() && !edited {
		metrics.IncIngested("ignored")
		return
	}
	key := domain.MessageKey{ChatID: msg.Chat.ID, MessageID: int64(msg.MessageID)}
	n, err := h.ledger.ReplaceRevision(ctx, key, senderOf(msg), revision, parsed.NoDiscount, parsed.Discount)
	if errors.Is(err, domain.ErrStaleRevision) {
		metrics.IncIngested("stale")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("chat", key.ChatID).Int64("message", key.MessageID).Msg("ledger: не удалось учесть сообщение")
		return
	}
	kind := "new"
	if edited {
		kind = "edited"
	}
	metrics.IncIngested(kind)
	h.log.Info().Int64("chat", key.ChatID).Int64("message", key.MessageID).Str("kind", kind).Int("entries", n).Msg("ledger: сообщение учтено")
}

func (h *Handler) handleReport(ctx context.Context, chatID int64) {
	totals, err := h.ledger.Aggregate(ctx, h.ledger.Today())
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось посчитать итоги дня")
		h.reply(chatID, storeFailedText, nil)
		return
	}
	h.reply(chatID, report.RenderDaily(totals, h.policy), nil)
}

func (h *Handler) handleClearRequest(chatID, actor int64) {
	h.mu.Lock()
	h.pendingClear[actor] = h.now()
	h.mu.Unlock()
	h.reply(chatID, "Отправьте /clear_today_confirm в течение 5 минут, чтобы удалить все записи за сегодня.", clearKeyboard())
}

func (h *Handler) handleClearConfirm(ctx context.Context, chatID, actor int64) {
	h.mu.Lock()
	requested, ok := h.pendingClear[actor]
	if ok && h.now().Sub(requested) > clearConfirmWindow {
		ok = false
	}
	delete(h.pendingClear, actor)
	h.mu.Unlock()
	if !ok {
		h.reply(chatID, "Запрос не найден. Сначала отправьте /clear_today", nil)
		return
	}

	today := h.ledger.Today()
	removal, err := h.ledger.ClearDay(ctx, today)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось очистить день")
		h.reply(chatID, storeFailedText, nil)
		return
	}
	h.log.Info().Int64("actor", actor).Int("entries", removal.Count).Msg("ledger: день очищен")
	h.reply(chatID, report.RenderClear(today, removal), nil)
}

func (h *Handler) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) {
	key, ok := deleteTarget(msg, args, h.ledgerChatID)
	if !ok {
		h.reply(msg.Chat.ID, "Укажите номер сообщения: <code>/delete 123</code> или ответьте командой на сообщение.", nil)
		return
	}
	removal, err := h.ledger.DeleteByMessage(ctx, key)
	if err != nil {
		h.log.Error().Err(err).Int64("message", key.MessageID).Msg("не удалось удалить записи сообщения")
		h.reply(msg.Chat.ID, storeFailedText, nil)
		return
	}
	h.reply(msg.Chat.ID, report.RenderRemoval(fmt.Sprintf("<b>Удалено сообщение #%d</b>", key.MessageID), removal), nil)
}

func (h *Handler) handleUndo(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		h.reply(msg.Chat.ID, "Не удалось определить отправителя", nil)
		return
	}
	res, err := h.ledger.UndoLastForSender(ctx, msg.From.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user", msg.From.ID).Msg("не удалось отменить последнее сообщение")
		h.reply(msg.Chat.ID, storeFailedText, nil)
		return
	}
	h.reply(msg.Chat.ID, report.RenderUndo(res), nil)
}

// deleteTarget определяет сообщение для /delete: явный номер в учётном чате
// (или в текущем, если учётный не задан) либо сообщение, на которое ответили.
func deleteTarget(msg *tgbotapi.Message, args string, ledgerChatID int64) (domain.MessageKey, bool) {
	if args != "" {
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil || id <= 0 {
			return domain.MessageKey{}, false
		}
		chatID := ledgerChatID
		if chatID == 0 {
			chatID = msg.Chat.ID
		}
		return domain.MessageKey{ChatID: chatID, MessageID: id}, true
	}
	if reply := msg.ReplyToMessage; reply != nil && reply.Chat != nil {
		return domain.MessageKey{ChatID: reply.Chat.ID, MessageID: int64(reply.MessageID)}, true
	}
	return domain.MessageKey{}, false
}

func whoamiText(userID, chatID int64) string {
	return fmt.Sprintf("Ваш ID: <code>%d</code>\nID чата: <code>%d</code>", userID, chatID)
}
