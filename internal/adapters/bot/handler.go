package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"exchange-payout-bot/internal/adapters/telegram"
	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/metrics"
	"exchange-payout-bot/internal/usecase/amounts"
	"exchange-payout-bot/internal/usecase/dialog"
	"exchange-payout-bot/internal/usecase/ledger"
)

const (
	updateDedupTTL     = 24 * time.Hour
	clearConfirmWindow = 5 * time.Minute
)

// Sender описывает часть tgbotapi.BotAPI, которой пользуется обработчик.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps собирает зависимости обработчика.
type Deps struct {
	Ledger       *ledger.Service
	Wizard       *dialog.Wizard
	Sessions     domain.SessionStore
	Cache        domain.Cache
	Audit        domain.AuditSink
	Access       domain.AllowList
	Parser       amounts.Parser
	Policy       domain.PayoutPolicy
	LedgerChatID int64
}

// Handler обслуживает апдейты бота: учётный чат, команды учёта и диалог расчёта.
type Handler struct {
	bot          Sender
	log          zerolog.Logger
	ledger       *ledger.Service
	wizard       *dialog.Wizard
	sessions     domain.SessionStore
	cache        domain.Cache
	audit        domain.AuditSink
	access       domain.AllowList
	parser       amounts.Parser
	policy       domain.PayoutPolicy
	ledgerChatID int64
	now          func() time.Time
	mu           sync.Mutex
	pendingClear map[int64]time.Time
}

// NewHandler создаёт обработчик.
func NewHandler(bot Sender, log zerolog.Logger, deps Deps) *Handler {
	return &Handler{
		bot:          bot,
		log:          log,
		ledger:       deps.Ledger,
		wizard:       deps.Wizard,
		sessions:     deps.Sessions,
		cache:        deps.Cache,
		audit:        deps.Audit,
		access:       deps.Access,
		parser:       deps.Parser,
		policy:       deps.Policy,
		ledgerChatID: deps.LedgerChatID,
		now:          time.Now,
		pendingClear: make(map[int64]time.Time),
	}
}

// HandleUpdate обрабатывает входящий апдейт. Повторная доставка того же апдейта игнорируется.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if h.cache == nil || upd.UpdateID == 0 {
		h.dispatch(ctx, upd)
		return
	}
	key := "update:" + strconv.Itoa(upd.UpdateID)
	err := h.cache.Once(ctx, key, updateDedupTTL, func() error {
		h.dispatch(ctx, upd)
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Int("update", upd.UpdateID).Msg("не удалось проверить повтор апдейта")
		h.dispatch(ctx, upd)
	}
}

func (h *Handler) dispatch(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		h.handleMessage(ctx, upd.Message, false, int64(upd.UpdateID))
	case upd.EditedMessage != nil:
		h.handleMessage(ctx, upd.EditedMessage, true, int64(upd.UpdateID))
	case upd.ChannelPost != nil:
		h.handleMessage(ctx, upd.ChannelPost, false, int64(upd.UpdateID))
	case upd.EditedChannelPost != nil:
		h.handleMessage(ctx, upd.EditedChannelPost, true, int64(upd.UpdateID))
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

// handleMessage получает номер апдейта как ревизию: апдейты нумеруются по порядку событий,
// а при long polling обрабатываются параллельно.
func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message, edited bool, revision int64) {
	if msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(messageText(msg))
	if cmd, args, ok := parseCommand(text); ok {
		if !edited {
			h.handleCommand(ctx, msg, cmd, args)
		}
		return
	}
	if h.isLedgerChat(msg.Chat.ID) {
		h.ingest(ctx, msg, text, edited, revision)
		return
	}
	if !edited {
		h.handleDialogInput(ctx, msg, text)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message, cmd, args string) {
	chatID := msg.Chat.ID
	switch cmd {
	case "start":
		h.handleStart(ctx, msg)
		return
	case "calc":
		h.handleCalc(ctx, msg)
		return
	case "cancel":
		h.handleCancel(ctx, msg)
		return
	}

	if !h.access.Allows(userIDOf(msg), chatID) {
		h.log.Debug().Str("cmd", cmd).Int64("user", userIDOf(msg)).Int64("chat", chatID).Msg("команда отклонена")
		return
	}
	switch cmd {
	case "report":
		h.handleReport(ctx, chatID)
	case "clear_today":
		h.handleClearRequest(chatID, actorOf(msg))
	case "clear_today_confirm":
		h.handleClearConfirm(ctx, chatID, actorOf(msg))
	case "delete":
		h.handleDelete(ctx, msg, args)
	case "undo":
		h.handleUndo(ctx, msg)
	case "whoami":
		h.reply(chatID, whoamiText(userIDOf(msg), chatID), nil)
	default:
		if msg.Chat.IsPrivate() {
			h.reply(chatID, helpText, nil)
		}
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message != nil && cb.Message.Chat != nil && cb.From != nil && h.access.Allows(cb.From.ID, cb.Message.Chat.ID) {
		chatID := cb.Message.Chat.ID
		switch cb.Data {
		case callbackClearConfirm:
			h.handleClearConfirm(ctx, chatID, cb.From.ID)
		case callbackClearCancel:
			h.mu.Lock()
			delete(h.pendingClear, cb.From.ID)
			h.mu.Unlock()
			h.reply(chatID, "Очистка отменена.", nil)
		}
	}
	start := time.Now()
	_, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", "callback", start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось ответить на callback")
	}
}

func (h *Handler) isLedgerChat(chatID int64) bool {
	return h.ledgerChatID != 0 && chatID == h.ledgerChatID
}

func (h *Handler) reply(chatID int64, text string, markup any) {
	parts := telegram.SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if i == len(parts)-1 && markup != nil {
			msg.ReplyMarkup = markup
		}
		start := time.Now()
		_, err := h.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", "chat", start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
			return
		}
	}
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// parseCommand выделяет имя команды без /, суффикса @bot и аргументы.
func parseCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		args = head[i+1:] + " " + args
		head = head[:i]
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(args), true
}

func userIDOf(msg *tgbotapi.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}

func senderOf(msg *tgbotapi.Message) *int64 {
	if msg.From == nil {
		return nil
	}
	id := msg.From.ID
	return &id
}

// actorOf возвращает ключ для подтверждений: пользователя, для постов канала ключом служит чат.
func actorOf(msg *tgbotapi.Message) int64 {
	if id := userIDOf(msg); id != 0 {
		return id
	}
	return msg.Chat.ID
}
