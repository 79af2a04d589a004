package telegram

import (
	"context"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// UpdateHandler обрабатывает один апдейт.
type UpdateHandler func(ctx context.Context, upd tgbotapi.Update)

// WebhookHandler декодирует апдейт из тела запроса и передаёт его обработчику.
// Обработка не прерывается, если Telegram закрыл соединение раньше времени.
func WebhookHandler(handle UpdateHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handle(context.WithoutCancel(r.Context()), update)
		w.WriteHeader(http.StatusOK)
	})
}

// Poll получает апдейты long polling до отмены ctx. Каждый апдейт обрабатывается в своей горутине.
func Poll(ctx context.Context, bot *tgbotapi.BotAPI, log zerolog.Logger, handle UpdateHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "edited_message", "channel_post", "edited_channel_post", "callback_query"}
	updates := bot.GetUpdatesChan(u)
	log.Info().Msg("telegram: long polling запущен")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			go handle(ctx, upd)
		}
	}
}
