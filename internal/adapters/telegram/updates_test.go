package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestWebhookHandlerDecodesUpdate(t *testing.T) {
	var got tgbotapi.Update
	h := WebhookHandler(func(_ context.Context, upd tgbotapi.Update) { got = upd })

	body := `{"update_id":42,"edited_message":{"message_id":7,"date":1,"chat":{"id":-100,"type":"channel"},"text":"+1500"}}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bot/webhook", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UpdateID != 42 || got.EditedMessage == nil || got.EditedMessage.Text != "+1500" {
		t.Fatalf("unexpected update: %+v", got)
	}
}

func TestWebhookHandlerRejectsGarbage(t *testing.T) {
	called := false
	h := WebhookHandler(func(context.Context, tgbotapi.Update) { called = true })
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bot/webhook", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest || called {
		t.Fatalf("expected 400 without handler call, got %d called=%v", rec.Code, called)
	}
}
