package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exchange-payout-bot/internal/domain"
)

// Sessions хранит состояние диалога расчёта в кэше в виде JSON.
type Sessions struct {
	cache domain.Cache
	ttl   time.Duration
}

var _ domain.SessionStore = (*Sessions)(nil)

// NewSessions создаёт хранилище сессий. Сессия живёт ttl после последнего сохранения.
func NewSessions(cache domain.Cache, ttl time.Duration) *Sessions {
	return &Sessions{cache: cache, ttl: ttl}
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("dialog:%d:%d", chatID, userID)
}

// Load возвращает сессию или пустую, если её нет.
func (s *Sessions) Load(ctx context.Context, chatID, userID int64) (domain.DialogSession, error) {
	data, err := s.cache.Get(ctx, sessionKey(chatID, userID))
	if errors.Is(err, domain.ErrCacheMiss) {
		return domain.DialogSession{}, nil
	}
	if err != nil {
		return domain.DialogSession{}, err
	}
	var session domain.DialogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.DialogSession{}, fmt.Errorf("сессия диалога: %w", err)
	}
	return session, nil
}

// Save сохраняет сессию. Неактивная сессия удаляется.
func (s *Sessions) Save(ctx context.Context, chatID, userID int64, session domain.DialogSession) error {
	if !session.Active() {
		return s.Reset(ctx, chatID, userID)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKey(chatID, userID), data, s.ttl)
}

// Reset завершает диалог.
func (s *Sessions) Reset(ctx context.Context, chatID, userID int64) error {
	return s.cache.Delete(ctx, sessionKey(chatID, userID))
}
