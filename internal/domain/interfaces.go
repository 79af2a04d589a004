package domain

import (
	"context"
	"time"
)

// LedgerRepo хранит записи учёта. Каждая операция выполняется целиком или не выполняется.
type LedgerRepo interface {
	// ReplaceMessage удаляет все записи сообщения и вставляет новые в одной транзакции.
	// Если сохранена более поздняя ревизия, ничего не меняет и возвращает ErrStaleRevision.
	ReplaceMessage(ctx context.Context, r Replacement) error
	// DeleteMessage удаляет записи сообщения и возвращает удалённые итоги.
	DeleteMessage(ctx context.Context, key MessageKey) (Removal, error)
	// UndoLatest удаляет последнюю по времени приёма группу отправителя за дату.
	UndoLatest(ctx context.Context, senderID int64, date time.Time) (UndoResult, error)
	// DeleteDay удаляет все записи за дату.
	DeleteDay(ctx context.Context, date time.Time) (Removal, error)
	// SumDay возвращает количества и суммы по классификациям за дату.
	SumDay(ctx context.Context, date time.Time) (DailyTotals, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SessionStore хранит состояние диалога расчёта для пары чат-пользователь.
type SessionStore interface {
	Load(ctx context.Context, chatID, userID int64) (DialogSession, error)
	Save(ctx context.Context, chatID, userID int64, session DialogSession) error
	Reset(ctx context.Context, chatID, userID int64) error
}

// AuditSink принимает записи о завершённых расчётах.
type AuditSink interface {
	Record(ctx context.Context, record AuditRecord) error
}
