// Package ledger ведёт учёт сумм по исходным сообщениям и считает итоги дня.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/metrics"
	"exchange-payout-bot/internal/usecase/settlement"
)

// Service остаётся единственной точкой изменения записей учёта.
type Service struct {
	repo   domain.LedgerRepo
	policy domain.PayoutPolicy
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

// NewService создаёт сервис учёта. Даты записей считаются в зоне loc.
func NewService(repo domain.LedgerRepo, policy domain.PayoutPolicy, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, policy: policy, loc: loc, now: time.Now, log: log}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Location возвращает часовой пояс учёта.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today возвращает текущую календарную дату в зоне учёта.
func (s *Service) Today() time.Time {
	return dateOf(s.now(), s.loc)
}

// Replace полностью заменяет вклад сообщения: старые записи удаляются, новые вставляются
// одной операцией. Пустые списки удаляют вклад сообщения, но время приёма обновляется.
func (s *Service) Replace(ctx context.Context, key domain.MessageKey, senderID *int64, noDiscount, discount []decimal.Decimal) (int, error) {
	return s.ReplaceRevision(ctx, key, senderID, 0, noDiscount, discount)
}

// ReplaceRevision работает как Replace, но не даёт старой версии сообщения
// перезаписать более новую. Для устаревшей версии возвращается domain.ErrStaleRevision.
func (s *Service) ReplaceRevision(ctx context.Context, key domain.MessageKey, senderID *int64, revision int64, noDiscount, discount []decimal.Decimal) (int, error) {
	now := s.now().In(s.loc)
	date := dateOf(now, s.loc)

	r := domain.Replacement{
		Message: domain.LedgerMessage{Key: key, SenderID: senderID, Date: date, IngestedAt: now, Revision: revision},
		Entries: make([]domain.LedgerEntry, 0, len(noDiscount)+len(discount)),
	}
	appendEntries := func(class domain.Classification, values []decimal.Decimal) {
		for _, v := range values {
			r.Entries = append(r.Entries, domain.LedgerEntry{
				ID:             uuid.New(),
				IngestedAt:     now,
				Date:           date,
				Amount:         v,
				Classification: class,
				ChatID:         key.ChatID,
				MessageID:      key.MessageID,
				SenderID:       senderID,
			})
		}
	}
	appendEntries(domain.NoDiscount, noDiscount)
	appendEntries(domain.Discount, discount)

	err := s.repo.ReplaceMessage(ctx, r)
	if errors.Is(err, domain.ErrStaleRevision) {
		metrics.ObserveLedgerOperation("replace_stale", nil)
		s.log.Debug().Int64("chat", key.ChatID).Int64("message", key.MessageID).Int64("revision", revision).Msg("ledger: устаревшая версия сообщения пропущена")
		return 0, fmt.Errorf("замена записей сообщения %d: %w", key.MessageID, err)
	}
	metrics.ObserveLedgerOperation("replace", err)
	if err != nil {
		return 0, fmt.Errorf("замена записей сообщения %d: %w", key.MessageID, err)
	}
	s.log.Debug().Int64("chat", key.ChatID).Int64("message", key.MessageID).Int("entries", len(r.Entries)).Msg("ledger: сообщение учтено")
	return len(r.Entries), nil
}

// DeleteByMessage удаляет все записи сообщения и возвращает удалённые итоги.
func (s *Service) DeleteByMessage(ctx context.Context, key domain.MessageKey) (domain.Removal, error) {
	removal, err := s.repo.DeleteMessage(ctx, key)
	metrics.ObserveLedgerOperation("delete_message", err)
	if err != nil {
		return domain.Removal{}, fmt.Errorf("удаление записей сообщения %d: %w", key.MessageID, err)
	}
	return removal, nil
}

// UndoLastForSender отменяет последнее по времени приёма сообщение отправителя за сегодня.
func (s *Service) UndoLastForSender(ctx context.Context, senderID int64) (domain.UndoResult, error) {
	res, err := s.repo.UndoLatest(ctx, senderID, s.Today())
	metrics.ObserveLedgerOperation("undo", err)
	if err != nil {
		return domain.UndoResult{}, fmt.Errorf("отмена последнего сообщения %d: %w", senderID, err)
	}
	return res, nil
}

// ClearDay удаляет все записи за дату.
func (s *Service) ClearDay(ctx context.Context, date time.Time) (domain.Removal, error) {
	removal, err := s.repo.DeleteDay(ctx, dateOf(date, s.loc))
	metrics.ObserveLedgerOperation("clear_day", err)
	if err != nil {
		return domain.Removal{}, fmt.Errorf("очистка дня: %w", err)
	}
	return removal, nil
}

// Aggregate пересчитывает итоги дня из записей учёта.
func (s *Service) Aggregate(ctx context.Context, date time.Time) (domain.DailyTotals, error) {
	day := dateOf(date, s.loc)
	totals, err := s.repo.SumDay(ctx, day)
	metrics.ObserveLedgerOperation("aggregate", err)
	if err != nil {
		return domain.DailyTotals{}, fmt.Errorf("итоги дня: %w", err)
	}
	totals.Date = day
	totals.Total = totals.SumNoDiscount.Add(totals.SumDiscount)
	totals.PayoutNoDiscount, totals.PayoutDiscount, totals.PayoutTotal = settlement.Payouts(s.policy, totals.SumNoDiscount, totals.SumDiscount)
	return totals, nil
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
