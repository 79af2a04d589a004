package repo

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

// Memory хранит учёт в памяти процесса. Используется в режиме разработки без PG_DSN и в тестах.
type Memory struct {
	mu       sync.Mutex
	messages map[domain.MessageKey]domain.LedgerMessage
	entries  []domain.LedgerEntry
}

var _ domain.LedgerRepo = (*Memory)(nil)

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{messages: make(map[domain.MessageKey]domain.LedgerMessage)}
}

// ReplaceMessage реализует domain.LedgerRepo.
func (m *Memory) ReplaceMessage(_ context.Context, r domain.Replacement) error {
	if err := validate(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := r.Message.Key
	msg := r.Message
	if stored, ok := m.messages[key]; ok {
		if !msg.Supersedes(stored) {
			return domain.ErrStaleRevision
		}
		if stored.Revision > msg.Revision {
			msg.Revision = stored.Revision
		}
	}
	m.removeLocked(func(e domain.LedgerEntry) bool { return e.Key() == key })
	m.entries = append(m.entries, r.Entries...)
	m.messages[key] = msg
	return nil
}

// DeleteMessage реализует domain.LedgerRepo.
func (m *Memory) DeleteMessage(_ context.Context, key domain.MessageKey) (domain.Removal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removal := m.removeLocked(func(e domain.LedgerEntry) bool { return e.Key() == key })
	delete(m.messages, key)
	return removal, nil
}

// UndoLatest реализует domain.LedgerRepo.
func (m *Memory) UndoLatest(_ context.Context, senderID int64, date time.Time) (domain.UndoResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		latest domain.LedgerMessage
		found  bool
	)
	for _, msg := range m.messages {
		if msg.SenderID == nil || *msg.SenderID != senderID || !sameDay(msg.Date, date) {
			continue
		}
		if !found || msg.IngestedAt.After(latest.IngestedAt) ||
			(msg.IngestedAt.Equal(latest.IngestedAt) && msg.Key.MessageID > latest.Key.MessageID) {
			latest = msg
			found = true
		}
	}
	if !found {
		return domain.UndoResult{}, nil
	}

	key := latest.Key
	removal := m.removeLocked(func(e domain.LedgerEntry) bool {
		return e.Key() == key && e.SenderID != nil && *e.SenderID == senderID
	})
	delete(m.messages, key)
	return domain.UndoResult{Found: true, Key: key, Removal: removal}, nil
}

// DeleteDay реализует domain.LedgerRepo.
func (m *Memory) DeleteDay(_ context.Context, date time.Time) (domain.Removal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removal := m.removeLocked(func(e domain.LedgerEntry) bool { return sameDay(e.Date, date) })
	for key, msg := range m.messages {
		if sameDay(msg.Date, date) {
			delete(m.messages, key)
		}
	}
	return removal, nil
}

// SumDay реализует domain.LedgerRepo.
func (m *Memory) SumDay(_ context.Context, date time.Time) (domain.DailyTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := domain.DailyTotals{Date: date, SumNoDiscount: decimal.Zero, SumDiscount: decimal.Zero}
	for _, e := range m.entries {
		if !sameDay(e.Date, date) {
			continue
		}
		switch e.Classification {
		case domain.NoDiscount:
			totals.CountNoDiscount++
			totals.SumNoDiscount = totals.SumNoDiscount.Add(e.Amount)
		case domain.Discount:
			totals.CountDiscount++
			totals.SumDiscount = totals.SumDiscount.Add(e.Amount)
		}
	}
	return totals, nil
}

// Entries возвращает копию всех записей.
func (m *Memory) Entries() []domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Memory) removeLocked(match func(domain.LedgerEntry) bool) domain.Removal {
	removal := domain.Removal{SumNoDiscount: decimal.Zero, SumDiscount: decimal.Zero}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !match(e) {
			kept = append(kept, e)
			continue
		}
		removal.Count++
		if e.Classification == domain.Discount {
			removal.SumDiscount = removal.SumDiscount.Add(e.Amount)
		} else {
			removal.SumNoDiscount = removal.SumNoDiscount.Add(e.Amount)
		}
	}
	m.entries = kept
	return removal
}

// sameDay сравнивает календарные даты без учёта часового пояса значения.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
