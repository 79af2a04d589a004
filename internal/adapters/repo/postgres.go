package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/metrics"
)

//go:embed schema.sql
var schemaSQL string

const dateLayout = "2006-01-02"

// Postgres реализует domain.LedgerRepo на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.LedgerRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Migrate создаёт таблицы учёта, если их ещё нет.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, schemaSQL)
	metrics.ObserveNetworkRequest("postgres", "migrate", "ledger", start, err)
	if err != nil {
		return fmt.Errorf("миграция схемы учёта: %w", err)
	}
	return nil
}

func (p *Postgres) begin(ctx context.Context, target string) (pgx.Tx, error) {
	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", target, start, err)
	return tx, err
}

func (p *Postgres) commit(ctx context.Context, tx pgx.Tx, target string) error {
	start := time.Now()
	err := tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", target, start, err)
	return err
}

// ReplaceMessage атомарно заменяет записи сообщения.
// Upsert заголовка берёт блокировку строки, поэтому параллельные замены одного
// сообщения выполняются по очереди. Если условие WHERE в ON CONFLICT не выполнено,
// строка не возвращается: сохранена более поздняя ревизия.
func (p *Postgres) ReplaceMessage(ctx context.Context, r domain.Replacement) error {
	if err := validate(r); err != nil {
		return err
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	tx, err := p.begin(ctx, "ledger_messages")
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	msg := r.Message
	var revision int64
	start := time.Now()
	err = tx.QueryRow(ctx, `
INSERT INTO ledger_messages (chat_id, message_id, sender_id, entry_date, ingested_at, revision)
VALUES ($1, $2, $3, $4::date, $5, $6)
ON CONFLICT (chat_id, message_id) DO UPDATE SET
    sender_id = EXCLUDED.sender_id,
    entry_date = EXCLUDED.entry_date,
    ingested_at = EXCLUDED.ingested_at,
    revision = GREATEST(ledger_messages.revision, EXCLUDED.revision)
WHERE EXCLUDED.revision = 0 OR EXCLUDED.revision >= ledger_messages.revision
RETURNING revision
`, msg.Key.ChatID, msg.Key.MessageID, nullInt64(msg.SenderID), msg.Date.Format(dateLayout), msg.IngestedAt, msg.Revision).Scan(&revision)
	metrics.ObserveNetworkRequest("postgres", "ledger_messages_upsert", "ledger_messages", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrStaleRevision
	}
	if err != nil {
		return err
	}

	start = time.Now()
	_, err = tx.Exec(ctx, `DELETE FROM ledger_entries WHERE chat_id=$1 AND message_id=$2`, msg.Key.ChatID, msg.Key.MessageID)
	metrics.ObserveNetworkRequest("postgres", "ledger_entries_delete_message", "ledger_entries", start, err)
	if err != nil {
		return err
	}

	if len(r.Entries) > 0 {
		batch := &pgx.Batch{}
		for _, e := range r.Entries {
			batch.Queue(`
INSERT INTO ledger_entries (id, ingested_at, entry_date, amount, classification, chat_id, message_id, sender_id)
VALUES ($1, $2, $3::date, $4::numeric, $5, $6, $7, $8)
`, e.ID, e.IngestedAt, e.Date.Format(dateLayout), e.Amount.String(), string(e.Classification), e.ChatID, e.MessageID, nullInt64(e.SenderID))
		}
		start = time.Now()
		br := tx.SendBatch(ctx, batch)
		for range r.Entries {
			if _, err = br.Exec(); err != nil {
				break
			}
		}
		closeErr := br.Close()
		if err == nil {
			err = closeErr
		}
		metrics.ObserveNetworkRequest("postgres", "ledger_entries_insert_batch", "ledger_entries", start, err)
		if err != nil {
			return err
		}
	}

	return p.commit(ctx, tx, "ledger_messages")
}

// DeleteMessage удаляет все записи сообщения и его заголовок.
func (p *Postgres) DeleteMessage(ctx context.Context, key domain.MessageKey) (domain.Removal, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	tx, err := p.begin(ctx, "ledger_entries")
	if err != nil {
		return domain.Removal{}, err
	}
	defer tx.Rollback(ctx)

	if err := p.lockMessage(ctx, tx, key); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.Removal{}, err
	}

	removal, err := removeEntries(ctx, tx, "delete_message", `chat_id=$1 AND message_id=$2`, key.ChatID, key.MessageID)
	if err != nil {
		return domain.Removal{}, err
	}
	if err := p.deleteHeaders(ctx, tx, "delete_message", `chat_id=$1 AND message_id=$2`, key.ChatID, key.MessageID); err != nil {
		return domain.Removal{}, err
	}
	if err := p.commit(ctx, tx, "ledger_entries"); err != nil {
		return domain.Removal{}, err
	}
	return removal, nil
}

// UndoLatest удаляет записи последнего по времени приёма сообщения отправителя за дату.
func (p *Postgres) UndoLatest(ctx context.Context, senderID int64, date time.Time) (domain.UndoResult, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	tx, err := p.begin(ctx, "ledger_messages")
	if err != nil {
		return domain.UndoResult{}, err
	}
	defer tx.Rollback(ctx)

	var key domain.MessageKey
	start := time.Now()
	err = tx.QueryRow(ctx, `
SELECT chat_id, message_id FROM ledger_messages
WHERE sender_id=$1 AND entry_date=$2::date
ORDER BY ingested_at DESC, message_id DESC
LIMIT 1
FOR UPDATE
`, senderID, date.Format(dateLayout)).Scan(&key.ChatID, &key.MessageID)
	metrics.ObserveNetworkRequest("postgres", "ledger_messages_latest", "ledger_messages", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UndoResult{Found: false}, nil
	}
	if err != nil {
		return domain.UndoResult{}, err
	}

	removal, err := removeEntries(ctx, tx, "undo", `chat_id=$1 AND message_id=$2 AND sender_id=$3`, key.ChatID, key.MessageID, senderID)
	if err != nil {
		return domain.UndoResult{}, err
	}
	if err := p.deleteHeaders(ctx, tx, "undo", `chat_id=$1 AND message_id=$2`, key.ChatID, key.MessageID); err != nil {
		return domain.UndoResult{}, err
	}
	if err := p.commit(ctx, tx, "ledger_messages"); err != nil {
		return domain.UndoResult{}, err
	}
	return domain.UndoResult{Found: true, Key: key, Removal: removal}, nil
}

// DeleteDay удаляет все записи и заголовки за дату.
func (p *Postgres) DeleteDay(ctx context.Context, date time.Time) (domain.Removal, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	tx, err := p.begin(ctx, "ledger_entries")
	if err != nil {
		return domain.Removal{}, err
	}
	defer tx.Rollback(ctx)

	day := date.Format(dateLayout)
	removal, err := removeEntries(ctx, tx, "clear_day", `entry_date=$1::date`, day)
	if err != nil {
		return domain.Removal{}, err
	}
	if err := p.deleteHeaders(ctx, tx, "clear_day", `entry_date=$1::date`, day); err != nil {
		return domain.Removal{}, err
	}
	if err := p.commit(ctx, tx, "ledger_entries"); err != nil {
		return domain.Removal{}, err
	}
	return removal, nil
}

// SumDay возвращает количество и суммы записей за дату по классификациям.
func (p *Postgres) SumDay(ctx context.Context, date time.Time) (domain.DailyTotals, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var (
		totals        domain.DailyTotals
		sumNoDiscount string
		sumDiscount   string
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT
    count(*) FILTER (WHERE classification = 'no_discount'),
    count(*) FILTER (WHERE classification = 'discount'),
    COALESCE(sum(amount) FILTER (WHERE classification = 'no_discount'), 0)::text,
    COALESCE(sum(amount) FILTER (WHERE classification = 'discount'), 0)::text
FROM ledger_entries
WHERE entry_date=$1::date
`, date.Format(dateLayout)).Scan(&totals.CountNoDiscount, &totals.CountDiscount, &sumNoDiscount, &sumDiscount)
	metrics.ObserveNetworkRequest("postgres", "ledger_entries_sum_day", "ledger_entries", start, err)
	if err != nil {
		return domain.DailyTotals{}, err
	}
	if totals.SumNoDiscount, err = decimal.NewFromString(sumNoDiscount); err != nil {
		return domain.DailyTotals{}, fmt.Errorf("сумма без скидки %q: %w", sumNoDiscount, err)
	}
	if totals.SumDiscount, err = decimal.NewFromString(sumDiscount); err != nil {
		return domain.DailyTotals{}, fmt.Errorf("сумма со скидкой %q: %w", sumDiscount, err)
	}
	totals.Date = date
	return totals, nil
}

func (p *Postgres) lockMessage(ctx context.Context, tx pgx.Tx, key domain.MessageKey) error {
	var one int
	start := time.Now()
	err := tx.QueryRow(ctx, `SELECT 1 FROM ledger_messages WHERE chat_id=$1 AND message_id=$2 FOR UPDATE`, key.ChatID, key.MessageID).Scan(&one)
	metrics.ObserveNetworkRequest("postgres", "ledger_messages_lock", "ledger_messages", start, err)
	return err
}

func (p *Postgres) deleteHeaders(ctx context.Context, tx pgx.Tx, op, where string, args ...any) error {
	start := time.Now()
	_, err := tx.Exec(ctx, `DELETE FROM ledger_messages WHERE `+where, args...)
	metrics.ObserveNetworkRequest("postgres", "ledger_messages_"+op, "ledger_messages", start, err)
	return err
}

// removeEntries удаляет записи по условию и возвращает итоги именно удалённых строк.
func removeEntries(ctx context.Context, tx pgx.Tx, op, where string, args ...any) (domain.Removal, error) {
	var (
		removal       domain.Removal
		sumNoDiscount string
		sumDiscount   string
	)
	start := time.Now()
	err := tx.QueryRow(ctx, `
WITH removed AS (
    DELETE FROM ledger_entries WHERE `+where+`
    RETURNING classification, amount
)
SELECT
    count(*),
    COALESCE(sum(amount) FILTER (WHERE classification = 'no_discount'), 0)::text,
    COALESCE(sum(amount) FILTER (WHERE classification = 'discount'), 0)::text
FROM removed
`, args...).Scan(&removal.Count, &sumNoDiscount, &sumDiscount)
	metrics.ObserveNetworkRequest("postgres", "ledger_entries_"+op, "ledger_entries", start, err)
	if err != nil {
		return domain.Removal{}, err
	}
	if removal.SumNoDiscount, err = decimal.NewFromString(sumNoDiscount); err != nil {
		return domain.Removal{}, err
	}
	if removal.SumDiscount, err = decimal.NewFromString(sumDiscount); err != nil {
		return domain.Removal{}, err
	}
	return removal, nil
}

func validate(r domain.Replacement) error {
	for _, e := range r.Entries {
		if e.Key() != r.Message.Key {
			return fmt.Errorf("запись %s не принадлежит сообщению %d", e.ID, r.Message.Key.MessageID)
		}
		if !e.Classification.Valid() {
			return fmt.Errorf("запись %s: неизвестная классификация %q", e.ID, e.Classification)
		}
		if !e.Amount.IsPositive() {
			return fmt.Errorf("запись %s: сумма должна быть положительной", e.ID)
		}
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
