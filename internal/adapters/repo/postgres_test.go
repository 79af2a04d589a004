package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/db"
)

// Интеграционные тесты запускаются только при заданном TEST_PG_DSN.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN не задан")
	}
	pool, err := db.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	p := NewPostgres(pool)
	require.NoError(t, p.Migrate(context.Background()))
	return p
}

func onDay(r domain.Replacement, day time.Time) domain.Replacement {
	r.Message.Date = day
	for i := range r.Entries {
		r.Entries[i].Date = day
	}
	return r
}

func TestPostgresLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := openTestPostgres(t)

	day := time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := p.DeleteDay(ctx, day)
	require.NoError(t, err)

	key := domain.MessageKey{ChatID: -42, MessageID: time.Now().UnixNano()}
	r := onDay(replacement(key, 7, day.Add(time.Hour), map[domain.Classification][]string{
		domain.NoDiscount: {"1500.25", "900"},
		domain.Discount:   {"2600"},
	}), day)
	require.NoError(t, p.ReplaceMessage(ctx, r))
	require.NoError(t, p.ReplaceMessage(ctx, r))

	totals, err := p.SumDay(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 2, totals.CountNoDiscount)
	require.True(t, totals.SumNoDiscount.Equal(decimal.RequireFromString("2400.25")))

	res, err := p.UndoLatest(ctx, 7, day)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, key, res.Key)
	require.Equal(t, 3, res.Removal.Count)

	res, err = p.UndoLatest(ctx, 7, day)
	require.NoError(t, err)
	require.False(t, res.Found)
}

func TestPostgresConcurrentReplaceKeepsOneVersion(t *testing.T) {
	ctx := context.Background()
	p := openTestPostgres(t)

	day := time.Date(1999, 1, 3, 0, 0, 0, 0, time.UTC)
	_, err := p.DeleteDay(ctx, day)
	require.NoError(t, err)

	key := domain.MessageKey{ChatID: -43, MessageID: time.Now().UnixNano()}
	const workers = 8
	require.NoError(t, replaceConcurrently(ctx, p, workers, func(i int) domain.Replacement {
		return onDay(concurrentReplacement(key, i, day.Add(time.Hour)), day)
	}))

	totals, err := p.SumDay(ctx, day)
	require.NoError(t, err)
	requireOneOfConcurrent(t, totals, workers)
}

func TestPostgresReplaceRejectsStaleRevision(t *testing.T) {
	ctx := context.Background()
	p := openTestPostgres(t)

	day := time.Date(1999, 1, 4, 0, 0, 0, 0, time.UTC)
	_, err := p.DeleteDay(ctx, day)
	require.NoError(t, err)

	key := domain.MessageKey{ChatID: -44, MessageID: time.Now().UnixNano()}
	newer := onDay(replacement(key, 7, day.Add(time.Hour), map[domain.Classification][]string{domain.Discount: {"300"}}), day)
	newer.Message.Revision = 12
	older := onDay(replacement(key, 7, day.Add(time.Hour), map[domain.Classification][]string{domain.NoDiscount: {"2000"}}), day)
	older.Message.Revision = 11

	require.NoError(t, p.ReplaceMessage(ctx, newer))
	require.ErrorIs(t, p.ReplaceMessage(ctx, older), domain.ErrStaleRevision)

	totals, err := p.SumDay(ctx, day)
	require.NoError(t, err)
	require.Zero(t, totals.CountNoDiscount)
	require.True(t, totals.SumDiscount.Equal(decimal.NewFromInt(300)))
}
