// Package audit пишет журнал завершённых расчётов выплат.
package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"exchange-payout-bot/internal/domain"
)

// Header содержит первую строку журнала.
var Header = []string{"timestamp", "date", "sum_no", "sum_disc", "total", "payout_no", "payout_disc", "payout_total"}

// FileSink дописывает записи в CSV-файл с разделителем «;».
type FileSink struct {
	mu   sync.Mutex
	path string
}

var _ domain.AuditSink = (*FileSink)(nil)

// NewFileSink создаёт журнал. Файл открывается на каждую запись.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Record дописывает строку; в пустой файл сначала пишется заголовок.
func (s *FileSink) Record(_ context.Context, r domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("журнал выплат: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("журнал выплат: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'
	if fi.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write(row(r)); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("журнал выплат: %w", err)
	}
	return nil
}

func row(r domain.AuditRecord) []string {
	return []string{
		r.OccurredAt.Format(time.RFC3339),
		r.Date.Format("2006-01-02"),
		r.SumNoDiscount.StringFixed(2),
		r.SumDiscount.StringFixed(2),
		r.Total.StringFixed(2),
		r.PayoutNoDiscount.StringFixed(2),
		r.PayoutDiscount.StringFixed(2),
		r.PayoutTotal.StringFixed(2),
	}
}
