// Package report implements the monthly report pipeline:
// fetch -> aggregate -> paginate -> render.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

// Service implements ReportService
type Service struct {
	logger *common.Logger
}

// NewService creates a new report service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// Totals are the aggregated sums of a report. Income and Expense are sums
// of category-classified amounts and therefore non-negative.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance returns income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// MonthWindow returns the inclusive window for a calendar month in local
// time: the first instant of the month through the last millisecond of its
// last day.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// Aggregate sums transactions into income and expense totals. Direction
// comes from the joined category's type; a transaction without a category
// counts as an expense.
func Aggregate(txs []*models.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.IsExpense() {
			t.Expense = t.Expense.Add(tx.Amount)
		} else {
			t.Income = t.Income.Add(tx.Amount)
		}
	}
	return t
}

// GenerateMonthly fetches the user's transactions for the given month using
// the caller-scoped store client, aggregates totals, and writes the rendered
// PDF to w. On fetch failure nothing is written.
func (s *Service) GenerateMonthly(ctx context.Context, store interfaces.StoreClient, user *models.UserProfile, year, month int, w io.Writer) error {
	start, end := MonthWindow(year, month)

	txs, err := store.ListTransactionsBetween(ctx, user.ID, start, end)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Int("year", year).
		Int("month", month).
		Int("transactions", len(txs)).
		Msg("Generating PDF report")

	totals := Aggregate(txs)

	doc := newDocument(user, year, month, txs, totals, s.logger)
	if err := doc.render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.ReportService = (*Service)(nil)
