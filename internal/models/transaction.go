package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers, matching what PostgREST
// returns for numeric columns.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Category classification. A transaction's direction (income vs expense)
// comes from its category type, never from the sign of the amount.
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// Category is a pre-seeded, read-only classification row.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Type  string `json:"type"`
}

// Transaction is a money movement owned by a user. Transactions are created
// and deleted but never updated in place.
//
// Category is the joined category row; it is nil when the transaction has no
// category, in which case the transaction is treated as an expense.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CategoryID  string          `json:"category_id,omitempty"`
	Category    *Category       `json:"Category,omitempty"`
}

// IsExpense reports whether the transaction counts as an expense for
// aggregation. A missing category defaults to expense.
func (t *Transaction) IsExpense() bool {
	return t.Category == nil || t.Category.Type != CategoryIncome
}

// NewTransaction is the insert payload for the external store. Field names
// match the store's column names.
type NewTransaction struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CategoryID  string          `json:"category_id,omitempty"`
}
