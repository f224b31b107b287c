package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionAmountMarshalsAsNumber(t *testing.T) {
	tx := Transaction{
		ID:     "tx-1",
		UserID: "user-1",
		Amount: decimal.RequireFromString("45.90"),
		Date:   time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Contains(t, fields, "amount")
	assert.NotEqual(t, byte('"'), fields["amount"][0], "amount must be a JSON number, not a string")
	assert.Equal(t, "45.9", string(fields["amount"])[:4])
}

func TestTransactionAmountUnmarshalsBothShapes(t *testing.T) {
	var fromNumber, fromString Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 45.90}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"amount": "45.90"}`), &fromString))

	assert.True(t, fromNumber.Amount.Equal(fromString.Amount))
}

func TestIsExpense(t *testing.T) {
	uncategorized := &Transaction{}
	assert.True(t, uncategorized.IsExpense())

	expense := &Transaction{Category: &Category{Type: CategoryExpense}}
	assert.True(t, expense.IsExpense())

	income := &Transaction{Category: &Category{Type: CategoryIncome}}
	assert.False(t, income.IsExpense())
}
