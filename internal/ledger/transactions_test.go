package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

func TestAddTransaction(t *testing.T) {
	tests := []struct {
		name    string
		in      TransactionInput
		wantErr error
		balance string
	}{
		{
			name:    "income raises balance",
			in:      TransactionInput{Description: "Salary", Amount: d("100"), Type: core.Income, Category: "Work"},
			balance: "100",
		},
		{
			name:    "type defaults to expense",
			in:      TransactionInput{Description: "Coffee", Amount: d("3.50"), Category: "Food"},
			balance: "-3.50",
		},
		{
			name:    "empty description",
			in:      TransactionInput{Description: "  ", Amount: d("1"), Category: "Food"},
			wantErr: core.ErrInvalidInput,
			balance: "0",
		},
		{
			name:    "empty category",
			in:      TransactionInput{Description: "Coffee", Amount: d("1")},
			wantErr: core.ErrInvalidInput,
			balance: "0",
		},
		{
			name:    "zero amount",
			in:      TransactionInput{Description: "Coffee", Category: "Food"},
			wantErr: core.ErrInvalidInput,
			balance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			tx, err := l.AddTransaction(context.Background(), tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, l.Transactions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, testNow, tx.Date)
			}
			assert.True(t, l.Balance().Equal(d(tt.balance)), "balance %s", l.Balance())
		})
	}
}

func TestTransactionsAreMostRecentFirst(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	for _, desc := range []string{"first", "second", "third"} {
		_, err := l.AddTransaction(ctx, TransactionInput{Description: desc, Amount: d("1"), Type: core.Income, Category: "x"})
		require.NoError(t, err)
	}

	txs := l.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "third", txs[0].Description)
	assert.Equal(t, "first", txs[2].Description)
}

func TestBalanceConservation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	inputs := []TransactionInput{
		{Description: "Salary", Amount: d("1500"), Type: core.Income, Category: "Work"},
		{Description: "Rent", Amount: d("700"), Category: "Housing"},
		{Description: "Groceries", Amount: d("82.37"), Category: "Food"},
		{Description: "Refund", Amount: d("19.99"), Type: core.Income, Category: "Shopping"},
		{Description: "Books", Amount: d("45.10"), Category: "Education"},
	}
	var added []core.Transaction
	for _, in := range inputs {
		tx, err := l.AddTransaction(ctx, in)
		require.NoError(t, err)
		added = append(added, tx)
	}
	require.NoError(t, l.DeleteTransaction(ctx, added[1].ID))
	require.NoError(t, l.DeleteTransaction(ctx, added[3].ID))

	expected := decimal.Zero
	for _, tx := range l.Transactions() {
		expected = expected.Add(tx.Signed())
	}
	assert.True(t, l.Balance().Equal(expected), "balance %s, want %s", l.Balance(), expected)
	assert.True(t, l.Balance().Equal(d("1372.53")))
}

func TestDeleteTransactionIsInverseOfAdd(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	fund(t, l, "200")
	before := l.Balance()

	tx, err := l.AddTransaction(ctx, TransactionInput{Description: "Dinner", Amount: d("35.25"), Category: "Food"})
	require.NoError(t, err)
	require.NoError(t, l.DeleteTransaction(ctx, tx.ID))

	assert.True(t, l.Balance().Equal(before))
	assert.Len(t, l.Transactions(), 1)

	// Deleting again is a no-op.
	require.NoError(t, l.DeleteTransaction(ctx, tx.ID))
	assert.True(t, l.Balance().Equal(before))
}
