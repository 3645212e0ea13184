package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

func addFee(t *testing.T, l *Ledger, amount string) core.TuitionFee {
	t.Helper()
	fee, err := l.AddTuitionFee(context.Background(), TuitionFeeInput{
		Name:     "Spring tuition",
		Type:     "tuition",
		Amount:   d(amount),
		DueDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Semester: "Spring 2024",
	})
	require.NoError(t, err)
	return fee
}

func TestTuitionOverpaymentRejected(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	fund(t, l, "1000")
	fee := addFee(t, l, "500")

	_, err := l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("400"), Method: "card"})
	require.NoError(t, err)

	_, err = l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("150")})
	require.ErrorIs(t, err, core.ErrExceedsLimit)
	assert.True(t, l.Balance().Equal(d("600")))

	p, err := l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("100"), Reference: " REF-1 "})
	require.NoError(t, err)
	assert.Equal(t, "REF-1", p.Reference)
	assert.Equal(t, fee.ID, p.FeeID)

	snap := l.Snapshot()
	assert.Len(t, snap.TuitionPayments, 2)
	// One decrement per payment.
	assert.True(t, snap.Balance.Equal(d("500")))
	assert.Equal(t, "Spring tuition payment", snap.Transactions[0].Description)
	assert.Equal(t, core.CategoryEducation, snap.Transactions[0].Category)
}

func TestTuitionPaymentErrors(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	fund(t, l, "50")
	fee := addFee(t, l, "500")

	_, err := l.MakeTuitionPayment(ctx, uuid.New(), TuitionPaymentInput{Amount: d("10")})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("0")})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("60")})
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	// Exceeding the fee is reported before insufficient funds.
	_, err = l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("600")})
	assert.ErrorIs(t, err, core.ErrExceedsLimit)

	assert.Empty(t, l.Snapshot().TuitionPayments)
}

func TestTuitionFeeUpdateAndCascade(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	fund(t, l, "1000")
	fee := addFee(t, l, "500")
	other := addFee(t, l, "200")

	_, err := l.MakeTuitionPayment(ctx, fee.ID, TuitionPaymentInput{Amount: d("300")})
	require.NoError(t, err)
	_, err = l.MakeTuitionPayment(ctx, other.ID, TuitionPaymentInput{Amount: d("50")})
	require.NoError(t, err)

	_, err = l.UpdateTuitionFee(ctx, fee.ID, TuitionFeeUpdate{Amount: ptr(d("250"))})
	assert.ErrorIs(t, err, core.ErrExceedsLimit)

	updated, err := l.UpdateTuitionFee(ctx, fee.ID, TuitionFeeUpdate{Semester: ptr("Fall 2024")})
	require.NoError(t, err)
	assert.Equal(t, "Fall 2024", updated.Semester)

	_, err = l.UpdateTuitionFee(ctx, uuid.New(), TuitionFeeUpdate{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, l.DeleteTuitionFee(ctx, fee.ID))
	snap := l.Snapshot()
	require.Len(t, snap.TuitionPayments, 1)
	assert.Equal(t, other.ID, snap.TuitionPayments[0].FeeID)
	require.Len(t, snap.TuitionFees, 1)
}

func TestScholarships(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	s, err := l.AddScholarship(ctx, ScholarshipInput{
		Name:     "Merit award",
		Amount:   d("2000"),
		Provider: "University",
		Deadline: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, core.ScholarshipAvailable, s.Status)

	_, err = l.AddScholarship(ctx, ScholarshipInput{Name: "Bad", Status: "pending"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	response := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s, err = l.UpdateScholarshipStatus(ctx, s.ID, core.ScholarshipApplied, ScholarshipUpdate{
		Notes:            ptr("submitted online"),
		ExpectedResponse: &response,
	})
	require.NoError(t, err)
	assert.Equal(t, core.ScholarshipApplied, s.Status)
	assert.Equal(t, "submitted online", s.Notes)
	require.NotNil(t, s.ExpectedResponse)
	assert.Equal(t, response, *s.ExpectedResponse)

	s, err = l.UpdateScholarship(ctx, s.ID, ScholarshipUpdate{Amount: ptr(d("2500"))})
	require.NoError(t, err)
	assert.True(t, s.Amount.Equal(d("2500")))
	assert.Equal(t, core.ScholarshipApplied, s.Status)

	_, err = l.UpdateScholarshipStatus(ctx, uuid.New(), core.ScholarshipReceived, ScholarshipUpdate{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, l.DeleteScholarship(ctx, s.ID))
	require.NoError(t, l.DeleteScholarship(ctx, s.ID))
	assert.Empty(t, l.Snapshot().Scholarships)
}
