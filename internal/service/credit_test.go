package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/domain"
)

func newCreditFixture(t *testing.T) (*CreditService, *fakeCreditRepo, *fakeNotifier) {
	t.Helper()

	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	repo := &fakeCreditRepo{credits: map[uint]domain.Credit{
		1: {
			ID: 1, StoreID: 1, CustomerID: 7,
			Customer: &domain.Customer{ID: 7, Name: "Rosa Quispe", Phone: "987654321"},
			Amount:   decimal.NewFromInt(100), Balance: decimal.NewFromInt(100),
			Status:  domain.CreditPending,
			DueDate: time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC),
		},
		2: {
			ID: 2, StoreID: 1, CustomerID: 9,
			Customer: &domain.Customer{ID: 9, Name: "Sin Teléfono"},
			Amount:   decimal.NewFromInt(50), Balance: decimal.NewFromInt(50),
			Status: domain.CreditPending,
		},
	}}
	notifier := &fakeNotifier{err: errors.New("whatsapp down")}

	svc := NewCreditService(repo, notifier, pool, time.UTC)
	svc.now = func() time.Time { return saleNow }

	return svc, repo, notifier
}

func TestRegisterPayment(t *testing.T) {
	svc, repo, notifier := newCreditFixture(t)

	credit, payment, err := svc.RegisterPayment(context.Background(), 1, 1, decimal.NewFromInt(40))
	require.NoError(t, err)

	assert.Equal(t, domain.CreditPartial, credit.Status)
	assert.True(t, decimal.NewFromInt(60).Equal(credit.Balance))
	assert.True(t, decimal.NewFromInt(60).Equal(payment.RemainingBalance))
	assert.Equal(t, saleNow, payment.Date)
	assert.Len(t, repo.payments, 1)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "payment", notifier.calls[0].Method)
	assert.Equal(t, "15/03/2024", notifier.calls[0].Date)
}

func TestRegisterPaymentErrors(t *testing.T) {
	tests := []struct {
		name     string
		creditID uint
		amount   decimal.Decimal
		err      error
	}{
		{name: "zero amount", creditID: 1, amount: decimal.Zero, err: ErrInvalidPaymentAmount},
		{name: "negative amount", creditID: 1, amount: decimal.NewFromInt(-5), err: ErrInvalidPaymentAmount},
		{name: "more than the debt", creditID: 1, amount: decimal.NewFromInt(101), err: ErrPaymentExceedsDebt},
		{name: "unknown credit", creditID: 99, amount: decimal.NewFromInt(1), err: ErrCreditNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier := newCreditFixture(t)

			_, _, err := svc.RegisterPayment(context.Background(), 1, tt.creditID, tt.amount)

			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, repo.payments)
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestMarkAsPaid(t *testing.T) {
	svc, _, _ := newCreditFixture(t)

	credit, err := svc.MarkAsPaid(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CreditPaid, credit.Status)
	assert.True(t, credit.Balance.IsZero())

	_, err = svc.MarkAsPaid(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrCreditAlreadyPaid)
}

func TestSendReminders(t *testing.T) {
	svc, _, notifier := newCreditFixture(t)
	notifier.failFor = map[string]bool{"900000002": true}

	reminders := []domain.Reminder{
		{CustomerID: 1, CustomerName: "Ana", Phone: "900000001", Amount: decimal.NewFromInt(10), DueDate: "01/04/2024"},
		{CustomerID: 2, CustomerName: "Beto", Phone: "900000002", Amount: decimal.NewFromInt(20), DueDate: "02/04/2024"},
		{CustomerID: 3, CustomerName: "Carla", Phone: "900000003", Amount: decimal.NewFromInt(30), DueDate: "03/04/2024"},
	}

	results := svc.SendReminders(context.Background(), reminders)

	assert.Equal(t, []domain.ReminderResult{
		{CustomerID: 1, Success: true},
		{CustomerID: 2, Success: false},
		{CustomerID: 3, Success: true},
	}, results)
	assert.Len(t, notifier.calls, 3)
}

func TestSendRemindersEmpty(t *testing.T) {
	svc, _, _ := newCreditFixture(t)

	assert.Empty(t, svc.SendReminders(context.Background(), nil))
}

func TestSendReminder(t *testing.T) {
	svc, _, notifier := newCreditFixture(t)

	require.NoError(t, svc.SendReminder(context.Background(), 1, 1))
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "14/04/2024", notifier.calls[0].Date)
	assert.True(t, decimal.NewFromInt(100).Equal(notifier.calls[0].Amount))

	assert.ErrorIs(t, svc.SendReminder(context.Background(), 1, 2), ErrCustomerWithoutPhone)
	assert.ErrorIs(t, svc.SendReminder(context.Background(), 2, 1), ErrCreditNotFound)
}

func TestSendOverdueReminders(t *testing.T) {
	svc, repo, notifier := newCreditFixture(t)
	repo.overdue = []domain.Credit{repo.credits[1], repo.credits[2]}

	sent, failed, err := svc.SendOverdueReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	assert.Len(t, notifier.calls, 1)
}
