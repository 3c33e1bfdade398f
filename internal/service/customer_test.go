package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/domain"
)

type fakeSaleLister struct{ filter domain.SaleFilter }

func (l *fakeSaleLister) ListSales(_ context.Context, _ uint, filter domain.SaleFilter) ([]domain.Sale, error) {
	l.filter = filter
	return []domain.Sale{{ID: 1}}, nil
}

type fakeCreditLister struct{ filter domain.CreditFilter }

func (l *fakeCreditLister) ListCredits(_ context.Context, _ uint, filter domain.CreditFilter) ([]domain.Credit, error) {
	l.filter = filter
	return []domain.Credit{{ID: 1}}, nil
}

func TestCustomerService(t *testing.T) {
	repo := &fakeCustomerRepo{customers: map[uint]domain.Customer{}}
	sales := &fakeSaleLister{}
	credits := &fakeCreditLister{}
	svc := NewCustomerService(repo, sales, credits)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, domain.Customer{
		StoreID:       1,
		Name:          "Rosa Quispe",
		Phone:         "987654321",
		CreditBalance: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.True(t, created.CreditBalance.IsZero())
	assert.Equal(t, domain.CustomerActive, created.Status)

	stored := repo.customers[created.ID]
	stored.CreditBalance = decimal.NewFromInt(35)
	repo.customers[created.ID] = stored

	updated, err := svc.UpdateCustomer(ctx, domain.Customer{
		ID:            created.ID,
		StoreID:       1,
		Name:          "Rosa Quispe Mamani",
		Phone:         "987000111",
		CreditBalance: decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rosa Quispe Mamani", updated.Name)
	assert.True(t, decimal.NewFromInt(35).Equal(updated.CreditBalance))

	assert.ErrorIs(t, svc.DeleteCustomer(ctx, 1, created.ID), ErrCustomerHasDebt)

	_, err = svc.PurchaseHistory(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, sales.filter.CustomerID)

	_, err = svc.CustomerCredits(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, credits.filter.CustomerID)

	_, err = svc.PurchaseHistory(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
