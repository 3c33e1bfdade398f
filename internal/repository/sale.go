package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
)

var (
	ErrSaleNotFound         = dao.ErrSaleNotFound
	ErrSaleAlreadyCancelled = dao.ErrSaleAlreadyCancelled
	ErrCreditHasPayments    = dao.ErrCreditHasPayments
	ErrCreditNotFound       = dao.ErrCreditNotFound
)

type SaleDAO interface {
	Insert(ctx context.Context, sale dao.Sale, credit *dao.Credit) (dao.Sale, error)
	FindByID(ctx context.Context, storeID uint, id int64) (dao.Sale, error)
	FindAll(ctx context.Context, storeID uint, filter dao.SaleFilter) ([]dao.Sale, error)
	Cancel(ctx context.Context, storeID uint, id int64) (dao.Sale, error)
}

type SaleRepository struct {
	dao SaleDAO
}

func NewSaleRepository(dao SaleDAO) *SaleRepository {
	return &SaleRepository{
		dao: dao,
	}
}

// Create stores the sale. A non-nil credit is opened in the same transaction.
func (r *SaleRepository) Create(ctx context.Context, sale domain.Sale, credit *domain.Credit) (domain.Sale, error) {
	var daoCredit *dao.Credit
	if credit != nil {
		c := creditDomainToDAO(*credit)
		daoCredit = &c
	}

	created, err := r.dao.Insert(ctx, saleDomainToDAO(sale), daoCredit)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return saleDAOToDomain(created), nil
}

func (r *SaleRepository) FindByID(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	found, err := r.dao.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return saleDAOToDomain(found), nil
}

func (r *SaleRepository) FindAll(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error) {
	found, err := r.dao.FindAll(ctx, storeID, dao.SaleFilter{
		PaymentMethod: string(filter.PaymentMethod),
		Status:        string(filter.Status),
		CustomerID:    filter.CustomerID,
		From:          filter.From,
		To:            filter.To,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	sales := make([]domain.Sale, len(found))
	for i, s := range found {
		sales[i] = saleDAOToDomain(s)
	}

	return sales, nil
}

func (r *SaleRepository) Cancel(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	cancelled, err := r.dao.Cancel(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return saleDAOToDomain(cancelled), nil
}

func saleDomainToDAO(s domain.Sale) dao.Sale {
	return dao.Sale{
		ID:            s.ID,
		StoreID:       s.StoreID,
		CustomerID:    s.CustomerID,
		Items:         itemsDomainToDAO(s.Items),
		PaymentMethod: string(s.PaymentMethod),
		Total:         s.Total,
		Date:          s.Date,
		Status:        string(s.Status),
	}
}

func saleDAOToDomain(s dao.Sale) domain.Sale {
	sale := domain.Sale{
		ID:            s.ID,
		StoreID:       s.StoreID,
		CustomerID:    s.CustomerID,
		Items:         itemsDAOToDomain(s.Items),
		PaymentMethod: domain.PaymentMethod(s.PaymentMethod),
		Total:         s.Total,
		Date:          s.Date,
		Status:        domain.SaleStatus(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Customer != nil {
		c := customerDAOToDomain(*s.Customer)
		sale.Customer = &c
	}

	return sale
}

func itemsDomainToDAO(items []domain.SaleItem) []dao.SaleItem {
	rows := make([]dao.SaleItem, len(items))
	for i, item := range items {
		rows[i] = dao.SaleItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return rows
}

func itemsDAOToDomain(rows []dao.SaleItem) []domain.SaleItem {
	items := make([]domain.SaleItem, len(rows))
	for i, row := range rows {
		items[i] = domain.SaleItem{
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			Quantity:  row.Quantity,
		}
	}

	return items
}

type CreditDAO interface {
	FindByID(ctx context.Context, storeID, id uint) (dao.Credit, error)
	FindBySaleID(ctx context.Context, storeID uint, saleID int64) (dao.Credit, error)
	FindAll(ctx context.Context, storeID uint, filter dao.CreditFilter) ([]dao.Credit, error)
	FindOverdue(ctx context.Context, now time.Time) ([]dao.Credit, error)
	SumPending(ctx context.Context, storeID uint) (decimal.Decimal, error)
	ApplyPayment(ctx context.Context, storeID, creditID uint, apply func(*dao.Credit) (dao.CreditPayment, error)) (dao.Credit, dao.CreditPayment, error)
}

type CreditRepository struct {
	dao CreditDAO
}

func NewCreditRepository(dao CreditDAO) *CreditRepository {
	return &CreditRepository{
		dao: dao,
	}
}

func (r *CreditRepository) FindByID(ctx context.Context, storeID, id uint) (domain.Credit, error) {
	found, err := r.dao.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Credit{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return creditDAOToDomain(found), nil
}

func (r *CreditRepository) FindBySaleID(ctx context.Context, storeID uint, saleID int64) (domain.Credit, error) {
	found, err := r.dao.FindBySaleID(ctx, storeID, saleID)
	if err != nil {
		return domain.Credit{}, fmt.Errorf("r.dao.FindBySaleID -> %w", err)
	}

	return creditDAOToDomain(found), nil
}

func (r *CreditRepository) FindAll(ctx context.Context, storeID uint, filter domain.CreditFilter, now time.Time) ([]domain.Credit, error) {
	daoFilter := dao.CreditFilter{
		Status:     string(filter.Status),
		CustomerID: filter.CustomerID,
	}
	if filter.Overdue {
		daoFilter.OverdueAt = &now
	}

	found, err := r.dao.FindAll(ctx, storeID, daoFilter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return creditsDAOToDomain(found), nil
}

func (r *CreditRepository) FindOverdue(ctx context.Context, now time.Time) ([]domain.Credit, error) {
	found, err := r.dao.FindOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOverdue -> %w", err)
	}

	return creditsDAOToDomain(found), nil
}

func (r *CreditRepository) SumPending(ctx context.Context, storeID uint) (decimal.Decimal, error) {
	total, err := r.dao.SumPending(ctx, storeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.SumPending -> %w", err)
	}

	return total, nil
}

// ApplyPayment runs apply on the locked credit and persists its outcome.
func (r *CreditRepository) ApplyPayment(ctx context.Context, storeID, creditID uint, apply func(*domain.Credit) (domain.CreditPayment, error)) (domain.Credit, domain.CreditPayment, error) {
	updated, payment, err := r.dao.ApplyPayment(ctx, storeID, creditID, func(c *dao.Credit) (dao.CreditPayment, error) {
		credit := creditDAOToDomain(*c)

		p, err := apply(&credit)
		if err != nil {
			return dao.CreditPayment{}, err
		}

		c.Balance = credit.Balance
		c.Status = string(credit.Status)

		return dao.CreditPayment{
			CreditID:         c.ID,
			Amount:           p.Amount,
			RemainingBalance: p.RemainingBalance,
			Date:             p.Date,
		}, nil
	})
	if err != nil {
		return domain.Credit{}, domain.CreditPayment{}, fmt.Errorf("r.dao.ApplyPayment -> %w", err)
	}

	return creditDAOToDomain(updated), paymentDAOToDomain(payment), nil
}

func creditDomainToDAO(c domain.Credit) dao.Credit {
	return dao.Credit{
		ID:         c.ID,
		StoreID:    c.StoreID,
		CustomerID: c.CustomerID,
		SaleID:     c.SaleID,
		Amount:     c.Amount,
		Balance:    c.Balance,
		Status:     string(c.Status),
		Date:       c.Date,
		DueDate:    c.DueDate,
	}
}

func creditDAOToDomain(c dao.Credit) domain.Credit {
	credit := domain.Credit{
		ID:         c.ID,
		StoreID:    c.StoreID,
		CustomerID: c.CustomerID,
		SaleID:     c.SaleID,
		Amount:     c.Amount,
		Balance:    c.Balance,
		Status:     domain.CreditStatus(c.Status),
		Date:       c.Date,
		DueDate:    c.DueDate,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Customer != nil {
		customer := customerDAOToDomain(*c.Customer)
		credit.Customer = &customer
	}
	if c.Sale != nil {
		credit.Items = itemsDAOToDomain(c.Sale.Items)
	}
	for _, p := range c.Payments {
		credit.Payments = append(credit.Payments, paymentDAOToDomain(p))
	}

	return credit
}

func creditsDAOToDomain(found []dao.Credit) []domain.Credit {
	credits := make([]domain.Credit, len(found))
	for i, c := range found {
		credits[i] = creditDAOToDomain(c)
	}

	return credits
}

func paymentDAOToDomain(p dao.CreditPayment) domain.CreditPayment {
	return domain.CreditPayment{
		ID:               p.ID,
		CreditID:         p.CreditID,
		Amount:           p.Amount,
		RemainingBalance: p.RemainingBalance,
		Date:             p.Date,
	}
}
