package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

var (
	ErrCustomerNotFound = repository.ErrCustomerNotFound
	ErrCustomerHasDebt  = repository.ErrCustomerHasDebt
)

type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	FindByID(ctx context.Context, storeID, id uint) (domain.Customer, error)
	FindAll(ctx context.Context, storeID uint, query string, withDebt bool) ([]domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Delete(ctx context.Context, storeID, id uint) error
}

type CustomerSaleLister interface {
	ListSales(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error)
}

type CustomerCreditLister interface {
	ListCredits(ctx context.Context, storeID uint, filter domain.CreditFilter) ([]domain.Credit, error)
}

type CustomerService struct {
	repo    CustomerRepository
	sales   CustomerSaleLister
	credits CustomerCreditLister
}

func NewCustomerService(repo CustomerRepository, sales CustomerSaleLister, credits CustomerCreditLister) *CustomerService {
	return &CustomerService{
		repo:    repo,
		sales:   sales,
		credits: credits,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	customer.ID = 0
	customer.CreditBalance = decimal.Zero
	if customer.Status == "" {
		customer.Status = domain.CustomerActive
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, storeID, id uint) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, storeID uint, query string, withDebt bool) ([]domain.Customer, error) {
	customers, err := s.repo.FindAll(ctx, storeID, query, withDebt)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return customers, nil
}

// UpdateCustomer changes the contact data of a customer. The credit balance
// is only ever changed by sales and payments.
func (s *CustomerService) UpdateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	current, err := s.repo.FindByID(ctx, customer.StoreID, customer.ID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	current.Name = customer.Name
	current.Phone = customer.Phone
	current.Email = customer.Email
	current.Address = customer.Address
	if customer.Status != "" {
		current.Status = customer.Status
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, storeID, id uint) error {
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// PurchaseHistory lists the sales of a customer, newest first.
func (s *CustomerService) PurchaseHistory(ctx context.Context, storeID, id uint) ([]domain.Sale, error) {
	if _, err := s.GetCustomer(ctx, storeID, id); err != nil {
		return nil, err
	}

	sales, err := s.sales.ListSales(ctx, storeID, domain.SaleFilter{CustomerID: id})
	if err != nil {
		return nil, fmt.Errorf("s.sales.ListSales -> %w", err)
	}

	return sales, nil
}

func (s *CustomerService) CustomerCredits(ctx context.Context, storeID, id uint) ([]domain.Credit, error) {
	if _, err := s.GetCustomer(ctx, storeID, id); err != nil {
		return nil, err
	}

	credits, err := s.credits.ListCredits(ctx, storeID, domain.CreditFilter{CustomerID: id})
	if err != nil {
		return nil, fmt.Errorf("s.credits.ListCredits -> %w", err)
	}

	return credits, nil
}
