package repository

import (
	"context"
	"fmt"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
)

var (
	ErrProductNotFound      = dao.ErrProductNotFound
	ErrProductBarcodeExists = dao.ErrProductBarcodeExists
	ErrInsufficientStock    = dao.ErrInsufficientStock
	ErrCustomerNotFound     = dao.ErrCustomerNotFound
	ErrCustomerHasDebt      = dao.ErrCustomerHasDebt
)

type ProductDAO interface {
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	FindByID(ctx context.Context, storeID, id uint) (dao.Product, error)
	FindAll(ctx context.Context, storeID uint, filter dao.ProductFilter) ([]dao.Product, error)
	FindLowStock(ctx context.Context, storeID uint, limit int) ([]dao.Product, error)
	Update(ctx context.Context, product dao.Product) (dao.Product, error)
	AdjustStock(ctx context.Context, storeID, id uint, delta int) (dao.Product, error)
	Delete(ctx context.Context, storeID, id uint) error
	Upsert(ctx context.Context, storeID uint, products []dao.Product) (int, int, error)
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, productDomainToDAO(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return productDAOToDomain(created), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, storeID, id uint) (domain.Product, error) {
	found, err := r.dao.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return productDAOToDomain(found), nil
}

func (r *ProductRepository) FindAll(ctx context.Context, storeID uint, filter domain.ProductFilter) ([]domain.Product, error) {
	found, err := r.dao.FindAll(ctx, storeID, dao.ProductFilter{
		Query:    filter.Query,
		Category: filter.Category,
		Barcode:  filter.Barcode,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return productsDAOToDomain(found), nil
}

func (r *ProductRepository) FindLowStock(ctx context.Context, storeID uint, limit int) ([]domain.Product, error) {
	found, err := r.dao.FindLowStock(ctx, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLowStock -> %w", err)
	}

	return productsDAOToDomain(found), nil
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	updated, err := r.dao.Update(ctx, productDomainToDAO(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return productDAOToDomain(updated), nil
}

func (r *ProductRepository) AdjustStock(ctx context.Context, storeID, id uint, delta int) (domain.Product, error) {
	updated, err := r.dao.AdjustStock(ctx, storeID, id, delta)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.AdjustStock -> %w", err)
	}

	return productDAOToDomain(updated), nil
}

func (r *ProductRepository) Delete(ctx context.Context, storeID, id uint) error {
	if err := r.dao.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ProductRepository) Upsert(ctx context.Context, storeID uint, products []domain.Product) (int, int, error) {
	rows := make([]dao.Product, len(products))
	for i, p := range products {
		rows[i] = productDomainToDAO(p)
	}

	created, updated, err := r.dao.Upsert(ctx, storeID, rows)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return created, updated, nil
}

func productDomainToDAO(p domain.Product) dao.Product {
	return dao.Product{
		ID:       p.ID,
		StoreID:  p.StoreID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Category: p.Category,
		Barcode:  p.Barcode,
	}
}

func productDAOToDomain(p dao.Product) domain.Product {
	return domain.Product{
		ID:        p.ID,
		StoreID:   p.StoreID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Category:  p.Category,
		Barcode:   p.Barcode,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func productsDAOToDomain(found []dao.Product) []domain.Product {
	products := make([]domain.Product, len(found))
	for i, p := range found {
		products[i] = productDAOToDomain(p)
	}

	return products
}

type CustomerDAO interface {
	Insert(ctx context.Context, customer dao.Customer) (dao.Customer, error)
	FindByID(ctx context.Context, storeID, id uint) (dao.Customer, error)
	FindAll(ctx context.Context, storeID uint, query string, withDebt bool) ([]dao.Customer, error)
	Update(ctx context.Context, customer dao.Customer) (dao.Customer, error)
	Delete(ctx context.Context, storeID, id uint) error
}

type CustomerRepository struct {
	dao CustomerDAO
}

func NewCustomerRepository(dao CustomerDAO) *CustomerRepository {
	return &CustomerRepository{
		dao: dao,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	created, err := r.dao.Insert(ctx, customerDomainToDAO(customer))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return customerDAOToDomain(created), nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, storeID, id uint) (domain.Customer, error) {
	found, err := r.dao.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return customerDAOToDomain(found), nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, storeID uint, query string, withDebt bool) ([]domain.Customer, error) {
	found, err := r.dao.FindAll(ctx, storeID, query, withDebt)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	customers := make([]domain.Customer, len(found))
	for i, c := range found {
		customers[i] = customerDAOToDomain(c)
	}

	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	updated, err := r.dao.Update(ctx, customerDomainToDAO(customer))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return customerDAOToDomain(updated), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, storeID, id uint) error {
	if err := r.dao.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func customerDomainToDAO(c domain.Customer) dao.Customer {
	return dao.Customer{
		ID:            c.ID,
		StoreID:       c.StoreID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		CreditBalance: c.CreditBalance,
		Status:        string(c.Status),
	}
}

func customerDAOToDomain(c dao.Customer) domain.Customer {
	return domain.Customer{
		ID:            c.ID,
		StoreID:       c.StoreID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		CreditBalance: c.CreditBalance,
		Status:        domain.CustomerStatus(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
