package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerHasDebt  = errors.New("customer has outstanding credit")
)

type Customer struct {
	ID            uint   `gorm:"primaryKey"`
	StoreID       uint   `gorm:"not null;index"`
	Name          string `gorm:"not null"`
	Phone         string `gorm:"not null"`
	Email         string
	Address       string
	CreditBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status        string          `gorm:"not null;default:active"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type CustomerDAO struct {
	db *gorm.DB
}

func NewCustomerDAO(db *gorm.DB) *CustomerDAO {
	return &CustomerDAO{
		db: db,
	}
}

func (d *CustomerDAO) Insert(ctx context.Context, customer Customer) (Customer, error) {
	if err := d.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return Customer{}, err
	}

	return customer, nil
}

func (d *CustomerDAO) FindByID(ctx context.Context, storeID, id uint) (Customer, error) {
	var customer Customer

	result := d.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&customer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Customer{}, ErrCustomerNotFound
		}

		return Customer{}, result.Error
	}

	return customer, nil
}

// FindAll lists customers of a store. withDebt keeps only customers owing money.
func (d *CustomerDAO) FindAll(ctx context.Context, storeID uint, query string, withDebt bool) ([]Customer, error) {
	var customers []Customer

	tx := d.db.WithContext(ctx).Where("store_id = ?", storeID)
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if withDebt {
		tx = tx.Where("credit_balance > 0")
	}

	if err := tx.Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}

	return customers, nil
}

func (d *CustomerDAO) Update(ctx context.Context, customer Customer) (Customer, error) {
	result := d.db.WithContext(ctx).Model(&Customer{}).
		Where("id = ? AND store_id = ?", customer.ID, customer.StoreID).
		Updates(map[string]any{
			"name":    customer.Name,
			"phone":   customer.Phone,
			"email":   customer.Email,
			"address": customer.Address,
			"status":  customer.Status,
		})
	if result.Error != nil {
		return Customer{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Customer{}, ErrCustomerNotFound
	}

	return d.FindByID(ctx, customer.StoreID, customer.ID)
}

// Delete removes a customer that owes nothing.
func (d *CustomerDAO) Delete(ctx context.Context, storeID, id uint) error {
	result := d.db.WithContext(ctx).
		Where("store_id = ? AND credit_balance <= 0", storeID).
		Delete(&Customer{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, storeID, id); err != nil {
			return err
		}

		return ErrCustomerHasDebt
	}

	return nil
}

func addCustomerBalance(tx *gorm.DB, storeID, customerID uint, delta decimal.Decimal) error {
	result := tx.Model(&Customer{}).
		Where("id = ? AND store_id = ?", customerID, storeID).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
