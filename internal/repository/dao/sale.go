package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrSaleAlreadyCancelled = errors.New("sale already cancelled")
	ErrCreditHasPayments    = errors.New("credit already has payments")
)

type Sale struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false"`
	StoreID       uint      `gorm:"not null;index"`
	CustomerID    *uint     `gorm:"index"`
	Customer      *Customer `gorm:"foreignKey:CustomerID"`
	Items         []SaleItem
	PaymentMethod string          `gorm:"not null"` // "cash" or "credit"
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Date          time.Time       `gorm:"not null;index"`
	Status        string          `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SaleItem struct {
	ID        uint  `gorm:"primaryKey"`
	SaleID    int64 `gorm:"not null;index"`
	ProductID uint
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

type SaleFilter struct {
	PaymentMethod string
	Status        string
	CustomerID    uint
	From          *time.Time
	To            *time.Time
	Limit         int
}

type SaleDAO struct {
	db *gorm.DB
}

func NewSaleDAO(db *gorm.DB) *SaleDAO {
	return &SaleDAO{
		db: db,
	}
}

// Insert stores the sale and its items, takes the sold quantities out of stock
// and, when credit is not nil, opens the credit and charges it to the
// customer. Everything happens in one transaction.
func (d *SaleDAO) Insert(ctx context.Context, sale Sale, credit *Credit) (Sale, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			if item.ProductID == 0 {
				continue
			}
			if err := takeStock(tx, sale.StoreID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			var count int64
			err := tx.Model(&Customer{}).
				Where("id = ? AND store_id = ?", *sale.CustomerID, sale.StoreID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				return ErrCustomerNotFound
			}
		}

		if err := tx.Omit("Customer").Create(&sale).Error; err != nil {
			return err
		}

		if credit == nil {
			return nil
		}

		credit.SaleID = &sale.ID
		if err := tx.Omit(clause.Associations).Create(credit).Error; err != nil {
			return err
		}

		return addCustomerBalance(tx, sale.StoreID, credit.CustomerID, credit.Amount)
	})
	if err != nil {
		return Sale{}, err
	}

	return sale, nil
}

func takeStock(tx *gorm.DB, storeID, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ? AND store_id = ? AND stock >= ?", productID, storeID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&Product{}).
		Where("id = ? AND store_id = ?", productID, storeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}

	return ErrInsufficientStock
}

func (d *SaleDAO) FindByID(ctx context.Context, storeID uint, id int64) (Sale, error) {
	var sale Sale

	result := d.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("store_id = ?", storeID).
		First(&sale, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Sale{}, ErrSaleNotFound
		}

		return Sale{}, result.Error
	}

	return sale, nil
}

func (d *SaleDAO) FindAll(ctx context.Context, storeID uint, filter SaleFilter) ([]Sale, error) {
	var sales []Sale

	tx := d.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("store_id = ?", storeID)
	if filter.PaymentMethod != "" {
		tx = tx.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		tx = tx.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.From != nil {
		tx = tx.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("date < ?", *filter.To)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	if err := tx.Order("date DESC").Find(&sales).Error; err != nil {
		return nil, err
	}

	return sales, nil
}

// Cancel puts the items back in stock and marks the sale cancelled. A credit
// sale can only be cancelled while its credit has no payments; its credit is
// cancelled and the customer's balance reduced accordingly.
func (d *SaleDAO) Cancel(ctx context.Context, storeID uint, id int64) (Sale, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale Sale
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ?", storeID).
			First(&sale, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}

			return result.Error
		}
		if sale.Status == "cancelled" {
			return ErrSaleAlreadyCancelled
		}

		if sale.PaymentMethod == "credit" {
			if err := cancelSaleCredit(tx, storeID, sale.ID); err != nil {
				return err
			}
		}

		var items []SaleItem
		if err := tx.Where("sale_id = ?", sale.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if item.ProductID == 0 {
				continue
			}
			err := tx.Model(&Product{}).
				Where("id = ? AND store_id = ?", item.ProductID, storeID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&sale).Update("status", "cancelled").Error
	})
	if err != nil {
		return Sale{}, err
	}

	return d.FindByID(ctx, storeID, id)
}

func cancelSaleCredit(tx *gorm.DB, storeID uint, saleID int64) error {
	var credit Credit
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sale_id = ? AND store_id = ?", saleID, storeID).
		Limit(1).Find(&credit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}

	var payments int64
	if err := tx.Model(&CreditPayment{}).Where("credit_id = ?", credit.ID).Count(&payments).Error; err != nil {
		return err
	}
	if payments > 0 {
		return ErrCreditHasPayments
	}

	if err := addCustomerBalance(tx, storeID, credit.CustomerID, credit.Balance.Neg()); err != nil {
		return err
	}

	return tx.Model(&credit).Updates(map[string]any{
		"balance": decimal.Zero,
		"status":  "cancelled",
	}).Error
}
