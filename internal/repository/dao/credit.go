package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCreditNotFound = errors.New("credit not found")

type Credit struct {
	ID         uint            `gorm:"primaryKey"`
	StoreID    uint            `gorm:"not null;index"`
	CustomerID uint            `gorm:"not null;index"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID"`
	SaleID     *int64          `gorm:"index"`
	Sale       *Sale           `gorm:"foreignKey:SaleID"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Balance    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status     string          `gorm:"not null;index"` // "pending", "partial", "paid" or "cancelled"
	Date       time.Time       `gorm:"not null"`
	DueDate    time.Time       `gorm:"not null;index"`
	Payments   []CreditPayment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreditPayment struct {
	ID               uint            `gorm:"primaryKey"`
	CreditID         uint            `gorm:"not null;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RemainingBalance decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Date             time.Time       `gorm:"not null"`
	CreatedAt        time.Time
}

type CreditFilter struct {
	Status     string
	CustomerID uint
	OverdueAt  *time.Time
}

type CreditDAO struct {
	db *gorm.DB
}

func NewCreditDAO(db *gorm.DB) *CreditDAO {
	return &CreditDAO{
		db: db,
	}
}

func (d *CreditDAO) preloaded(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Preload("Customer").
		Preload("Sale.Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		})
}

func (d *CreditDAO) FindByID(ctx context.Context, storeID, id uint) (Credit, error) {
	var credit Credit

	result := d.preloaded(ctx).
		Where("store_id = ?", storeID).
		First(&credit, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Credit{}, ErrCreditNotFound
		}

		return Credit{}, result.Error
	}

	return credit, nil
}

func (d *CreditDAO) FindBySaleID(ctx context.Context, storeID uint, saleID int64) (Credit, error) {
	var credit Credit

	result := d.preloaded(ctx).
		Where("store_id = ? AND sale_id = ?", storeID, saleID).
		First(&credit)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Credit{}, ErrCreditNotFound
		}

		return Credit{}, result.Error
	}

	return credit, nil
}

func (d *CreditDAO) FindAll(ctx context.Context, storeID uint, filter CreditFilter) ([]Credit, error) {
	var credits []Credit

	tx := d.preloaded(ctx).Where("store_id = ?", storeID)
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		tx = tx.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OverdueAt != nil {
		tx = tx.Where("balance > 0 AND due_date < ?", *filter.OverdueAt)
	}

	if err := tx.Order("date DESC").Find(&credits).Error; err != nil {
		return nil, err
	}

	return credits, nil
}

// SumPending returns the outstanding balance of all credits of a store.
func (d *CreditDAO) SumPending(ctx context.Context, storeID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal

	err := d.db.WithContext(ctx).Model(&Credit{}).
		Where("store_id = ? AND balance > 0", storeID).
		Select("SUM(balance)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}

	return total.Decimal, nil
}

// ApplyPayment locks the credit, lets apply mutate it and build the payment,
// then persists the credit, the payment and the customer's new balance. When
// the credit ends up paid, its sale is completed.
func (d *CreditDAO) ApplyPayment(ctx context.Context, storeID, creditID uint, apply func(*Credit) (CreditPayment, error)) (Credit, CreditPayment, error) {
	var payment CreditPayment

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var credit Credit
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ?", storeID).
			First(&credit, creditID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrCreditNotFound
			}

			return result.Error
		}

		before := credit.Balance

		var err error
		payment, err = apply(&credit)
		if err != nil {
			return err
		}

		if err := tx.Model(&Credit{ID: credit.ID}).Updates(map[string]any{
			"balance": credit.Balance,
			"status":  credit.Status,
		}).Error; err != nil {
			return err
		}

		payment.CreditID = credit.ID
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := addCustomerBalance(tx, storeID, credit.CustomerID, credit.Balance.Sub(before)); err != nil {
			return err
		}

		if credit.Status == "paid" && credit.SaleID != nil {
			return tx.Model(&Sale{}).
				Where("id = ? AND status = ?", *credit.SaleID, "pending_payment").
				Update("status", "completed").Error
		}

		return nil
	})
	if err != nil {
		return Credit{}, CreditPayment{}, err
	}

	credit, err := d.FindByID(ctx, storeID, creditID)
	if err != nil {
		return Credit{}, CreditPayment{}, err
	}

	return credit, payment, nil
}

// FindOverdue returns every credit, across stores, that still owes money after
// its due date.
func (d *CreditDAO) FindOverdue(ctx context.Context, now time.Time) ([]Credit, error) {
	var credits []Credit

	err := d.db.WithContext(ctx).
		Preload("Customer").
		Joins("JOIN stores ON stores.id = credits.store_id AND stores.status = ?", "active").
		Where("credits.balance > 0 AND credits.due_date < ?", now).
		Order("credits.due_date ASC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}

	return credits, nil
}
