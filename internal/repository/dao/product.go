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
	ErrProductNotFound      = errors.New("product not found")
	ErrProductBarcodeExists = errors.New("product barcode already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
)

type Product struct {
	ID        uint            `gorm:"primaryKey"`
	StoreID   uint            `gorm:"not null;index;uniqueIndex:idx_products_store_barcode,where:barcode <> ''"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Category  string          `gorm:"index"`
	Barcode   string          `gorm:"uniqueIndex:idx_products_store_barcode,where:barcode <> ''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductFilter struct {
	Query    string
	Category string
	Barcode  string
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func mapProductErr(err error) error {
	if isUniqueViolation(err, "idx_products_store_barcode") {
		return ErrProductBarcodeExists
	}

	return err
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	result := d.db.WithContext(ctx).Create(&product)
	if result.Error != nil {
		return Product{}, mapProductErr(result.Error)
	}

	return product, nil
}

func (d *ProductDAO) FindByID(ctx context.Context, storeID, id uint) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) FindAll(ctx context.Context, storeID uint, filter ProductFilter) ([]Product, error) {
	var products []Product

	tx := d.db.WithContext(ctx).Where("store_id = ?", storeID)
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		tx = tx.Where("name ILIKE ? OR barcode ILIKE ?", like, like)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.Barcode != "" {
		tx = tx.Where("barcode = ?", filter.Barcode)
	}

	if err := tx.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

// FindLowStock returns products whose stock is at or below limit.
func (d *ProductDAO) FindLowStock(ctx context.Context, storeID uint, limit int) ([]Product, error) {
	var products []Product

	err := d.db.WithContext(ctx).
		Where("store_id = ? AND stock <= ?", storeID, limit).
		Order("stock ASC, name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (d *ProductDAO) Update(ctx context.Context, product Product) (Product, error) {
	result := d.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND store_id = ?", product.ID, product.StoreID).
		Updates(map[string]any{
			"name":     product.Name,
			"price":    product.Price,
			"stock":    product.Stock,
			"category": product.Category,
			"barcode":  product.Barcode,
		})
	if result.Error != nil {
		return Product{}, mapProductErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return Product{}, ErrProductNotFound
	}

	return d.FindByID(ctx, product.StoreID, product.ID)
}

// AdjustStock adds delta to the stock, refusing to go below zero.
func (d *ProductDAO) AdjustStock(ctx context.Context, storeID, id uint, delta int) (Product, error) {
	result := d.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND store_id = ? AND stock + ? >= 0", id, storeID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return Product{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, storeID, id); err != nil {
			return Product{}, err
		}

		return Product{}, ErrInsufficientStock
	}

	return d.FindByID(ctx, storeID, id)
}

func (d *ProductDAO) Delete(ctx context.Context, storeID, id uint) error {
	result := d.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Delete(&Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Upsert inserts products and updates those whose barcode already exists in
// the store. Products without a barcode are always inserted.
func (d *ProductDAO) Upsert(ctx context.Context, storeID uint, products []Product) (created, updated int, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			p.StoreID = storeID

			if p.Barcode != "" {
				var existing Product
				res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("store_id = ? AND barcode = ?", storeID, p.Barcode).
					Limit(1).Find(&existing)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					if err := tx.Model(&existing).Updates(map[string]any{
						"name":     p.Name,
						"price":    p.Price,
						"stock":    p.Stock,
						"category": p.Category,
					}).Error; err != nil {
						return err
					}
					updated++

					continue
				}
			}

			if err := tx.Create(&p).Error; err != nil {
				return mapProductErr(err)
			}
			created++
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return created, updated, nil
}
