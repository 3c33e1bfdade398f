package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrPlanNotFound  = errors.New("plan not found")
	ErrPlanNameTaken = errors.New("plan name already exists")
	ErrPlanInUse     = errors.New("plan has stores assigned")
)

type PlanFeature struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
}

type Plan struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"unique;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string
	Features    []PlanFeature `gorm:"serializer:json;type:jsonb"`
	Active      bool          `gorm:"not null;default:true"`
	StoreCount  int64         `gorm:"->;-:migration"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	OwnerName   string `gorm:"not null"`
	Email       string `gorm:"not null;index"`
	Phone       string `gorm:"not null"`
	Address     string
	PlanID      uint `gorm:"not null;index"`
	Plan        Plan `gorm:"foreignKey:PlanID"`
	Description string
	Status      string `gorm:"not null;default:active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type StoreDAO struct {
	db *gorm.DB
}

func NewStoreDAO(db *gorm.DB) *StoreDAO {
	return &StoreDAO{
		db: db,
	}
}

// InsertWithOwner creates the store and its owner account together.
func (d *StoreDAO) InsertWithOwner(ctx context.Context, store Store, owner User) (Store, User, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan Plan
		if err := tx.First(&plan, store.PlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}

			return err
		}

		if err := tx.Omit("Plan").Create(&store).Error; err != nil {
			return err
		}

		owner.StoreID = &store.ID
		if err := tx.Create(&owner).Error; err != nil {
			return mapUserErr(err)
		}

		store.Plan = plan

		return nil
	})
	if err != nil {
		return Store{}, User{}, err
	}

	return store, owner, nil
}

func (d *StoreDAO) FindByID(ctx context.Context, id uint) (Store, error) {
	var store Store

	result := d.db.WithContext(ctx).Preload("Plan").First(&store, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Store{}, ErrStoreNotFound
		}

		return Store{}, result.Error
	}

	return store, nil
}

func (d *StoreDAO) FindAll(ctx context.Context, status, query string) ([]Store, error) {
	var stores []Store

	tx := d.db.WithContext(ctx).Preload("Plan").Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("name ILIKE ? OR owner_name ILIKE ? OR email ILIKE ?", like, like, like)
	}

	if err := tx.Find(&stores).Error; err != nil {
		return nil, err
	}

	return stores, nil
}

func (d *StoreDAO) Update(ctx context.Context, store Store) (Store, error) {
	result := d.db.WithContext(ctx).Model(&Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"name":        store.Name,
			"owner_name":  store.OwnerName,
			"email":       store.Email,
			"phone":       store.Phone,
			"address":     store.Address,
			"plan_id":     store.PlanID,
			"description": store.Description,
		})
	if result.Error != nil {
		return Store{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Store{}, ErrStoreNotFound
	}

	return d.FindByID(ctx, store.ID)
}

func (d *StoreDAO) UpdateStatus(ctx context.Context, id uint, status string) (Store, error) {
	result := d.db.WithContext(ctx).Model(&Store{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return Store{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Store{}, ErrStoreNotFound
	}

	return d.FindByID(ctx, id)
}

type PlanDAO struct {
	db *gorm.DB
}

func NewPlanDAO(db *gorm.DB) *PlanDAO {
	return &PlanDAO{
		db: db,
	}
}

func (d *PlanDAO) withStoreCount(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Model(&Plan{}).
		Select("plans.*, (SELECT COUNT(*) FROM stores WHERE stores.plan_id = plans.id) AS store_count")
}

func (d *PlanDAO) Insert(ctx context.Context, plan Plan) (Plan, error) {
	result := d.db.WithContext(ctx).Create(&plan)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_plans_name") {
			return Plan{}, ErrPlanNameTaken
		}

		return Plan{}, result.Error
	}

	return plan, nil
}

func (d *PlanDAO) FindByID(ctx context.Context, id uint) (Plan, error) {
	var plan Plan

	result := d.withStoreCount(ctx).Where("plans.id = ?", id).First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Plan{}, ErrPlanNotFound
		}

		return Plan{}, result.Error
	}

	return plan, nil
}

func (d *PlanDAO) FindAll(ctx context.Context) ([]Plan, error) {
	var plans []Plan

	if err := d.withStoreCount(ctx).Order("plans.price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (d *PlanDAO) Update(ctx context.Context, plan Plan) (Plan, error) {
	result := d.db.WithContext(ctx).Model(&Plan{ID: plan.ID}).
		Select("name", "price", "description", "features").
		Updates(&plan)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_plans_name") {
			return Plan{}, ErrPlanNameTaken
		}

		return Plan{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Plan{}, ErrPlanNotFound
	}

	return d.FindByID(ctx, plan.ID)
}

func (d *PlanDAO) SetActive(ctx context.Context, id uint, active bool) (Plan, error) {
	result := d.db.WithContext(ctx).Model(&Plan{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return Plan{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Plan{}, ErrPlanNotFound
	}

	return d.FindByID(ctx, id)
}

// Delete removes a plan that no store uses.
func (d *PlanDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Store{}).Where("plan_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPlanInUse
		}

		result := tx.Delete(&Plan{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPlanNotFound
		}

		return nil
	})
}
