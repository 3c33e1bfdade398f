package repository

import (
	"context"
	"fmt"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
)

var (
	ErrStoreNotFound = dao.ErrStoreNotFound
	ErrPlanNotFound  = dao.ErrPlanNotFound
	ErrPlanNameTaken = dao.ErrPlanNameTaken
	ErrPlanInUse     = dao.ErrPlanInUse
)

type StoreDAO interface {
	InsertWithOwner(ctx context.Context, store dao.Store, owner dao.User) (dao.Store, dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.Store, error)
	FindAll(ctx context.Context, status, query string) ([]dao.Store, error)
	Update(ctx context.Context, store dao.Store) (dao.Store, error)
	UpdateStatus(ctx context.Context, id uint, status string) (dao.Store, error)
}

type StoreRepository struct {
	dao StoreDAO
}

func NewStoreRepository(dao StoreDAO) *StoreRepository {
	return &StoreRepository{
		dao: dao,
	}
}

func (r *StoreRepository) CreateWithOwner(ctx context.Context, store domain.Store, owner domain.User) (domain.Store, domain.User, error) {
	createdStore, createdOwner, err := r.dao.InsertWithOwner(ctx, storeDomainToDAO(store), userDomainToDAO(owner))
	if err != nil {
		return domain.Store{}, domain.User{}, fmt.Errorf("r.dao.InsertWithOwner -> %w", err)
	}

	return storeDAOToDomain(createdStore), userDAOToDomain(createdOwner), nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id uint) (domain.Store, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Store{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return storeDAOToDomain(found), nil
}

func (r *StoreRepository) FindAll(ctx context.Context, status domain.StoreStatus, query string) ([]domain.Store, error) {
	found, err := r.dao.FindAll(ctx, string(status), query)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	stores := make([]domain.Store, len(found))
	for i, s := range found {
		stores[i] = storeDAOToDomain(s)
	}

	return stores, nil
}

func (r *StoreRepository) Update(ctx context.Context, store domain.Store) (domain.Store, error) {
	updated, err := r.dao.Update(ctx, storeDomainToDAO(store))
	if err != nil {
		return domain.Store{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return storeDAOToDomain(updated), nil
}

func (r *StoreRepository) UpdateStatus(ctx context.Context, id uint, status domain.StoreStatus) (domain.Store, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(status))
	if err != nil {
		return domain.Store{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return storeDAOToDomain(updated), nil
}

func storeDomainToDAO(s domain.Store) dao.Store {
	return dao.Store{
		ID:          s.ID,
		Name:        s.Name,
		OwnerName:   s.OwnerName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		PlanID:      s.PlanID,
		Description: s.Description,
		Status:      string(s.Status),
	}
}

func storeDAOToDomain(s dao.Store) domain.Store {
	return domain.Store{
		ID:          s.ID,
		Name:        s.Name,
		OwnerName:   s.OwnerName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		PlanID:      s.PlanID,
		PlanName:    s.Plan.Name,
		Description: s.Description,
		Status:      domain.StoreStatus(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type PlanDAO interface {
	Insert(ctx context.Context, plan dao.Plan) (dao.Plan, error)
	FindByID(ctx context.Context, id uint) (dao.Plan, error)
	FindAll(ctx context.Context) ([]dao.Plan, error)
	Update(ctx context.Context, plan dao.Plan) (dao.Plan, error)
	SetActive(ctx context.Context, id uint, active bool) (dao.Plan, error)
	Delete(ctx context.Context, id uint) error
}

type PlanRepository struct {
	dao PlanDAO
}

func NewPlanRepository(dao PlanDAO) *PlanRepository {
	return &PlanRepository{
		dao: dao,
	}
}

func (r *PlanRepository) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	created, err := r.dao.Insert(ctx, planDomainToDAO(plan))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return planDAOToDomain(created), nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint) (domain.Plan, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return planDAOToDomain(found), nil
}

func (r *PlanRepository) FindAll(ctx context.Context) ([]domain.Plan, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	plans := make([]domain.Plan, len(found))
	for i, p := range found {
		plans[i] = planDAOToDomain(p)
	}

	return plans, nil
}

func (r *PlanRepository) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	updated, err := r.dao.Update(ctx, planDomainToDAO(plan))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return planDAOToDomain(updated), nil
}

func (r *PlanRepository) SetActive(ctx context.Context, id uint, active bool) (domain.Plan, error) {
	updated, err := r.dao.SetActive(ctx, id, active)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.SetActive -> %w", err)
	}

	return planDAOToDomain(updated), nil
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func planDomainToDAO(p domain.Plan) dao.Plan {
	features := make([]dao.PlanFeature, len(p.Features))
	for i, f := range p.Features {
		features[i] = dao.PlanFeature{Name: f.Name, Included: f.Included}
	}

	return dao.Plan{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Features:    features,
		Active:      p.Active,
	}
}

func planDAOToDomain(p dao.Plan) domain.Plan {
	features := make([]domain.PlanFeature, len(p.Features))
	for i, f := range p.Features {
		features[i] = domain.PlanFeature{Name: f.Name, Included: f.Included}
	}

	return domain.Plan{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Features:    features,
		Active:      p.Active,
		StoreCount:  p.StoreCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
