package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bodegaapp/bodega-api/internal/domain"
)

type PlanRepository interface {
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	FindByID(ctx context.Context, id uint) (domain.Plan, error)
	FindAll(ctx context.Context) ([]domain.Plan, error)
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	SetActive(ctx context.Context, id uint, active bool) (domain.Plan, error)
	Delete(ctx context.Context, id uint) error
}

type PlanService struct {
	repo PlanRepository
}

func NewPlanService(repo PlanRepository) *PlanService {
	return &PlanService{
		repo: repo,
	}
}

func validPlan(p domain.Plan) bool {
	return strings.TrimSpace(p.Name) != "" && !p.Price.IsNegative()
}

// CreatePlan creates an active plan. Without features it starts from the
// default checklist.
func (s *PlanService) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if !validPlan(plan) {
		return domain.Plan{}, ErrInvalidPlan
	}

	plan.ID = 0
	plan.Active = true
	if len(plan.Features) == 0 {
		plan.Features = domain.DefaultPlanFeatures()
	}

	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *PlanService) GetPlan(ctx context.Context, id uint) (domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return plans, nil
}

func (s *PlanService) UpdatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if !validPlan(plan) {
		return domain.Plan{}, ErrInvalidPlan
	}

	updated, err := s.repo.Update(ctx, plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *PlanService) ToggleActive(ctx context.Context, id uint) (domain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	updated, err := s.repo.SetActive(ctx, id, !plan.Active)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.SetActive -> %w", err)
	}

	return updated, nil
}

// DeletePlan removes a plan no store is subscribed to.
func (s *PlanService) DeletePlan(ctx context.Context, id uint) error {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if plan.StoreCount > 0 {
		return ErrPlanInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
