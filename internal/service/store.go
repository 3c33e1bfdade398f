package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/email"
	"github.com/bodegaapp/bodega-api/internal/pkg/password"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

var (
	ErrStoreNotFound      = repository.ErrStoreNotFound
	ErrPlanNotFound       = repository.ErrPlanNotFound
	ErrPlanNameTaken      = repository.ErrPlanNameTaken
	ErrPlanInUse          = repository.ErrPlanInUse
	ErrPlanInactive       = errors.New("plan is not active")
	ErrInvalidStore       = errors.New("store needs a name, an owner name, an email, a phone and a plan")
	ErrInvalidPlan        = errors.New("plan needs a name and a non negative price")
	ErrInvalidStoreStatus = errors.New("invalid store status")
)

type StoreRepository interface {
	CreateWithOwner(ctx context.Context, store domain.Store, owner domain.User) (domain.Store, domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.Store, error)
	FindAll(ctx context.Context, status domain.StoreStatus, query string) ([]domain.Store, error)
	Update(ctx context.Context, store domain.Store) (domain.Store, error)
	UpdateStatus(ctx context.Context, id uint, status domain.StoreStatus) (domain.Store, error)
}

type StorePlanRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Plan, error)
}

type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, data email.WelcomeEmailData) error
}

type StoreService struct {
	repo     StoreRepository
	plans    StorePlanRepository
	mailer   WelcomeMailer
	loginURL string
}

func NewStoreService(repo StoreRepository, plans StorePlanRepository, mailer WelcomeMailer, publicURL string) *StoreService {
	return &StoreService{
		repo:     repo,
		plans:    plans,
		mailer:   mailer,
		loginURL: strings.TrimRight(publicURL, "/") + "/login",
	}
}

type CreatedStore struct {
	Store           domain.Store
	Owner           domain.User
	TempPassword    string
	CredentialsSent bool
}

// CreateStore creates a store with its owner account. The owner gets a
// generated temporary password that must be changed on first login; when
// sendCredentials is set, the credentials are emailed to the owner.
func (s *StoreService) CreateStore(ctx context.Context, store domain.Store, sendCredentials bool) (CreatedStore, error) {
	if strings.TrimSpace(store.Name) == "" || strings.TrimSpace(store.OwnerName) == "" ||
		strings.TrimSpace(store.Email) == "" || strings.TrimSpace(store.Phone) == "" || store.PlanID == 0 {
		return CreatedStore{}, ErrInvalidStore
	}

	plan, err := s.plans.FindByID(ctx, store.PlanID)
	if err != nil {
		return CreatedStore{}, fmt.Errorf("s.plans.FindByID -> %w", err)
	}
	if !plan.Active {
		return CreatedStore{}, ErrPlanInactive
	}

	temp, err := password.Generate(password.DefaultLength)
	if err != nil {
		return CreatedStore{}, err
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return CreatedStore{}, err
	}

	if store.Status == "" {
		store.Status = domain.StoreActive
	}

	created, owner, err := s.repo.CreateWithOwner(ctx, store, domain.User{
		Username:           UsernameFromEmail(store.Email),
		Email:              store.Email,
		Password:           hash,
		Name:               store.OwnerName,
		Role:               domain.RoleOwner,
		Status:             domain.UserActive,
		MustChangePassword: true,
	})
	if err != nil {
		return CreatedStore{}, fmt.Errorf("s.repo.CreateWithOwner -> %w", err)
	}

	result := CreatedStore{Store: created, Owner: owner, TempPassword: temp}

	if sendCredentials {
		err := s.mailer.SendWelcomeEmail(ctx, email.WelcomeEmailData{
			To:        owner.Email,
			StoreName: created.Name,
			OwnerName: created.OwnerName,
			Username:  owner.Username,
			Password:  temp,
			LoginURL:  s.loginURL,
		})
		if err != nil {
			zap.L().Warn("welcome email not sent", zap.Uint("store_id", created.ID), zap.Error(err))
		} else {
			result.CredentialsSent = true
		}
	}

	return result, nil
}

func (s *StoreService) GetStore(ctx context.Context, id uint) (domain.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Store{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return store, nil
}

func (s *StoreService) ListStores(ctx context.Context, status domain.StoreStatus, query string) ([]domain.Store, error) {
	stores, err := s.repo.FindAll(ctx, status, query)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return stores, nil
}

func (s *StoreService) UpdateStore(ctx context.Context, store domain.Store) (domain.Store, error) {
	if strings.TrimSpace(store.Name) == "" || strings.TrimSpace(store.OwnerName) == "" || store.PlanID == 0 {
		return domain.Store{}, ErrInvalidStore
	}

	if _, err := s.plans.FindByID(ctx, store.PlanID); err != nil {
		return domain.Store{}, fmt.Errorf("s.plans.FindByID -> %w", err)
	}

	updated, err := s.repo.Update(ctx, store)
	if err != nil {
		return domain.Store{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *StoreService) UpdateStatus(ctx context.Context, id uint, status domain.StoreStatus) (domain.Store, error) {
	switch status {
	case domain.StoreActive, domain.StorePending, domain.StoreInactive:
	default:
		return domain.Store{}, ErrInvalidStoreStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Store{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return updated, nil
}
