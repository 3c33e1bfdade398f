package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/password"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	ErrInvalidRole  = errors.New("role is not a back office role")
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id uint, status domain.UserStatus) (domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListBackOfficeUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindByRoles(ctx, domain.RoleAdmin, domain.RoleSupport, domain.RoleSales)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRoles -> %w", err)
	}

	return users, nil
}

// CreateBackOfficeUser creates a staff account with a generated temporary
// password, returned in clear so it can be handed over once.
func (s *UserService) CreateBackOfficeUser(ctx context.Context, user domain.User) (domain.User, string, error) {
	if !user.Role.IsBackOffice() {
		return domain.User{}, "", ErrInvalidRole
	}

	temp, err := password.Generate(password.DefaultLength)
	if err != nil {
		return domain.User{}, "", err
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return domain.User{}, "", err
	}

	user.ID = 0
	user.StoreID = nil
	user.Password = hash
	user.Status = domain.UserActive
	user.MustChangePassword = true
	if user.Username == "" {
		user.Username = UsernameFromEmail(user.Email)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, temp, nil
}

// ToggleStatus switches a user between active and inactive.
func (s *UserService) ToggleStatus(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	next := domain.UserInactive
	if !user.IsActive() {
		next = domain.UserActive
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return updated, nil
}
