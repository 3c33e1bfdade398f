package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
)

var (
	ErrUserEmailExists    = dao.ErrUserEmailExists
	ErrUsernameExists     = dao.ErrUsernameExists
	ErrUserNotFound       = dao.ErrUserNotFound
	ErrResetTokenNotFound = dao.ErrResetTokenNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByLogin(ctx context.Context, login string) (dao.User, error)
	FindByRoles(ctx context.Context, roles []string) ([]dao.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error
	UpdateStatus(ctx context.Context, id uint, status string) (dao.User, error)
	InsertPasswordReset(ctx context.Context, reset dao.PasswordReset) error
	FindPasswordReset(ctx context.Context, token string) (dao.PasswordReset, error)
	ResetPassword(ctx context.Context, token string, userID uint, hash string, usedAt time.Time) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, userDomainToDAO(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return userDAOToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return userDAOToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return userDAOToDomain(found), nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (domain.User, error) {
	found, err := r.dao.FindByLogin(ctx, login)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByLogin -> %w", err)
	}

	return userDAOToDomain(found), nil
}

func (r *UserRepository) FindByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	found, err := r.dao.FindByRoles(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRoles -> %w", err)
	}

	users := make([]domain.User, len(found))
	for i, u := range found {
		users[i] = userDAOToDomain(u)
	}

	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error {
	if err := r.dao.UpdatePassword(ctx, id, hash, mustChange); err != nil {
		return fmt.Errorf("r.dao.UpdatePassword -> %w", err)
	}

	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, status domain.UserStatus) (domain.User, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(status))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return userDAOToDomain(updated), nil
}

func (r *UserRepository) CreatePasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	err := r.dao.InsertPasswordReset(ctx, dao.PasswordReset{
		Token:     reset.Token,
		UserID:    reset.UserID,
		ExpiresAt: reset.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("r.dao.InsertPasswordReset -> %w", err)
	}

	return nil
}

func (r *UserRepository) FindPasswordReset(ctx context.Context, token string) (domain.PasswordReset, error) {
	found, err := r.dao.FindPasswordReset(ctx, token)
	if err != nil {
		return domain.PasswordReset{}, fmt.Errorf("r.dao.FindPasswordReset -> %w", err)
	}

	return domain.PasswordReset{
		Token:     found.Token,
		UserID:    found.UserID,
		ExpiresAt: found.ExpiresAt,
		UsedAt:    found.UsedAt,
	}, nil
}

func (r *UserRepository) ResetPassword(ctx context.Context, token string, userID uint, hash string, usedAt time.Time) error {
	if err := r.dao.ResetPassword(ctx, token, userID, hash, usedAt); err != nil {
		return fmt.Errorf("r.dao.ResetPassword -> %w", err)
	}

	return nil
}

func userDomainToDAO(u domain.User) dao.User {
	return dao.User{
		ID:                 u.ID,
		StoreID:            u.StoreID,
		Username:           u.Username,
		Email:              u.Email,
		Password:           u.Password,
		Name:               u.Name,
		Role:               string(u.Role),
		Status:             string(u.Status),
		MustChangePassword: u.MustChangePassword,
	}
}

func userDAOToDomain(u dao.User) domain.User {
	return domain.User{
		ID:                 u.ID,
		StoreID:            u.StoreID,
		Username:           u.Username,
		Email:              u.Email,
		Password:           u.Password,
		Name:               u.Name,
		Role:               domain.Role(u.Role),
		Status:             domain.UserStatus(u.Status),
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
