package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/password"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

const resetTokenTTL = 24 * time.Hour

var (
	ErrUserEmailExists   = repository.ErrUserEmailExists
	ErrUsernameExists    = repository.ErrUsernameExists
	ErrWrongPassword     = errors.New("wrong password")
	ErrUserInactive      = errors.New("user is inactive")
	ErrNotBackOffice     = errors.New("user has no back office access")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrInsecurePassword  = errors.New("password must have at least 8 characters, upper and lower case letters, a digit and a special character")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrNoActivePlan      = errors.New("no active plan available")
)

type AuthUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByLogin(ctx context.Context, login string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error
	CreatePasswordReset(ctx context.Context, reset domain.PasswordReset) error
	FindPasswordReset(ctx context.Context, token string) (domain.PasswordReset, error)
	ResetPassword(ctx context.Context, token string, userID uint, hash string, usedAt time.Time) error
}

type AuthStoreRepository interface {
	CreateWithOwner(ctx context.Context, store domain.Store, owner domain.User) (domain.Store, domain.User, error)
}

type AuthPlanRepository interface {
	FindAll(ctx context.Context) ([]domain.Plan, error)
}

type ResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, to, resetLink string) error
}

type AuthService struct {
	users     AuthUserRepository
	stores    AuthStoreRepository
	plans     AuthPlanRepository
	mailer    ResetMailer
	publicURL string
	now       func() time.Time
}

func NewAuthService(users AuthUserRepository, stores AuthStoreRepository, plans AuthPlanRepository, mailer ResetMailer, publicURL string) *AuthService {
	return &AuthService{
		users:     users,
		stores:    stores,
		plans:     plans,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name            string
	BusinessName    string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	PlanID          uint
}

// Register signs a store owner up. The store starts pending until the back
// office activates it. Without a plan the cheapest active plan is used.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.Store, domain.User, error) {
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return domain.Store{}, domain.User{}, err
	}

	planID := in.PlanID
	if planID == 0 {
		id, err := s.defaultPlanID(ctx)
		if err != nil {
			return domain.Store{}, domain.User{}, err
		}
		planID = id
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return domain.Store{}, domain.User{}, err
	}

	store, owner, err := s.stores.CreateWithOwner(ctx,
		domain.Store{
			Name:      in.BusinessName,
			OwnerName: in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			PlanID:    planID,
			Status:    domain.StorePending,
		},
		domain.User{
			Username: UsernameFromEmail(in.Email),
			Email:    in.Email,
			Password: hash,
			Name:     in.Name,
			Role:     domain.RoleOwner,
			Status:   domain.UserActive,
		})
	if err != nil {
		return domain.Store{}, domain.User{}, fmt.Errorf("s.stores.CreateWithOwner -> %w", err)
	}

	return store, owner, nil
}

func (s *AuthService) defaultPlanID(ctx context.Context) (uint, error) {
	plans, err := s.plans.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.plans.FindAll -> %w", err)
	}

	for _, p := range plans {
		if p.Active {
			return p.ID, nil
		}
	}

	return 0, ErrNoActivePlan
}

// Login authenticates by email or username.
func (s *AuthService) Login(ctx context.Context, login, pass string) (domain.User, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.users.FindByLogin -> %w", err)
	}

	if !password.Compare(user.Password, pass) {
		return domain.User{}, ErrWrongPassword
	}
	if !user.IsActive() {
		return domain.User{}, ErrUserInactive
	}

	return user, nil
}

// AdminLogin is Login restricted to back office staff.
func (s *AuthService) AdminLogin(ctx context.Context, login, pass string) (domain.User, error) {
	user, err := s.Login(ctx, login, pass)
	if err != nil {
		return domain.User{}, err
	}
	if !user.Role.IsBackOffice() {
		return domain.User{}, ErrNotBackOffice
	}

	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next, confirm string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.users.FindByID -> %w", err)
	}

	if !password.Compare(user.Password, current) {
		return ErrWrongPassword
	}
	if err := checkNewPassword(next, confirm); err != nil {
		return err
	}

	hash, err := password.Hash(next)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash, false); err != nil {
		return fmt.Errorf("s.users.UpdatePassword -> %w", err)
	}

	return nil
}

// ForgotPassword emails a reset link valid for 24 hours. Unknown emails are
// ignored so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			zap.L().Info("password reset requested for unknown email", zap.String("email", email))
			return nil
		}

		return fmt.Errorf("s.users.FindByEmail -> %w", err)
	}

	reset := domain.PasswordReset{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.users.CreatePasswordReset(ctx, reset); err != nil {
		return fmt.Errorf("s.users.CreatePasswordReset -> %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.publicURL, reset.Token)
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		return fmt.Errorf("s.mailer.SendPasswordResetEmail -> %w", err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, next, confirm string) error {
	if err := checkNewPassword(next, confirm); err != nil {
		return err
	}

	reset, err := s.users.FindPasswordReset(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}

		return fmt.Errorf("s.users.FindPasswordReset -> %w", err)
	}

	now := s.now()
	if !reset.IsUsable(now) {
		return ErrInvalidResetToken
	}

	hash, err := password.Hash(next)
	if err != nil {
		return err
	}

	if err := s.users.ResetPassword(ctx, token, reset.UserID, hash, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}

		return fmt.Errorf("s.users.ResetPassword -> %w", err)
	}

	return nil
}

func checkNewPassword(next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if !password.IsSecure(next) {
		return ErrInsecurePassword
	}

	return nil
}

// UsernameFromEmail returns the local part of an email address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")

	return strings.ToLower(local)
}
