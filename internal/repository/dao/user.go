package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserEmailExists    = errors.New("user already exists")
	ErrUsernameExists     = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenNotFound = errors.New("password reset token not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	StoreID *uint `gorm:"index"`

	Username string `gorm:"unique;not null"`
	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Name               string `gorm:"not null"`
	Role               string `gorm:"not null;index"` // "admin", "support", "sales", "owner" or "cashier"
	Status             string `gorm:"not null;default:active"`
	MustChangePassword bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type PasswordReset struct {
	Token     string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return User{}, mapUserErr(result.Error)
	}

	return user, nil
}

func mapUserErr(err error) error {
	switch {
	case isUniqueViolation(err, "uni_users_email"):
		return ErrUserEmailExists
	case isUniqueViolation(err, "uni_users_username"):
		return ErrUsernameExists
	default:
		return err
	}
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// FindByLogin looks a user up by email or username.
func (d *UserDAO) FindByLogin(ctx context.Context, login string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).
		Where("email = ? OR username = ?", login, login).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByRoles(ctx context.Context, roles []string) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at DESC").
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) UpdatePassword(ctx context.Context, id uint, hash string, mustChange bool) error {
	result := d.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password":             hash,
			"must_change_password": mustChange,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (d *UserDAO) UpdateStatus(ctx context.Context, id uint, status string) (User, error) {
	result := d.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *UserDAO) InsertPasswordReset(ctx context.Context, reset PasswordReset) error {
	return d.db.WithContext(ctx).Create(&reset).Error
}

func (d *UserDAO) FindPasswordReset(ctx context.Context, token string) (PasswordReset, error) {
	var reset PasswordReset

	result := d.db.WithContext(ctx).First(&reset, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PasswordReset{}, ErrResetTokenNotFound
		}

		return PasswordReset{}, result.Error
	}

	return reset, nil
}

// ResetPassword stores the new hash and burns the token in one transaction.
func (d *UserDAO) ResetPassword(ctx context.Context, token string, userID uint, hash string, usedAt time.Time) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&PasswordReset{}).
			Where("token = ? AND used_at IS NULL", token).
			Update("used_at", usedAt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrResetTokenNotFound
		}

		result = tx.Model(&User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"password":             hash,
				"must_change_password": false,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}
