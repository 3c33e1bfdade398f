package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
	RoleSales   Role = "sales"
	RoleOwner   Role = "owner"
	RoleCashier Role = "cashier"
)

// IsBackOffice reports whether the role belongs to BodegaApp staff rather
// than to a store.
func (r Role) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleSupport || r == RoleSales
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type User struct {
	ID                 uint       `json:"id"`
	StoreID            *uint      `json:"store_id,omitempty"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Password           string     `json:"-"`
	Name               string     `json:"name"`
	Role               Role       `json:"role"`
	Status             UserStatus `json:"status"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (u User) IsActive() bool {
	return u.Status == UserActive
}

// BelongsTo reports whether the user works in the given store.
func (u User) BelongsTo(storeID uint) bool {
	return u.StoreID != nil && *u.StoreID == storeID
}

type PasswordReset struct {
	Token     string
	UserID    uint
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (r PasswordReset) IsUsable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
