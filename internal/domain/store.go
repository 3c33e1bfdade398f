package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type StoreStatus string

const (
	StoreActive   StoreStatus = "active"
	StorePending  StoreStatus = "pending"
	StoreInactive StoreStatus = "inactive"
)

type Store struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	OwnerName   string      `json:"owner_name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	PlanID      uint        `json:"plan_id"`
	PlanName    string      `json:"plan_name,omitempty"`
	Description string      `json:"description"`
	Status      StoreStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type PlanFeature struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
}

type Plan struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Features    []PlanFeature   `json:"features"`
	Active      bool            `json:"active"`
	StoreCount  int64           `json:"store_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DefaultPlanFeatures is the feature checklist new plans start from.
func DefaultPlanFeatures() []PlanFeature {
	return []PlanFeature{
		{Name: "Clientes", Included: true},
		{Name: "Productos", Included: true},
		{Name: "Soporte por email", Included: true},
		{Name: "Reportes básicos", Included: true},
		{Name: "Notificaciones WhatsApp", Included: false},
		{Name: "Reportes avanzados", Included: false},
		{Name: "Soporte prioritario", Included: false},
		{Name: "Copias de seguridad diarias", Included: false},
	}
}
