package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uint            `json:"id"`
	StoreID   uint            `json:"store_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Barcode   string          `json:"barcode"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductFilter struct {
	Query    string
	Category string
	Barcode  string
}

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

type Customer struct {
	ID            uint            `json:"id"`
	StoreID       uint            `json:"store_id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"address,omitempty"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	Status        CustomerStatus  `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (c Customer) HasDebt() bool {
	return c.CreditBalance.IsPositive()
}
