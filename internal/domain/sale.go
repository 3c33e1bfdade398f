package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCredit
}

// Label is the Spanish name printed on receipts.
func (m PaymentMethod) Label() string {
	if m == PaymentCash {
		return "efectivo"
	}

	return "crédito"
}

type SaleStatus string

const (
	SaleCompleted      SaleStatus = "completed"
	SalePendingPayment SaleStatus = "pending_payment"
	SaleCancelled      SaleStatus = "cancelled"
)

// SaleItem is a product line. ProductID is zero for items sold outside the
// catalog; those lines do not touch stock.
type SaleItem struct {
	ProductID uint            `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Sale struct {
	ID            int64           `json:"id,string"`
	StoreID       uint            `json:"store_id"`
	CustomerID    *uint           `json:"customer_id,omitempty"`
	Customer      *Customer       `json:"customer,omitempty"`
	Items         []SaleItem      `json:"items"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Date          time.Time       `json:"date"`
	Status        SaleStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

// RoundMoney rounds d to céntimos, the precision amounts are stored with.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SumItems returns the sum of price × quantity over items.
func SumItems(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return total
}

type SaleFilter struct {
	PaymentMethod PaymentMethod
	Status        SaleStatus
	CustomerID    uint
	From          *time.Time
	To            *time.Time
	Limit         int
}
