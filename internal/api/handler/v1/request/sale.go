package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

type SaleItemRequest struct {
	ProductID uint            `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// SaleRequest leaves item and payment rules to the sale service, which
// answers with the messages shown at the till.
type SaleRequest struct {
	CustomerID    *uint             `json:"customer_id,omitempty"`
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	Date          string            `json:"date,omitempty"`
}

func (req *SaleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentMethod, validation.Required),
	)
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (req *PaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.By(positiveDecimal), validation.By(cents)),
	)
}

type ReminderRequest struct {
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      string          `json:"due_date"`
}

type RemindersRequest struct {
	Reminders []ReminderRequest `json:"reminders"`
}

func (req *RemindersRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reminders, validation.Required),
	)
}
