package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero")
	ErrPaymentExceedsDebt   = errors.New("payment amount exceeds credit balance")
	ErrCreditAlreadyPaid    = errors.New("credit already paid")
)

type CreditStatus string

const (
	CreditPending CreditStatus = "pending"
	CreditPartial CreditStatus = "partial"
	CreditPaid    CreditStatus = "paid"
	// CreditCancelled is set when the sale that opened the credit is cancelled.
	CreditCancelled CreditStatus = "cancelled"
)

type Credit struct {
	ID         uint            `json:"id"`
	StoreID    uint            `json:"store_id"`
	CustomerID uint            `json:"customer_id"`
	Customer   *Customer       `json:"customer,omitempty"`
	SaleID     *int64          `json:"sale_id,omitempty,string"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Status     CreditStatus    `json:"status"`
	Date       time.Time       `json:"date"`
	DueDate    time.Time       `json:"due_date"`
	Items      []SaleItem      `json:"items,omitempty"`
	Payments   []CreditPayment `json:"payments,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type CreditPayment struct {
	ID               uint            `json:"id"`
	CreditID         uint            `json:"credit_id"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Date             time.Time       `json:"date"`
}

// NewCredit opens a credit for the whole amount, due after term.
func NewCredit(storeID, customerID uint, saleID *int64, amount decimal.Decimal, items []SaleItem, date time.Time, term time.Duration) Credit {
	return Credit{
		StoreID:    storeID,
		CustomerID: customerID,
		SaleID:     saleID,
		Amount:     amount,
		Balance:    amount,
		Status:     CreditPending,
		Date:       date,
		DueDate:    date.Add(term),
		Items:      items,
	}
}

// ApplyPayment reduces the balance and returns the payment to record. The
// amount is rounded to céntimos first so the balance always matches what is
// stored.
func (c *Credit) ApplyPayment(amount decimal.Decimal, at time.Time) (CreditPayment, error) {
	amount = RoundMoney(amount)
	c.Balance = RoundMoney(c.Balance)
	if c.Status == CreditPaid || c.Status == CreditCancelled || !c.Balance.IsPositive() {
		return CreditPayment{}, ErrCreditAlreadyPaid
	}
	if !amount.IsPositive() {
		return CreditPayment{}, ErrInvalidPaymentAmount
	}
	if amount.GreaterThan(c.Balance) {
		return CreditPayment{}, ErrPaymentExceedsDebt
	}

	c.Balance = c.Balance.Sub(amount)
	if c.Balance.IsZero() {
		c.Status = CreditPaid
	} else {
		c.Status = CreditPartial
	}

	return CreditPayment{
		CreditID:         c.ID,
		Amount:           amount,
		RemainingBalance: c.Balance,
		Date:             at,
	}, nil
}

func (c Credit) IsOverdue(now time.Time) bool {
	return c.Balance.IsPositive() && c.DueDate.Before(now)
}

type CreditFilter struct {
	Status     CreditStatus
	CustomerID uint
	Overdue    bool
}

// Reminder is one payment reminder to send to a customer. DueDate is printed
// as is.
type Reminder struct {
	CustomerID   uint
	CustomerName string
	Phone        string
	Amount       decimal.Decimal
	DueDate      string
}

type ReminderResult struct {
	CustomerID uint `json:"customerId"`
	Success    bool `json:"success"`
}
