package request

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ActionRequest is the {action, data} body of /api/credits and /api/whatsapp.
type ActionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type LegacyProduct struct {
	ID    ID              `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type LegacySaleItem struct {
	Product  LegacyProduct `json:"product"`
	Quantity int           `json:"quantity"`
}

type LegacyCustomer struct {
	ID            ID              `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// LegacySaleRequest is the body of POST /api/sales.
type LegacySaleRequest struct {
	Customer      *LegacyCustomer  `json:"customer"`
	Items         []LegacySaleItem `json:"items"`
	PaymentMethod string           `json:"paymentMethod"`
	Date          string           `json:"date"`
}

type LegacyPaymentData struct {
	CreditID         ID              `json:"creditId"`
	CustomerID       ID              `json:"customerId"`
	CustomerName     string          `json:"customerName"`
	CustomerPhone    string          `json:"customerPhone"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

type LegacyReminder struct {
	CustomerID    json.RawMessage `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"dueDate"`
}

type LegacyRemindersData struct {
	Reminders []LegacyReminder `json:"reminders"`
}

type LegacyReceiptItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// LegacyWhatsAppData carries the fields of every /api/whatsapp action; each
// action reads the ones it needs.
type LegacyWhatsAppData struct {
	PhoneNumber      string              `json:"phoneNumber"`
	CustomerName     string              `json:"customerName"`
	Items            []LegacyReceiptItem `json:"items"`
	Total            decimal.Decimal     `json:"total"`
	Date             string              `json:"date"`
	PaymentMethod    string              `json:"paymentMethod"`
	Amount           decimal.Decimal     `json:"amount"`
	RemainingBalance decimal.Decimal     `json:"remainingBalance"`
	DueDate          string              `json:"dueDate"`
}
