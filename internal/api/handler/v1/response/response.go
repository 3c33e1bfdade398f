package response

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LegacySale struct {
	Success bool   `json:"success"`
	SaleID  string `json:"saleId"`
}

type LegacyPayment struct {
	Success  bool `json:"success"`
	CreditID uint `json:"creditId"`
}

// LegacyReminderResult echoes the customerId exactly as the client sent it.
type LegacyReminderResult struct {
	CustomerID json.RawMessage `json:"customerId"`
	Success    bool            `json:"success"`
}

type LegacyReminders struct {
	Success bool                   `json:"success"`
	Results []LegacyReminderResult `json:"results"`
}

type SaleCreated struct {
	Sale  domain.Sale     `json:"sale"`
	Total decimal.Decimal `json:"total"`
}

type PaymentRegistered struct {
	Credit  domain.Credit        `json:"credit"`
	Payment domain.CreditPayment `json:"payment"`
}

type RemindersSent struct {
	Results []domain.ReminderResult `json:"results"`
}

type StoreCreated struct {
	Store           domain.Store `json:"store"`
	Owner           domain.User  `json:"owner"`
	TempPassword    string       `json:"temp_password"`
	CredentialsSent bool         `json:"credentials_sent"`
}

type UserCreated struct {
	User         domain.User `json:"user"`
	TempPassword string      `json:"temp_password"`
}

type Registered struct {
	Store domain.Store `json:"store"`
	User  domain.User  `json:"user"`
}
