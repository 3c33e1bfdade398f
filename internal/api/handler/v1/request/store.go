package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/domain"
)

var (
	digitsExp = regexp.MustCompile(`^[0-9]+$`)
)

type ProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
	Barcode  string          `json:"barcode"`
}

func (req *ProductRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&req.Price, validation.By(nonNegativeDecimal), validation.By(cents)),
		validation.Field(&req.Stock, validation.Min(0)),
		validation.Field(&req.Category, validation.Length(0, 80)),
		validation.Field(&req.Barcode, validation.Length(0, 64), validation.Match(digitsExp)),
	)
}

type StockAdjustRequest struct {
	Delta int `json:"delta"`
}

func (req *StockAdjustRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Delta, validation.Required),
	)
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Status  string `json:"status,omitempty"`
}

func (req *CustomerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Phone, validation.Match(phoneExp)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Address, validation.Length(0, 200)),
		validation.Field(&req.Status, validation.In(string(domain.CustomerActive), string(domain.CustomerInactive))),
	)
}

type StoreRequest struct {
	Name            string `json:"name"`
	OwnerName       string `json:"owner_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	PlanID          uint   `json:"plan_id"`
	Description     string `json:"description"`
	SendCredentials bool   `json:"send_credentials"`
}

func (req *StoreRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.OwnerName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneExp)),
		validation.Field(&req.PlanID, validation.Required),
		validation.Field(&req.Description, validation.Length(0, 500)),
	)
}

type StoreStatusRequest struct {
	Status string `json:"status"`
}

func (req *StoreStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required,
			validation.In(string(domain.StoreActive), string(domain.StorePending), string(domain.StoreInactive))),
	)
}

type PlanRequest struct {
	Name        string               `json:"name"`
	Price       decimal.Decimal      `json:"price"`
	Description string               `json:"description"`
	Features    []domain.PlanFeature `json:"features"`
}

func (req *PlanRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Price, validation.By(nonNegativeDecimal), validation.By(cents)),
		validation.Field(&req.Description, validation.Length(0, 500)),
	)
}
