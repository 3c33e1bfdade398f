package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

func newSaleRouter(svc *fakeSaleService) *gin.Engine {
	r := newTestRouter(storeUser(3))
	h := NewSaleHandler(svc, time.UTC)
	r.POST("/sales", h.HandleCreateSale)
	r.GET("/sales/:saleID", h.HandleGetSale)
	r.POST("/sales/:saleID/cancel", h.HandleCancelSale)

	return r
}

func TestHandleCreateSale(t *testing.T) {
	svc := &fakeSaleService{res: service.SaleResult{
		Sale:  domain.Sale{ID: 9007199254740993, StoreID: 3, Status: domain.SaleCompleted},
		Total: decimal.RequireFromString("9"),
	}}
	r := newSaleRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/sales", `{
		"items": [{"product_id": 4, "name": "Arroz", "price": "4.50", "quantity": 2}],
		"payment_method": "cash"
	}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	sale := body["sale"].(map[string]any)
	// Snowflake ids do not fit a float64 and travel as strings.
	assert.Equal(t, "9007199254740993", sale["id"])
	assert.Equal(t, "9", body["total"])

	assert.Equal(t, uint(3), svc.in.StoreID)
	assert.Equal(t, domain.PaymentCash, svc.in.PaymentMethod)
	require.Len(t, svc.in.Items, 1)
	assert.Equal(t, uint(4), svc.in.Items[0].ProductID)
}

func TestHandleCreateSaleErrors(t *testing.T) {
	valid := `{"items": [{"name": "Arroz", "price": 4.5, "quantity": 1}], "payment_method": "cash"}`

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"missing payment method", `{"items": [{"name": "Arroz", "price": 4.5, "quantity": 1}]}`, nil, http.StatusBadRequest},
		{"bad date", `{"items": [], "payment_method": "cash", "date": "ayer"}`, nil, http.StatusBadRequest},
		{"no items", `{"items": [], "payment_method": "cash"}`, service.ErrEmptySale, http.StatusBadRequest},
		{"bad payment method", `{"items": [{"name": "Arroz", "price": 4.5, "quantity": 1}], "payment_method": "yape"}`, service.ErrInvalidPaymentMethod, http.StatusBadRequest},
		{"unknown customer", valid, service.ErrCustomerNotFound, http.StatusBadRequest},
		{"out of stock", valid, service.ErrInsufficientStock, http.StatusConflict},
		{"server failure", valid, assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := newSaleRouter(&fakeSaleService{err: tt.err})

			w := doJSON(t, r, http.MethodPost, "/sales", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleGetSale(t *testing.T) {
	svc := &fakeSaleService{sale: domain.Sale{ID: 77, StoreID: 3}}
	r := newSaleRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/sales/77", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/sales/78", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "sale with ID 78 not found", decode[response.Err](t, w).ErrorText)

	w = doJSON(t, r, http.MethodGet, "/sales/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCancelSale(t *testing.T) {
	svc := &fakeSaleService{sale: domain.Sale{ID: 77, StoreID: 3, Status: domain.SaleCompleted}}
	r := newSaleRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/sales/77/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode[map[string]any](t, w)["status"])

	svc.sale.Status = domain.SaleCancelled
	w = doJSON(t, r, http.MethodPost, "/sales/77/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
