package v1

import (
	"errors"
	"fmt"
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

type legacyFixture struct {
	sales   *fakeSaleService
	credits *fakeCreditService
	sender  *fakeSender
	router  *gin.Engine
}

func newLegacyFixture(user *domain.User) *legacyFixture {
	f := &legacyFixture{
		sales:   &fakeSaleService{},
		credits: &fakeCreditService{},
		sender:  &fakeSender{},
		router:  newTestRouter(user),
	}

	h := NewLegacyHandler(f.sales, f.credits, f.sender, time.UTC)
	f.router.POST("/api/sales", h.HandleSale)
	f.router.POST("/api/credits", h.HandleCredits)
	f.router.POST("/api/whatsapp", h.HandleWhatsApp)

	return f
}

func TestLegacySale(t *testing.T) {
	f := newLegacyFixture(storeUser(3))
	f.sales.res = service.SaleResult{
		Sale:  domain.Sale{ID: 1789},
		Total: decimal.RequireFromString("12.80"),
	}

	w := doJSON(t, f.router, http.MethodPost, "/api/sales", `{
		"customer": {"id": "42", "name": "Rosa", "phone": "987654321", "creditBalance": 0},
		"items": [
			{"product": {"id": "p-1", "name": "Chicha", "price": 5, "stock": 0}, "quantity": 1},
			{"product": {"id": 7, "name": "Arroz", "price": "3.90", "stock": 10}, "quantity": 2}
		],
		"paymentMethod": "credit",
		"date": "15/03/2024"
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success": true, "saleId": "1789"}`, w.Body.String())

	in := f.sales.in
	assert.Equal(t, uint(3), in.StoreID)
	require.NotNil(t, in.CustomerID)
	assert.Equal(t, uint(42), *in.CustomerID)
	assert.Equal(t, domain.PaymentCredit, in.PaymentMethod)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), in.Date)
	require.Len(t, in.Items, 2)
	assert.Equal(t, uint(0), in.Items[0].ProductID)
	assert.Equal(t, "Chicha", in.Items[0].Name)
	assert.Equal(t, uint(7), in.Items[1].ProductID)
	assert.True(t, decimal.RequireFromString("3.90").Equal(in.Items[1].Price))
	assert.Equal(t, 2, in.Items[1].Quantity)
}

func TestLegacySaleWithoutDate(t *testing.T) {
	f := newLegacyFixture(storeUser(3))
	f.sales.res = service.SaleResult{Sale: domain.Sale{ID: 1}}

	w := doJSON(t, f.router, http.MethodPost, "/api/sales",
		`{"items": [{"product": {"id": 1, "name": "Pan", "price": 0.2}, "quantity": 5}], "paymentMethod": "cash"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, f.sales.in.Date.IsZero())
	assert.Nil(t, f.sales.in.CustomerID)
}

func TestLegacySaleErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "credit without customer",
			body:       `{"items": [{"product": {"id": 1, "name": "Pan", "price": 0.2}, "quantity": 1}], "paymentMethod": "credit"}`,
			err:        service.ErrCreditNeedsCustomer,
			wantStatus: http.StatusBadRequest,
			wantError:  "Se requiere un cliente para ventas a crédito",
		},
		{
			name:       "empty sale",
			body:       `{"items": [], "paymentMethod": "cash"}`,
			err:        service.ErrEmptySale,
			wantStatus: http.StatusBadRequest,
			wantError:  "No hay productos en la venta",
		},
		{
			name:       "out of stock",
			body:       `{"items": [{"product": {"id": 1, "name": "Pan", "price": 0.2}, "quantity": 100}], "paymentMethod": "cash"}`,
			err:        fmt.Errorf("s.sales.Create -> %w", service.ErrInsufficientStock),
			wantStatus: http.StatusBadRequest,
			wantError:  "Stock insuficiente",
		},
		{
			name:       "database down",
			body:       `{"items": [{"product": {"id": 1, "name": "Pan", "price": 0.2}, "quantity": 1}], "paymentMethod": "cash"}`,
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  response.GenericLegacyErr,
		},
		{
			name:       "customer id not numeric",
			body:       `{"customer": {"id": "abc"}, "items": [], "paymentMethod": "credit"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Cliente no válido",
		},
		{
			name:       "bad date",
			body:       `{"items": [], "paymentMethod": "cash", "date": "mañana"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Fecha no válida",
		},
		{
			name:       "malformed body",
			body:       `{"items": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "Solicitud no válida",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newLegacyFixture(storeUser(3))
			f.sales.err = tt.err

			w := doJSON(t, f.router, http.MethodPost, "/api/sales", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			got := decode[response.Legacy](t, w)
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestLegacySaleNeedsStore(t *testing.T) {
	f := newLegacyFixture(&domain.User{ID: 1, Role: domain.RoleAdmin, Status: domain.UserActive})

	w := doJSON(t, f.router, http.MethodPost, "/api/sales", `{"items": [], "paymentMethod": "cash"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLegacyRegisterPayment(t *testing.T) {
	f := newLegacyFixture(storeUser(3))

	w := doJSON(t, f.router, http.MethodPost, "/api/credits", `{
		"action": "registerPayment",
		"data": {"creditId": "5", "customerId": 42, "customerName": "Rosa", "customerPhone": "987654321",
			"amount": 20, "remainingBalance": 30}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success": true, "creditId": 5}`, w.Body.String())
	require.NotNil(t, f.credits.payment)
	assert.Equal(t, uint(3), f.credits.payment.storeID)
	assert.Equal(t, uint(5), f.credits.payment.creditID)
	assert.True(t, decimal.NewFromInt(20).Equal(f.credits.payment.amount))
}

func TestLegacyRegisterPaymentErrors(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"exceeds debt", `{"creditId": 5, "amount": 500}`, service.ErrPaymentExceedsDebt, http.StatusBadRequest, "El monto excede la deuda"},
		{"unknown credit", `{"creditId": 5, "amount": 5}`, service.ErrCreditNotFound, http.StatusBadRequest, "Crédito no encontrado"},
		{"already paid", `{"creditId": 5, "amount": 5}`, service.ErrCreditAlreadyPaid, http.StatusBadRequest, "El crédito ya está pagado"},
		{"bad credit id", `{"creditId": "x", "amount": 5}`, nil, http.StatusBadRequest, "Crédito no válido"},
		{"internal", `{"creditId": 5, "amount": 5}`, errors.New("tx aborted"), http.StatusInternalServerError, response.GenericLegacyErr},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newLegacyFixture(storeUser(3))
			f.credits.err = tt.err

			w := doJSON(t, f.router, http.MethodPost, "/api/credits",
				`{"action": "registerPayment", "data": `+tt.data+`}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, response.Legacy{Error: tt.wantError}, decode[response.Legacy](t, w))
		})
	}
}

func TestLegacySendReminders(t *testing.T) {
	f := newLegacyFixture(storeUser(3))

	w := doJSON(t, f.router, http.MethodPost, "/api/credits", `{
		"action": "sendReminders",
		"data": {"reminders": [
			{"customerId": 1, "customerName": "Rosa", "customerPhone": "987654321", "amount": 50, "dueDate": "22/03/2024"},
			{"customerId": "2", "customerName": "Juan", "customerPhone": "", "amount": 10, "dueDate": "01/04/2024"}
		]}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success": true, "results": [
		{"customerId": 1, "success": true},
		{"customerId": "2", "success": false}
	]}`, w.Body.String())

	require.Len(t, f.credits.reminders, 2)
	assert.Equal(t, uint(1), f.credits.reminders[0].CustomerID)
	assert.Equal(t, uint(2), f.credits.reminders[1].CustomerID)
	assert.Equal(t, "22/03/2024", f.credits.reminders[0].DueDate)
	assert.Equal(t, "987654321", f.credits.reminders[0].Phone)
}

func TestLegacySendRemindersKeepsClientIDs(t *testing.T) {
	f := newLegacyFixture(storeUser(3))

	w := doJSON(t, f.router, http.MethodPost, "/api/credits", `{
		"action": "sendReminders",
		"data": {"reminders": [
			{"customerId": "c-17", "customerName": "Rosa", "customerPhone": "987654321", "amount": 50, "dueDate": "22/03/2024"},
			{"customerId": "c-18", "customerName": "Juan", "customerPhone": "912345678", "amount": 10, "dueDate": "01/04/2024"},
			{"customerName": "Ana", "customerPhone": "", "amount": 5, "dueDate": "02/04/2024"}
		]}
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success": true, "results": [
		{"customerId": "c-17", "success": true},
		{"customerId": "c-18", "success": true},
		{"customerId": null, "success": false}
	]}`, w.Body.String())

	require.Len(t, f.credits.reminders, 3)
	assert.Zero(t, f.credits.reminders[0].CustomerID)
	assert.Equal(t, "912345678", f.credits.reminders[1].Phone)
}

func TestLegacyUnknownAction(t *testing.T) {
	for _, path := range []string{"/api/credits", "/api/whatsapp"} {
		f := newLegacyFixture(storeUser(3))

		w := doJSON(t, f.router, http.MethodPost, path, `{"action": "deleteEverything", "data": {}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, response.Legacy{Error: "Acción no válida"}, decode[response.Legacy](t, w), path)
	}
}

func TestLegacyWhatsApp(t *testing.T) {
	tests := []struct {
		action   string
		data     string
		wantCall string
	}{
		{"sendPurchaseReceipt", `{"phoneNumber": "987654321", "customerName": "Rosa", "items": [{"name": "Pan", "quantity": 2, "price": 0.2}], "total": 0.4, "date": "15/03/2024", "paymentMethod": "efectivo"}`, "purchase:987654321"},
		{"sendCreditPurchaseReceipt", `{"phoneNumber": "987654321", "customerName": "Rosa", "items": [], "total": 10, "date": "15/03/2024"}`, "credit_purchase:987654321"},
		{"sendCreditPaymentReceipt", `{"phoneNumber": "987654321", "customerName": "Rosa", "amount": 5, "remainingBalance": 5, "date": "15/03/2024"}`, "payment:987654321"},
		{"sendPaymentReminder", `{"phoneNumber": "987654321", "customerName": "Rosa", "amount": 5, "dueDate": "22/03/2024"}`, "reminder:987654321:22/03/2024"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.action, func(t *testing.T) {
			f := newLegacyFixture(storeUser(3))

			w := doJSON(t, f.router, http.MethodPost, "/api/whatsapp",
				`{"action": "`+tt.action+`", "data": `+tt.data+`}`)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.JSONEq(t, `{"success": true}`, w.Body.String())
			assert.Equal(t, []string{tt.wantCall}, f.sender.calls)
		})
	}
}

func TestLegacyWhatsAppFailureIsNotAnError(t *testing.T) {
	f := newLegacyFixture(storeUser(3))
	f.sender.err = errors.New("template rejected")

	w := doJSON(t, f.router, http.MethodPost, "/api/whatsapp",
		`{"action": "sendPaymentReminder", "data": {"phoneNumber": "987654321", "amount": 5}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": false}`, w.Body.String())
}
