package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/api/middleware"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/service"
)

const testUserAgent = "bodega-test"

func storeUser(storeID uint) *domain.User {
	return &domain.User{ID: 10, StoreID: &storeID, Role: domain.RoleOwner, Status: domain.UserActive}
}

// newTestRouter returns a router that authenticates every request as user,
// when given.
func newTestRouter(user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.New())
	if user != nil {
		u := *user
		r.Use(func(ctx *gin.Context) {
			ctx.Set(middleware.ContextKeyUser, u)
			ctx.Next()
		})
	}

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", testUserAgent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

type fakeSaleService struct {
	SaleService

	in  service.SaleInput
	res service.SaleResult
	err error

	sale domain.Sale
}

func (f *fakeSaleService) ProcessSale(_ context.Context, in service.SaleInput) (service.SaleResult, error) {
	f.in = in

	return f.res, f.err
}

func (f *fakeSaleService) GetSale(_ context.Context, storeID uint, id int64) (domain.Sale, error) {
	if f.err != nil {
		return domain.Sale{}, f.err
	}
	if f.sale.ID != id || f.sale.StoreID != storeID {
		return domain.Sale{}, service.ErrSaleNotFound
	}

	return f.sale, nil
}

func (f *fakeSaleService) CancelSale(ctx context.Context, storeID uint, id int64) (domain.Sale, error) {
	sale, err := f.GetSale(ctx, storeID, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale.Status == domain.SaleCancelled {
		return domain.Sale{}, service.ErrSaleAlreadyCancelled
	}
	sale.Status = domain.SaleCancelled

	return sale, nil
}

type paymentCall struct {
	storeID, creditID uint
	amount            decimal.Decimal
}

type fakeCreditService struct {
	CreditService

	payment   *paymentCall
	err       error
	reminders []domain.Reminder
}

func (f *fakeCreditService) RegisterPayment(_ context.Context, storeID, creditID uint, amount decimal.Decimal) (domain.Credit, domain.CreditPayment, error) {
	f.payment = &paymentCall{storeID: storeID, creditID: creditID, amount: amount}
	if f.err != nil {
		return domain.Credit{}, domain.CreditPayment{}, f.err
	}

	return domain.Credit{ID: creditID, StoreID: storeID}, domain.CreditPayment{CreditID: creditID, Amount: amount}, nil
}

func (f *fakeCreditService) SendReminders(_ context.Context, reminders []domain.Reminder) []domain.ReminderResult {
	f.reminders = reminders

	results := make([]domain.ReminderResult, len(reminders))
	for i, r := range reminders {
		results[i] = domain.ReminderResult{CustomerID: r.CustomerID, Success: r.Phone != ""}
	}

	return results
}

type fakeSender struct {
	calls []string
	err   error
}

func (f *fakeSender) SendPurchaseReceipt(_ context.Context, phone, _ string, _ []whatsapp.Item, _ decimal.Decimal, _, _ string) error {
	f.calls = append(f.calls, "purchase:"+phone)
	return f.err
}

func (f *fakeSender) SendCreditPurchaseReceipt(_ context.Context, phone, _ string, _ []whatsapp.Item, _ decimal.Decimal, _ string) error {
	f.calls = append(f.calls, "credit_purchase:"+phone)
	return f.err
}

func (f *fakeSender) SendCreditPaymentReceipt(_ context.Context, phone, _ string, _, _ decimal.Decimal, _ string) error {
	f.calls = append(f.calls, "payment:"+phone)
	return f.err
}

func (f *fakeSender) SendPaymentReminder(_ context.Context, phone, _ string, _ decimal.Decimal, dueDate string) error {
	f.calls = append(f.calls, "reminder:"+phone+":"+dueDate)
	return f.err
}
