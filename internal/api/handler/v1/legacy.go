package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/pkg/dateutil"
	"github.com/bodegaapp/bodega-api/internal/service"
)

const (
	msgInvalidAction  = "Acción no válida"
	msgInvalidRequest = "Solicitud no válida"
	msgInvalidDate    = "Fecha no válida"
	msgInvalidCredit  = "Crédito no válido"
)

// legacyMessages are the messages of errors that are not already written
// for the cashier.
var legacyMessages = []struct {
	err error
	msg string
}{
	{service.ErrCustomerNotFound, "Cliente no encontrado"},
	{service.ErrProductNotFound, "Producto no encontrado"},
	{service.ErrInsufficientStock, "Stock insuficiente"},
	{service.ErrCreditNotFound, "Crédito no encontrado"},
	{service.ErrInvalidPaymentAmount, "El monto debe ser mayor a cero"},
	{service.ErrPaymentExceedsDebt, "El monto excede la deuda"},
	{service.ErrCreditAlreadyPaid, "El crédito ya está pagado"},
}

type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, phone, customerName string, items []whatsapp.Item, total decimal.Decimal, date, paymentMethod string) error
	SendCreditPurchaseReceipt(ctx context.Context, phone, customerName string, items []whatsapp.Item, total decimal.Decimal, date string) error
	SendCreditPaymentReceipt(ctx context.Context, phone, customerName string, amount, remainingBalance decimal.Decimal, date string) error
	SendPaymentReminder(ctx context.Context, phone, customerName string, amount decimal.Decimal, dueDate string) error
}

// LegacyHandler serves the {success, ...} routes under /api kept for the
// existing web client.
type LegacyHandler struct {
	sales    SaleService
	credits  CreditService
	whatsapp ReceiptSender
	loc      *time.Location
}

func NewLegacyHandler(sales SaleService, credits CreditService, sender ReceiptSender, loc *time.Location) *LegacyHandler {
	return &LegacyHandler{
		sales:    sales,
		credits:  credits,
		whatsapp: sender,
		loc:      loc,
	}
}

func legacyMessage(err error) (string, bool) {
	for _, m := range legacyMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}

	return "", false
}

// HandleSale godoc
// @Summary      Process a sale (legacy)
// @Tags         legacy
// @Accept       json
// @Produce      json
// @Param        request  body      request.LegacySaleRequest  true  "request body"
// @Success      200      {object}  response.LegacySale
// @Failure      400      {object}  response.Legacy
// @Failure      500      {object}  response.Legacy
// @Router       /api/sales [post]
// @Security     BearerAuth
func (h *LegacyHandler) HandleSale(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.LegacySaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	in := service.SaleInput{
		StoreID:       storeID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Items:         make([]domain.SaleItem, len(req.Items)),
	}
	for i, item := range req.Items {
		// Products outside the catalog carry non numeric ids.
		productID, _ := item.Product.ID.Uint()
		in.Items[i] = domain.SaleItem{
			ProductID: productID,
			Name:      item.Product.Name,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
		}
	}
	if req.Customer != nil {
		customerID, err := req.Customer.ID.Uint()
		if err != nil {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, "Cliente no válido")
			return
		}
		in.CustomerID = &customerID
	}
	if req.Date != "" {
		date, err := dateutil.Parse(req.Date, h.loc)
		if err != nil {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidDate)
			return
		}
		in.Date = date
	}

	res, err := h.sales.ProcessSale(ctx.Request.Context(), in)
	if err != nil {
		if msg, ok := legacyMessage(err); ok {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, msg)
			return
		}
		if isSaleInputErr(err) {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, err.Error())
			return
		}

		response.RenderLegacyInternalErr(ctx, fmt.Errorf("HandleSale -> h.sales.ProcessSale -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, response.LegacySale{Success: true, SaleID: res.SaleID()})
}

// HandleCredits godoc
// @Summary      Credit actions (legacy)
// @Description  Actions: registerPayment, sendReminders.
// @Tags         legacy
// @Accept       json
// @Produce      json
// @Param        request  body      request.ActionRequest  true  "request body"
// @Success      200      {object}  response.LegacyPayment
// @Success      200      {object}  response.LegacyReminders
// @Failure      400      {object}  response.Legacy
// @Failure      500      {object}  response.Legacy
// @Router       /api/credits [post]
// @Security     BearerAuth
func (h *LegacyHandler) HandleCredits(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	switch req.Action {
	case "registerPayment":
		h.registerPayment(ctx, storeID, req.Data)
	case "sendReminders":
		h.sendReminders(ctx, req.Data)
	default:
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidAction)
	}
}

func (h *LegacyHandler) registerPayment(ctx *gin.Context, storeID uint, raw json.RawMessage) {
	var data request.LegacyPaymentData
	if err := json.Unmarshal(raw, &data); err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	creditID, err := data.CreditID.Uint()
	if err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidCredit)
		return
	}

	// The stored balance wins over data.RemainingBalance, which the client
	// computed on its own copy.
	if _, _, err := h.credits.RegisterPayment(ctx.Request.Context(), storeID, creditID, data.Amount); err != nil {
		if msg, ok := legacyMessage(err); ok {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, msg)
			return
		}

		response.RenderLegacyInternalErr(ctx, fmt.Errorf("registerPayment -> h.credits.RegisterPayment -> %w", err))
		return
	}

	ctx.JSON(http.StatusOK, response.LegacyPayment{Success: true, CreditID: creditID})
}

func (h *LegacyHandler) sendReminders(ctx *gin.Context, raw json.RawMessage) {
	var data request.LegacyRemindersData
	if err := json.Unmarshal(raw, &data); err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	reminders := make([]domain.Reminder, len(data.Reminders))
	for i, r := range data.Reminders {
		// Only numeric ids identify stored customers; others are echoed back
		// untouched.
		var id request.ID
		var customerID uint
		if err := json.Unmarshal(r.CustomerID, &id); err == nil {
			customerID, _ = id.Uint()
		}
		reminders[i] = domain.Reminder{
			CustomerID:   customerID,
			CustomerName: r.CustomerName,
			Phone:        r.CustomerPhone,
			Amount:       r.Amount,
			DueDate:      r.DueDate,
		}
	}

	sent := h.credits.SendReminders(ctx.Request.Context(), reminders)

	results := make([]response.LegacyReminderResult, len(sent))
	for i, r := range sent {
		results[i] = response.LegacyReminderResult{CustomerID: data.Reminders[i].CustomerID, Success: r.Success}
	}

	ctx.JSON(http.StatusOK, response.LegacyReminders{Success: true, Results: results})
}

// HandleWhatsApp godoc
// @Summary      Send a WhatsApp notification (legacy)
// @Description  Actions: sendPurchaseReceipt, sendCreditPurchaseReceipt, sendCreditPaymentReceipt, sendPaymentReminder.
// @Tags         legacy
// @Accept       json
// @Produce      json
// @Param        request  body      request.ActionRequest  true  "request body"
// @Success      200      {object}  response.Legacy
// @Failure      400      {object}  response.Legacy
// @Failure      500      {object}  response.Legacy
// @Router       /api/whatsapp [post]
// @Security     BearerAuth
func (h *LegacyHandler) HandleWhatsApp(ctx *gin.Context) {
	var req request.ActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var data request.LegacyWhatsAppData
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidRequest)
			return
		}
	}

	c := ctx.Request.Context()
	var err error
	switch req.Action {
	case "sendPurchaseReceipt":
		err = h.whatsapp.SendPurchaseReceipt(c, data.PhoneNumber, data.CustomerName,
			receiptItems(data.Items), data.Total, data.Date, data.PaymentMethod)
	case "sendCreditPurchaseReceipt":
		err = h.whatsapp.SendCreditPurchaseReceipt(c, data.PhoneNumber, data.CustomerName,
			receiptItems(data.Items), data.Total, data.Date)
	case "sendCreditPaymentReceipt":
		err = h.whatsapp.SendCreditPaymentReceipt(c, data.PhoneNumber, data.CustomerName,
			data.Amount, data.RemainingBalance, data.Date)
	case "sendPaymentReminder":
		err = h.whatsapp.SendPaymentReminder(c, data.PhoneNumber, data.CustomerName, data.Amount, data.DueDate)
	default:
		response.RenderLegacyErr(ctx, http.StatusBadRequest, msgInvalidAction)
		return
	}

	if err != nil {
		zap.L().Warn("whatsapp message not sent",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("action", req.Action),
			zap.Error(err))
	}

	ctx.JSON(http.StatusOK, response.Legacy{Success: err == nil})
}

func receiptItems(items []request.LegacyReceiptItem) []whatsapp.Item {
	out := make([]whatsapp.Item, len(items))
	for i, item := range items {
		out[i] = whatsapp.Item{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}

	return out
}
