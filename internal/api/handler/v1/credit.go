package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type CreditService interface {
	ListCredits(ctx context.Context, storeID uint, filter domain.CreditFilter) ([]domain.Credit, error)
	GetCredit(ctx context.Context, storeID, id uint) (domain.Credit, error)
	RegisterPayment(ctx context.Context, storeID, creditID uint, amount decimal.Decimal) (domain.Credit, domain.CreditPayment, error)
	MarkAsPaid(ctx context.Context, storeID, creditID uint) (domain.Credit, error)
	SendReminders(ctx context.Context, reminders []domain.Reminder) []domain.ReminderResult
	SendReminder(ctx context.Context, storeID, creditID uint) error
}

type CreditHandler struct {
	svc CreditService
}

func NewCreditHandler(svc CreditService) *CreditHandler {
	return &CreditHandler{
		svc: svc,
	}
}

func creditErr(err error, creditID uint, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrCreditNotFound):
		return response.ErrNotFound("credit", "ID", creditID)
	case errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrPaymentExceedsDebt),
		errors.Is(err, service.ErrCustomerWithoutPhone):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrCreditAlreadyPaid):
		return response.ErrConflict(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

// HandleListCredits godoc
// @Summary      List the credits of the store
// @Tags         credits
// @Produce      json
// @Param        status       query     string  false  "pending, partial, paid or cancelled"
// @Param        customer_id  query     int     false  "Customer ID"
// @Param        overdue      query     bool    false  "Only overdue credits"
// @Success      200          {array}   domain.Credit
// @Failure      400          {object}  response.Err
// @Router       /credits [get]
// @Security     BearerAuth
func (h *CreditHandler) HandleListCredits(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.CreditFilter{Status: domain.CreditStatus(ctx.Query("status"))}
	if v := ctx.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid customer_id: %w", err)))
			return
		}
		filter.CustomerID = uint(id)
	}
	if v := ctx.Query("overdue"); v != "" {
		overdue, err := strconv.ParseBool(v)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid overdue: %w", err)))
			return
		}
		filter.Overdue = overdue
	}

	credits, err := h.svc.ListCredits(ctx.Request.Context(), storeID, filter)
	if err != nil {
		err = fmt.Errorf("HandleListCredits -> h.svc.ListCredits -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, credits)
}

// HandleGetCredit godoc
// @Summary      Get a credit with its payments
// @Tags         credits
// @Produce      json
// @Param        creditID  path      int  true  "Credit ID"
// @Success      200       {object}  domain.Credit
// @Failure      404       {object}  response.Err
// @Router       /credits/{creditID} [get]
// @Security     BearerAuth
func (h *CreditHandler) HandleGetCredit(ctx *gin.Context) {
	storeID, creditID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	credit, err := h.svc.GetCredit(ctx.Request.Context(), storeID, creditID)
	if err != nil {
		response.RenderErr(ctx, creditErr(err, creditID, "HandleGetCredit -> h.svc.GetCredit"))
		return
	}

	ctx.JSON(http.StatusOK, credit)
}

// HandleRegisterPayment godoc
// @Summary      Register a payment on a credit
// @Description  The customer gets a WhatsApp receipt with the remaining balance.
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        creditID  path      int                     true  "Credit ID"
// @Param        request   body      request.PaymentRequest  true  "request body"
// @Success      201       {object}  response.PaymentRegistered
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Router       /credits/{creditID}/payments [post]
// @Security     BearerAuth
func (h *CreditHandler) HandleRegisterPayment(ctx *gin.Context) {
	storeID, creditID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	credit, payment, err := h.svc.RegisterPayment(ctx.Request.Context(), storeID, creditID, req.Amount)
	if err != nil {
		response.RenderErr(ctx, creditErr(err, creditID, "HandleRegisterPayment -> h.svc.RegisterPayment"))
		return
	}

	ctx.JSON(http.StatusCreated, response.PaymentRegistered{Credit: credit, Payment: payment})
}

// HandleMarkCreditPaid godoc
// @Summary      Pay the whole remaining balance of a credit
// @Tags         credits
// @Produce      json
// @Param        creditID  path      int  true  "Credit ID"
// @Success      200       {object}  domain.Credit
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Router       /credits/{creditID}/pay [post]
// @Security     BearerAuth
func (h *CreditHandler) HandleMarkCreditPaid(ctx *gin.Context) {
	storeID, creditID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	credit, err := h.svc.MarkAsPaid(ctx.Request.Context(), storeID, creditID)
	if err != nil {
		response.RenderErr(ctx, creditErr(err, creditID, "HandleMarkCreditPaid -> h.svc.MarkAsPaid"))
		return
	}

	ctx.JSON(http.StatusOK, credit)
}

// HandleSendReminder godoc
// @Summary      Send a payment reminder for a credit
// @Tags         credits
// @Produce      json
// @Param        creditID  path      int  true  "Credit ID"
// @Success      200       {object}  response.MessageResponse
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Router       /credits/{creditID}/reminder [post]
// @Security     BearerAuth
func (h *CreditHandler) HandleSendReminder(ctx *gin.Context) {
	storeID, creditID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.SendReminder(ctx.Request.Context(), storeID, creditID); err != nil {
		response.RenderErr(ctx, creditErr(err, creditID, "HandleSendReminder -> h.svc.SendReminder"))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "reminder sent"})
}

// HandleSendReminders godoc
// @Summary      Send payment reminders
// @Description  Reminders are sent concurrently; results keep the order of the request.
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        request  body      request.RemindersRequest  true  "request body"
// @Success      200      {object}  response.RemindersSent
// @Failure      400      {object}  response.Err
// @Router       /credits/reminders [post]
// @Security     BearerAuth
func (h *CreditHandler) HandleSendReminders(ctx *gin.Context) {
	if _, respErr := getStoreID(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RemindersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reminders := make([]domain.Reminder, len(req.Reminders))
	for i, r := range req.Reminders {
		reminders[i] = domain.Reminder{
			CustomerID:   r.CustomerID,
			CustomerName: r.CustomerName,
			Phone:        r.Phone,
			Amount:       r.Amount,
			DueDate:      r.DueDate,
		}
	}

	results := h.svc.SendReminders(ctx.Request.Context(), reminders)

	ctx.JSON(http.StatusOK, response.RemindersSent{Results: results})
}

func (h *CreditHandler) params(ctx *gin.Context) (uint, uint, *response.Err) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		return 0, 0, respErr
	}

	creditID, respErr := parseUintParam(ctx, "creditID")
	if respErr != nil {
		return 0, 0, respErr
	}

	return storeID, creditID, nil
}
