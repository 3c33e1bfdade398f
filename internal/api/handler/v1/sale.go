package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/dateutil"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type SaleService interface {
	ProcessSale(ctx context.Context, in service.SaleInput) (service.SaleResult, error)
	GetSale(ctx context.Context, storeID uint, id int64) (domain.Sale, error)
	ListSales(ctx context.Context, storeID uint, filter domain.SaleFilter) ([]domain.Sale, error)
	MarkAsPaid(ctx context.Context, storeID uint, id int64) (domain.Sale, error)
	CancelSale(ctx context.Context, storeID uint, id int64) (domain.Sale, error)
	ResendReceipt(ctx context.Context, storeID uint, id int64) error
}

type SaleHandler struct {
	svc SaleService
	loc *time.Location
}

func NewSaleHandler(svc SaleService, loc *time.Location) *SaleHandler {
	return &SaleHandler{
		svc: svc,
		loc: loc,
	}
}

// isSaleInputErr reports the errors caused by the sale itself, as opposed
// to failures of the server.
func isSaleInputErr(err error) bool {
	for _, target := range []error{
		service.ErrEmptySale,
		service.ErrCreditNeedsCustomer,
		service.ErrInvalidPaymentMethod,
		service.ErrInvalidSaleItem,
		service.ErrCustomerNotFound,
		service.ErrProductNotFound,
		service.ErrInsufficientStock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func parseSaleID(ctx *gin.Context) (int64, *response.Err) {
	id, err := strconv.ParseInt(ctx.Param("saleID"), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid sale ID: %w", err))
	}

	return id, nil
}

func (h *SaleHandler) saleErr(err error, saleID int64, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrSaleNotFound):
		return response.ErrNotFound("sale", "ID", saleID)
	case errors.Is(err, service.ErrSaleAlreadyCancelled),
		errors.Is(err, service.ErrCreditHasPayments),
		errors.Is(err, service.ErrCreditAlreadyPaid):
		return response.ErrConflict(err)
	case errors.Is(err, service.ErrSaleNotCredit),
		errors.Is(err, service.ErrSaleWithoutCustomer):
		return response.ErrBadRequest(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

// HandleCreateSale godoc
// @Summary      Register a sale
// @Description  Credit sales need a customer; they open a credit and send a WhatsApp receipt.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request  body      request.SaleRequest  true  "request body"
// @Success      201      {object}  response.SaleCreated
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /sales [post]
// @Security     BearerAuth
func (h *SaleHandler) HandleCreateSale(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := dateutil.Parse(req.Date, h.loc)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid date: %w", err)))
			return
		}
		date = d
	}

	items := make([]domain.SaleItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.SaleItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	res, err := h.svc.ProcessSale(ctx.Request.Context(), service.SaleInput{
		StoreID:       storeID,
		CustomerID:    req.CustomerID,
		Items:         items,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Date:          date,
	})
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}
		if isSaleInputErr(err) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleCreateSale -> h.svc.ProcessSale -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.SaleCreated{Sale: res.Sale, Total: res.Total})
}

// HandleListSales godoc
// @Summary      List the sales of the store
// @Tags         sales
// @Produce      json
// @Param        payment_method  query     string  false  "cash or credit"
// @Param        status          query     string  false  "completed, pending_payment or cancelled"
// @Param        customer_id     query     int     false  "Customer ID"
// @Param        from            query     string  false  "From date (dd/mm/yyyy or ISO 8601)"
// @Param        to              query     string  false  "To date, exclusive"
// @Param        limit           query     int     false  "Maximum number of sales"
// @Success      200             {array}   domain.Sale
// @Failure      400             {object}  response.Err
// @Router       /sales [get]
// @Security     BearerAuth
func (h *SaleHandler) HandleListSales(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.SaleFilter{
		PaymentMethod: domain.PaymentMethod(ctx.Query("payment_method")),
		Status:        domain.SaleStatus(ctx.Query("status")),
	}
	if v := ctx.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid customer_id: %w", err)))
			return
		}
		filter.CustomerID = uint(id)
	}
	if v := ctx.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid limit %q", v)))
			return
		}
		filter.Limit = limit
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := ctx.Query(name)
		if v == "" {
			continue
		}
		t, err := dateutil.Parse(v, h.loc)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s: %w", name, err)))
			return
		}
		*dst = &t
	}

	sales, err := h.svc.ListSales(ctx.Request.Context(), storeID, filter)
	if err != nil {
		err = fmt.Errorf("HandleListSales -> h.svc.ListSales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleGetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        saleID  path      string  true  "Sale ID"
// @Success      200     {object}  domain.Sale
// @Failure      404     {object}  response.Err
// @Router       /sales/{saleID} [get]
// @Security     BearerAuth
func (h *SaleHandler) HandleGetSale(ctx *gin.Context) {
	h.withSale(ctx, "HandleGetSale -> h.svc.GetSale", func(c context.Context, storeID uint, id int64) (any, error) {
		return h.svc.GetSale(c, storeID, id)
	})
}

// HandleMarkSalePaid godoc
// @Summary      Settle the credit of a credit sale
// @Tags         sales
// @Produce      json
// @Param        saleID  path      string  true  "Sale ID"
// @Success      200     {object}  domain.Sale
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      409     {object}  response.Err
// @Router       /sales/{saleID}/pay [post]
// @Security     BearerAuth
func (h *SaleHandler) HandleMarkSalePaid(ctx *gin.Context) {
	h.withSale(ctx, "HandleMarkSalePaid -> h.svc.MarkAsPaid", func(c context.Context, storeID uint, id int64) (any, error) {
		return h.svc.MarkAsPaid(c, storeID, id)
	})
}

// HandleCancelSale godoc
// @Summary      Cancel a sale
// @Description  Restocks the products. A credit sale can only be cancelled before any payment.
// @Tags         sales
// @Produce      json
// @Param        saleID  path      string  true  "Sale ID"
// @Success      200     {object}  domain.Sale
// @Failure      404     {object}  response.Err
// @Failure      409     {object}  response.Err
// @Router       /sales/{saleID}/cancel [post]
// @Security     BearerAuth
func (h *SaleHandler) HandleCancelSale(ctx *gin.Context) {
	h.withSale(ctx, "HandleCancelSale -> h.svc.CancelSale", func(c context.Context, storeID uint, id int64) (any, error) {
		return h.svc.CancelSale(c, storeID, id)
	})
}

// HandleResendReceipt godoc
// @Summary      Send the WhatsApp receipt of a sale again
// @Tags         sales
// @Produce      json
// @Param        saleID  path      string  true  "Sale ID"
// @Success      200     {object}  response.MessageResponse
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Router       /sales/{saleID}/receipt [post]
// @Security     BearerAuth
func (h *SaleHandler) HandleResendReceipt(ctx *gin.Context) {
	h.withSale(ctx, "HandleResendReceipt -> h.svc.ResendReceipt", func(c context.Context, storeID uint, id int64) (any, error) {
		if err := h.svc.ResendReceipt(c, storeID, id); err != nil {
			return nil, err
		}

		return response.MessageResponse{Message: "receipt sent"}, nil
	})
}

func (h *SaleHandler) withSale(ctx *gin.Context, op string, fn func(c context.Context, storeID uint, id int64) (any, error)) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	saleID, respErr := parseSaleID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	out, err := fn(ctx.Request.Context(), storeID, saleID)
	if err != nil {
		response.RenderErr(ctx, h.saleErr(err, saleID, op))
		return
	}

	ctx.JSON(http.StatusOK, out)
}
