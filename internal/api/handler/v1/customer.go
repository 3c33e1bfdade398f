package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	GetCustomer(ctx context.Context, storeID, id uint) (domain.Customer, error)
	ListCustomers(ctx context.Context, storeID uint, query string, withDebt bool) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, storeID, id uint) error
	PurchaseHistory(ctx context.Context, storeID, id uint) ([]domain.Sale, error)
	CustomerCredits(ctx context.Context, storeID, id uint) ([]domain.Credit, error)
}

type CustomerHandler struct {
	svc CustomerService
}

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{
		svc: svc,
	}
}

func customerErr(err error, customerID uint, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		return response.ErrNotFound("customer", "ID", customerID)
	case errors.Is(err, service.ErrCustomerHasDebt):
		return response.ErrConflict(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

func customerFromRequest(req request.CustomerRequest, storeID uint) domain.Customer {
	return domain.Customer{
		StoreID: storeID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Status:  domain.CustomerStatus(req.Status),
	}
}

// HandleCreateCustomer godoc
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request  body      request.CustomerRequest  true  "request body"
// @Success      201      {object}  domain.Customer
// @Failure      400      {object}  response.Err
// @Router       /customers [post]
// @Security     BearerAuth
func (h *CustomerHandler) HandleCreateCustomer(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	customer, err := h.svc.CreateCustomer(ctx.Request.Context(), customerFromRequest(req, storeID))
	if err != nil {
		response.RenderErr(ctx, customerErr(err, 0, "HandleCreateCustomer -> h.svc.CreateCustomer"))
		return
	}

	ctx.JSON(http.StatusCreated, customer)
}

// HandleListCustomers godoc
// @Summary      List the customers of the store
// @Tags         customers
// @Produce      json
// @Param        q          query     string  false  "Name or phone search"
// @Param        with_debt  query     bool    false  "Only customers owing money"
// @Success      200        {array}   domain.Customer
// @Failure      400        {object}  response.Err
// @Router       /customers [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleListCustomers(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var withDebt bool
	if v := ctx.Query("with_debt"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid with_debt: %w", err)))
			return
		}
		withDebt = b
	}

	customers, err := h.svc.ListCustomers(ctx.Request.Context(), storeID, ctx.Query("q"), withDebt)
	if err != nil {
		err = fmt.Errorf("HandleListCustomers -> h.svc.ListCustomers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, customers)
}

// HandleGetCustomer godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        customerID  path      int  true  "Customer ID"
// @Success      200         {object}  domain.Customer
// @Failure      404         {object}  response.Err
// @Router       /customers/{customerID} [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleGetCustomer(ctx *gin.Context) {
	storeID, customerID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	customer, err := h.svc.GetCustomer(ctx.Request.Context(), storeID, customerID)
	if err != nil {
		response.RenderErr(ctx, customerErr(err, customerID, "HandleGetCustomer -> h.svc.GetCustomer"))
		return
	}

	ctx.JSON(http.StatusOK, customer)
}

// HandleUpdateCustomer godoc
// @Summary      Update the contact data of a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customerID  path      int                      true  "Customer ID"
// @Param        request     body      request.CustomerRequest  true  "request body"
// @Success      200         {object}  domain.Customer
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Router       /customers/{customerID} [put]
// @Security     BearerAuth
func (h *CustomerHandler) HandleUpdateCustomer(ctx *gin.Context) {
	storeID, customerID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	customer := customerFromRequest(req, storeID)
	customer.ID = customerID

	updated, err := h.svc.UpdateCustomer(ctx.Request.Context(), customer)
	if err != nil {
		response.RenderErr(ctx, customerErr(err, customerID, "HandleUpdateCustomer -> h.svc.UpdateCustomer"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteCustomer godoc
// @Summary      Delete a customer
// @Description  Customers with an outstanding balance cannot be deleted.
// @Tags         customers
// @Param        customerID  path  int  true  "Customer ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /customers/{customerID} [delete]
// @Security     BearerAuth
func (h *CustomerHandler) HandleDeleteCustomer(ctx *gin.Context) {
	storeID, customerID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteCustomer(ctx.Request.Context(), storeID, customerID); err != nil {
		response.RenderErr(ctx, customerErr(err, customerID, "HandleDeleteCustomer -> h.svc.DeleteCustomer"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCustomerSales godoc
// @Summary      Purchase history of a customer
// @Tags         customers
// @Produce      json
// @Param        customerID  path      int  true  "Customer ID"
// @Success      200         {array}   domain.Sale
// @Failure      404         {object}  response.Err
// @Router       /customers/{customerID}/sales [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleCustomerSales(ctx *gin.Context) {
	storeID, customerID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sales, err := h.svc.PurchaseHistory(ctx.Request.Context(), storeID, customerID)
	if err != nil {
		response.RenderErr(ctx, customerErr(err, customerID, "HandleCustomerSales -> h.svc.PurchaseHistory"))
		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleCustomerCredits godoc
// @Summary      Credits of a customer
// @Tags         customers
// @Produce      json
// @Param        customerID  path      int  true  "Customer ID"
// @Success      200         {array}   domain.Credit
// @Failure      404         {object}  response.Err
// @Router       /customers/{customerID}/credits [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleCustomerCredits(ctx *gin.Context) {
	storeID, customerID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	credits, err := h.svc.CustomerCredits(ctx.Request.Context(), storeID, customerID)
	if err != nil {
		response.RenderErr(ctx, customerErr(err, customerID, "HandleCustomerCredits -> h.svc.CustomerCredits"))
		return
	}

	ctx.JSON(http.StatusOK, credits)
}

func (h *CustomerHandler) params(ctx *gin.Context) (uint, uint, *response.Err) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		return 0, 0, respErr
	}

	customerID, respErr := parseUintParam(ctx, "customerID")
	if respErr != nil {
		return 0, 0, respErr
	}

	return storeID, customerID, nil
}
