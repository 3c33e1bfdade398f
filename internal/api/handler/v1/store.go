package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type StoreService interface {
	CreateStore(ctx context.Context, store domain.Store, sendCredentials bool) (service.CreatedStore, error)
	GetStore(ctx context.Context, id uint) (domain.Store, error)
	ListStores(ctx context.Context, status domain.StoreStatus, query string) ([]domain.Store, error)
	UpdateStore(ctx context.Context, store domain.Store) (domain.Store, error)
	UpdateStatus(ctx context.Context, id uint, status domain.StoreStatus) (domain.Store, error)
}

type StoreHandler struct {
	svc StoreService
}

func NewStoreHandler(svc StoreService) *StoreHandler {
	return &StoreHandler{
		svc: svc,
	}
}

func storeErr(err error, storeID uint, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrStoreNotFound):
		return response.ErrNotFound("store", "ID", storeID)
	case errors.Is(err, service.ErrInvalidStore),
		errors.Is(err, service.ErrInvalidStoreStatus),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrPlanInactive):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrUserEmailExists),
		errors.Is(err, service.ErrUsernameExists):
		return response.ErrConflict(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

func storeFromRequest(req request.StoreRequest) domain.Store {
	return domain.Store{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		PlanID:      req.PlanID,
		Description: req.Description,
	}
}

// HandleCreateStore godoc
// @Summary      Create a store with its owner account
// @Description  The owner gets a temporary password, optionally emailed with the login link.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.StoreRequest  true  "request body"
// @Success      201      {object}  response.StoreCreated
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/stores [post]
// @Security     BearerAuth
func (h *StoreHandler) HandleCreateStore(ctx *gin.Context) {
	var req request.StoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateStore(ctx.Request.Context(), storeFromRequest(req), req.SendCredentials)
	if err != nil {
		response.RenderErr(ctx, storeErr(err, 0, "HandleCreateStore -> h.svc.CreateStore"))
		return
	}

	ctx.JSON(http.StatusCreated, response.StoreCreated{
		Store:           created.Store,
		Owner:           created.Owner,
		TempPassword:    created.TempPassword,
		CredentialsSent: created.CredentialsSent,
	})
}

// HandleListStores godoc
// @Summary      List stores
// @Tags         admin
// @Produce      json
// @Param        status  query     string  false  "active, pending or inactive"
// @Param        q       query     string  false  "Name, owner or email search"
// @Success      200     {array}   domain.Store
// @Router       /admin/stores [get]
// @Security     BearerAuth
func (h *StoreHandler) HandleListStores(ctx *gin.Context) {
	stores, err := h.svc.ListStores(ctx.Request.Context(), domain.StoreStatus(ctx.Query("status")), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("HandleListStores -> h.svc.ListStores -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stores)
}

// HandleGetStore godoc
// @Summary      Get a store
// @Tags         admin
// @Produce      json
// @Param        storeID  path      int  true  "Store ID"
// @Success      200      {object}  domain.Store
// @Failure      404      {object}  response.Err
// @Router       /admin/stores/{storeID} [get]
// @Security     BearerAuth
func (h *StoreHandler) HandleGetStore(ctx *gin.Context) {
	storeID, respErr := parseUintParam(ctx, "storeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	store, err := h.svc.GetStore(ctx.Request.Context(), storeID)
	if err != nil {
		response.RenderErr(ctx, storeErr(err, storeID, "HandleGetStore -> h.svc.GetStore"))
		return
	}

	ctx.JSON(http.StatusOK, store)
}

// HandleUpdateStore godoc
// @Summary      Update a store
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        storeID  path      int                   true  "Store ID"
// @Param        request  body      request.StoreRequest  true  "request body"
// @Success      200      {object}  domain.Store
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/stores/{storeID} [put]
// @Security     BearerAuth
func (h *StoreHandler) HandleUpdateStore(ctx *gin.Context) {
	storeID, respErr := parseUintParam(ctx, "storeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	store := storeFromRequest(req)
	store.ID = storeID

	updated, err := h.svc.UpdateStore(ctx.Request.Context(), store)
	if err != nil {
		response.RenderErr(ctx, storeErr(err, storeID, "HandleUpdateStore -> h.svc.UpdateStore"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleUpdateStoreStatus godoc
// @Summary      Activate, suspend or set a store back to pending
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        storeID  path      int                         true  "Store ID"
// @Param        request  body      request.StoreStatusRequest  true  "request body"
// @Success      200      {object}  domain.Store
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /admin/stores/{storeID}/status [patch]
// @Security     BearerAuth
func (h *StoreHandler) HandleUpdateStoreStatus(ctx *gin.Context) {
	storeID, respErr := parseUintParam(ctx, "storeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StoreStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	store, err := h.svc.UpdateStatus(ctx.Request.Context(), storeID, domain.StoreStatus(req.Status))
	if err != nil {
		response.RenderErr(ctx, storeErr(err, storeID, "HandleUpdateStoreStatus -> h.svc.UpdateStatus"))
		return
	}

	ctx.JSON(http.StatusOK, store)
}
