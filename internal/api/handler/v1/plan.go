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

type PlanService interface {
	CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	GetPlan(ctx context.Context, id uint) (domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	UpdatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	ToggleActive(ctx context.Context, id uint) (domain.Plan, error)
	DeletePlan(ctx context.Context, id uint) error
}

type PlanHandler struct {
	svc PlanService
}

func NewPlanHandler(svc PlanService) *PlanHandler {
	return &PlanHandler{
		svc: svc,
	}
}

func planErr(err error, planID uint, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		return response.ErrNotFound("plan", "ID", planID)
	case errors.Is(err, service.ErrInvalidPlan):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrPlanNameTaken),
		errors.Is(err, service.ErrPlanInUse):
		return response.ErrConflict(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

func planFromRequest(req request.PlanRequest) domain.Plan {
	return domain.Plan{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Features:    req.Features,
	}
}

// HandleListActivePlans godoc
// @Summary      List the plans a store can subscribe to
// @Tags         plans
// @Produce      json
// @Success      200  {array}  domain.Plan
// @Router       /plans [get]
func (h *PlanHandler) HandleListActivePlans(ctx *gin.Context) {
	plans, err := h.svc.ListPlans(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListActivePlans -> h.svc.ListPlans -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	active := make([]domain.Plan, 0, len(plans))
	for _, p := range plans {
		if p.Active {
			active = append(active, p)
		}
	}

	ctx.JSON(http.StatusOK, active)
}

// HandleListPlans godoc
// @Summary      List every plan with its subscriber count
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Plan
// @Router       /admin/plans [get]
// @Security     BearerAuth
func (h *PlanHandler) HandleListPlans(ctx *gin.Context) {
	plans, err := h.svc.ListPlans(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListPlans -> h.svc.ListPlans -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, plans)
}

// HandleCreatePlan godoc
// @Summary      Create a plan
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.PlanRequest  true  "request body"
// @Success      201      {object}  domain.Plan
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/plans [post]
// @Security     BearerAuth
func (h *PlanHandler) HandleCreatePlan(ctx *gin.Context) {
	var req request.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	plan, err := h.svc.CreatePlan(ctx.Request.Context(), planFromRequest(req))
	if err != nil {
		response.RenderErr(ctx, planErr(err, 0, "HandleCreatePlan -> h.svc.CreatePlan"))
		return
	}

	ctx.JSON(http.StatusCreated, plan)
}

// HandleGetPlan godoc
// @Summary      Get a plan
// @Tags         admin
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  domain.Plan
// @Failure      404     {object}  response.Err
// @Router       /admin/plans/{planID} [get]
// @Security     BearerAuth
func (h *PlanHandler) HandleGetPlan(ctx *gin.Context) {
	planID, respErr := parseUintParam(ctx, "planID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	plan, err := h.svc.GetPlan(ctx.Request.Context(), planID)
	if err != nil {
		response.RenderErr(ctx, planErr(err, planID, "HandleGetPlan -> h.svc.GetPlan"))
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// HandleUpdatePlan godoc
// @Summary      Update a plan
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        planID   path      int                  true  "Plan ID"
// @Param        request  body      request.PlanRequest  true  "request body"
// @Success      200      {object}  domain.Plan
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/plans/{planID} [put]
// @Security     BearerAuth
func (h *PlanHandler) HandleUpdatePlan(ctx *gin.Context) {
	planID, respErr := parseUintParam(ctx, "planID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	plan := planFromRequest(req)
	plan.ID = planID

	updated, err := h.svc.UpdatePlan(ctx.Request.Context(), plan)
	if err != nil {
		response.RenderErr(ctx, planErr(err, planID, "HandleUpdatePlan -> h.svc.UpdatePlan"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleTogglePlan godoc
// @Summary      Activate or deactivate a plan
// @Tags         admin
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  domain.Plan
// @Failure      404     {object}  response.Err
// @Router       /admin/plans/{planID}/toggle [post]
// @Security     BearerAuth
func (h *PlanHandler) HandleTogglePlan(ctx *gin.Context) {
	planID, respErr := parseUintParam(ctx, "planID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	plan, err := h.svc.ToggleActive(ctx.Request.Context(), planID)
	if err != nil {
		response.RenderErr(ctx, planErr(err, planID, "HandleTogglePlan -> h.svc.ToggleActive"))
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// HandleDeletePlan godoc
// @Summary      Delete a plan
// @Description  Plans with subscribed stores cannot be deleted.
// @Tags         admin
// @Param        planID  path  int  true  "Plan ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/plans/{planID} [delete]
// @Security     BearerAuth
func (h *PlanHandler) HandleDeletePlan(ctx *gin.Context) {
	planID, respErr := parseUintParam(ctx, "planID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeletePlan(ctx.Request.Context(), planID); err != nil {
		response.RenderErr(ctx, planErr(err, planID, "HandleDeletePlan -> h.svc.DeletePlan"))
		return
	}

	ctx.Status(http.StatusNoContent)
}
