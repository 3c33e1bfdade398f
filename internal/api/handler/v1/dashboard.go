package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type DashboardService interface {
	Summary(ctx context.Context, storeID uint) (service.DashboardSummary, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
	}
}

// HandleDashboard godoc
// @Summary      Today's figures of the store
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  service.DashboardSummary
// @Failure      403  {object}  response.Err
// @Router       /dashboard [get]
// @Security     BearerAuth
func (h *DashboardHandler) HandleDashboard(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Summary(ctx.Request.Context(), storeID)
	if err != nil {
		err = fmt.Errorf("HandleDashboard -> h.svc.Summary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
