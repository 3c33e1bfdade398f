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
	"github.com/bodegaapp/bodega-api/internal/api/middleware"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

var (
	errNoUserInContext = errors.New("no authenticated user")
	errNoStore         = errors.New("user is not attached to a store")
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListBackOfficeUsers(ctx context.Context) ([]domain.User, error)
	CreateBackOfficeUser(ctx context.Context, user domain.User) (domain.User, string, error)
	ToggleStatus(ctx context.Context, id uint) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func getUserFromContext(ctx *gin.Context) (domain.User, *response.Err) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errNoUserInContext)
	}

	return user, nil
}

// getStoreID returns the store of the authenticated user. Back office users
// have none and are refused.
func getStoreID(ctx *gin.Context) (uint, *response.Err) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		return 0, respErr
	}
	if user.StoreID == nil {
		return 0, response.ErrPermissionDenied(errNoStore)
	}

	return *user.StoreID, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, *response.Err) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %w", name, err))
	}

	return uint(v), nil
}

// HandleGetMe godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  response.Err
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleListUsers godoc
// @Summary      List back office users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListBackOfficeUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListUsers -> h.svc.ListBackOfficeUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreateUser godoc
// @Summary      Create a back office user
// @Description  The user gets a temporary password, returned once, that must be changed on first login.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateUserRequest  true  "request body"
// @Success      201      {object}  response.UserCreated
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /admin/users [post]
// @Security     BearerAuth
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, temp, err := h.svc.CreateBackOfficeUser(ctx.Request.Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) || errors.Is(err, service.ErrUsernameExists) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleCreateUser -> h.svc.CreateBackOfficeUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.UserCreated{User: user, TempPassword: temp})
}

// HandleToggleUserStatus godoc
// @Summary      Activate or deactivate a user
// @Tags         admin
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Router       /admin/users/{userID}/toggle [post]
// @Security     BearerAuth
func (h *UserHandler) HandleToggleUserStatus(ctx *gin.Context) {
	userID, respErr := parseUintParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.ToggleStatus(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("HandleToggleUserStatus -> h.svc.ToggleStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         healthcheck
// @Produce      json
// @Success      200  {object}  response.MessageResponse
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "OK"})
}
