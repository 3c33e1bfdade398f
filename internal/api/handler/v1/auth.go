package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/config"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/jwthelper"
	"github.com/bodegaapp/bodega-api/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.Store, domain.User, error)
	Login(ctx context.Context, login, password string) (domain.User, error)
	AdminLogin(ctx context.Context, login, password string) (domain.User, error)
	ChangePassword(ctx context.Context, userID uint, current, next, confirm string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, next, confirm string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// passwordErr maps the password policy errors shared by several routes.
func passwordErr(err error) *response.Err {
	if errors.Is(err, service.ErrPasswordMismatch) || errors.Is(err, service.ErrInsecurePassword) {
		return response.ErrBadRequest(err)
	}

	return nil
}

// HandleRegister godoc
// @Summary      Register a store and its owner
// @Description  The store starts pending until the back office activates it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.RegisterRequest  true  "request body"
// @Success      201      {object}  response.Registered
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	store, user, err := h.svc.Register(ctx.Request.Context(), service.RegisterInput{
		Name:            req.Name,
		BusinessName:    req.BusinessName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PlanID:          req.PlanID,
	})
	if err != nil {
		if respErr := passwordErr(err); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		if errors.Is(err, service.ErrUserEmailExists) || errors.Is(err, service.ErrUsernameExists) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}
		if errors.Is(err, service.ErrPlanNotFound) || errors.Is(err, service.ErrNoActivePlan) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.Registered{Store: store, User: user})
}

// HandleLogin godoc
// @Summary      Login with email or username
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	h.login(ctx, h.svc.Login)
}

// HandleAdminLogin godoc
// @Summary      Login to the back office
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.LoginRequest  true  "request body"
// @Success      200      {object}  response.LoginResponse
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/admin/login [post]
func (h *AuthHandler) HandleAdminLogin(ctx *gin.Context) {
	h.login(ctx, h.svc.AdminLogin)
}

func (h *AuthHandler) login(ctx *gin.Context, login func(ctx context.Context, login, password string) (domain.User, error)) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := login(ctx.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}
		if errors.Is(err, service.ErrUserInactive) {
			response.RenderErr(ctx, response.ErrUnauthorized(err))

			return
		}
		if errors.Is(err, service.ErrNotBackOffice) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))

			return
		}

		err = fmt.Errorf("HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent(), h.conf.JWTTTL)
	if err != nil {
		err = fmt.Errorf("HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleChangePassword godoc
// @Summary      Change the password of the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.ChangePasswordRequest  true  "request body"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Router       /auth/password [put]
// @Security     BearerAuth
func (h *AuthHandler) HandleChangePassword(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.ChangePassword(ctx.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if respErr := passwordErr(err); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		if errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleChangePassword -> h.svc.ChangePassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "password updated"})
}

// HandleForgotPassword godoc
// @Summary      Email a password reset link
// @Description  Always answers 200 so accounts cannot be probed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.ForgotPasswordRequest  true  "request body"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.Err
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) HandleForgotPassword(ctx *gin.Context) {
	var req request.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		err = fmt.Errorf("HandleForgotPassword -> h.svc.ForgotPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "if the email exists, a reset link was sent"})
}

// HandleResetPassword godoc
// @Summary      Set a new password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.ResetPasswordRequest  true  "request body"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.Err
// @Router       /auth/reset-password [post]
func (h *AuthHandler) HandleResetPassword(ctx *gin.Context) {
	var req request.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.ResetPassword(ctx.Request.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		if respErr := passwordErr(err); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		if errors.Is(err, service.ErrInvalidResetToken) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleResetPassword -> h.svc.ResetPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "password updated"})
}
