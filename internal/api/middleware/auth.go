package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/jwthelper"
	"github.com/bodegaapp/bodega-api/internal/service"
)

// ContextKeyUser holds the authenticated domain.User.
const ContextKeyUser = "user"

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to another user agent")
	errNotAllowed        = errors.New("role not allowed")
)

type UserGetter interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	key   []byte
	users UserGetter
}

func NewAuthenticator(key string, users UserGetter) *Authenticator {
	return &Authenticator{
		key:   []byte(key),
		users: users,
	}
}

// VerifyJWT checks the bearer token and loads its user into the context.
// Inactive users are rejected.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}
		if claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserAgentMismatch))
			return
		}

		user, err := a.users.GetUser(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}

			err = fmt.Errorf("middleware.VerifyJWT -> a.users.GetUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
		if !user.IsActive() {
			response.RenderErr(ctx, response.ErrUnauthorized(service.ErrUserInactive))
			return
		}

		ctx.Set(ContextKeyUser, user)
		ctx.Next()
	}
}

// RequireRoles must run after VerifyJWT.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := UserFromContext(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("%w: %s", errNotAllowed, user.Role)))
	}
}

func RequireBackOffice() gin.HandlerFunc {
	return RequireRoles(domain.RoleAdmin, domain.RoleSupport, domain.RoleSales)
}

func UserFromContext(ctx *gin.Context) (domain.User, bool) {
	v, ok := ctx.Get(ContextKeyUser)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)

	return user, ok
}
