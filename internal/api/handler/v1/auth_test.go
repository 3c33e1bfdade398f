package v1

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/config"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/jwthelper"
	"github.com/bodegaapp/bodega-api/internal/service"
)

const testSigningKey = "test-signing-key"

type fakeAuthService struct {
	AuthService

	user domain.User
	err  error
}

func (f *fakeAuthService) Login(_ context.Context, login, password string) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	if login != f.user.Username || password != "Bodega#2024" {
		return domain.User{}, service.ErrWrongPassword
	}

	return f.user, nil
}

func (f *fakeAuthService) AdminLogin(ctx context.Context, login, password string) (domain.User, error) {
	user, err := f.Login(ctx, login, password)
	if err != nil {
		return domain.User{}, err
	}
	if !user.Role.IsBackOffice() {
		return domain.User{}, service.ErrNotBackOffice
	}

	return user, nil
}

func (f *fakeAuthService) ForgotPassword(context.Context, string) error {
	return f.err
}

func newAuthRouter(svc AuthService) *gin.Engine {
	r := newTestRouter(nil)
	h := NewAuthHandler(&config.APIConfig{JWTSigningKey: testSigningKey, JWTTTL: time.Hour}, svc)
	r.POST("/auth/login", h.HandleLogin)
	r.POST("/auth/admin/login", h.HandleAdminLogin)
	r.POST("/auth/forgot-password", h.HandleForgotPassword)

	return r
}

func TestHandleLogin(t *testing.T) {
	svc := &fakeAuthService{user: domain.User{ID: 12, Username: "rosa", Role: domain.RoleOwner, Status: domain.UserActive}}
	r := newAuthRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/auth/login", `{"login": "rosa", "password": "Bodega#2024"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[response.LoginResponse](t, w)
	assert.Equal(t, uint(12), got.User.ID)

	claims, err := jwthelper.ParseToken([]byte(testSigningKey), got.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, testUserAgent, claims.UserAgent)
}

func TestHandleLoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{"missing password", "/auth/login", `{"login": "rosa"}`, nil, http.StatusBadRequest},
		{"wrong password", "/auth/login", `{"login": "rosa", "password": "nope"}`, nil, http.StatusUnauthorized},
		{"unknown user", "/auth/login", `{"login": "rosa", "password": "Bodega#2024"}`, service.ErrUserNotFound, http.StatusUnauthorized},
		{"inactive user", "/auth/login", `{"login": "rosa", "password": "Bodega#2024"}`, service.ErrUserInactive, http.StatusUnauthorized},
		{"store user on back office", "/auth/admin/login", `{"login": "rosa", "password": "Bodega#2024"}`, nil, http.StatusForbidden},
		{"database down", "/auth/login", `{"login": "rosa", "password": "Bodega#2024"}`, assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{
				user: domain.User{ID: 12, Username: "rosa", Role: domain.RoleOwner, Status: domain.UserActive},
				err:  tt.err,
			}

			w := doJSON(t, newAuthRouter(svc), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleForgotPasswordValidatesEmail(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{})

	w := doJSON(t, r, http.MethodPost, "/auth/forgot-password", `{"email": "not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/forgot-password", `{"email": "rosa@bodega.pe"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
