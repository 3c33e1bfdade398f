package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/pkg/password"
)

const testPassword = "Bodega#2024"

func hashed(t *testing.T, plain string) string {
	t.Helper()

	h, err := password.Hash(plain)
	require.NoError(t, err)

	return h
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeStoreRepo, *fakeMailer) {
	t.Helper()

	storeID := uint(1)
	users := newFakeUserRepo(
		domain.User{ID: 1, StoreID: &storeID, Username: "rosa", Email: "rosa@bodega.pe", Password: hashed(t, testPassword), Role: domain.RoleOwner, Status: domain.UserActive},
		domain.User{ID: 2, Username: "soporte", Email: "soporte@bodegaapp.pe", Password: hashed(t, testPassword), Role: domain.RoleSupport, Status: domain.UserActive},
		domain.User{ID: 3, Username: "baja", Email: "baja@bodega.pe", Password: hashed(t, testPassword), Role: domain.RoleCashier, Status: domain.UserInactive},
	)
	stores := &fakeStoreRepo{stores: map[uint]domain.Store{}}
	plans := &fakePlanRepo{plans: map[uint]domain.Plan{
		1: {ID: 1, Name: "Legacy", Active: false},
		2: {ID: 2, Name: "Básico", Active: true},
	}}
	mailer := &fakeMailer{}

	svc := NewAuthService(users, stores, plans, mailer, "https://app.bodegaapp.pe/")
	svc.now = func() time.Time { return saleNow }

	return svc, users, stores, mailer
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Login(ctx, "rosa@bodega.pe", testPassword)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	user, err = svc.Login(ctx, "rosa", testPassword)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Login(ctx, "rosa", "otra")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nadie", testPassword)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, "baja", testPassword)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAdminLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	user, err := svc.AdminLogin(context.Background(), "soporte", testPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, user.Role)

	_, err = svc.AdminLogin(context.Background(), "rosa", testPassword)
	assert.ErrorIs(t, err, ErrNotBackOffice)
}

func TestRegister(t *testing.T) {
	svc, _, stores, _ := newAuthFixture(t)

	store, owner, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Juan Pérez",
		BusinessName:    "Bodega Don Juan",
		Email:           "Juan.Perez@correo.pe",
		Phone:           "987123456",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StorePending, store.Status)
	assert.Equal(t, uint(2), store.PlanID)
	assert.Equal(t, "juan.perez", owner.Username)
	assert.Equal(t, domain.RoleOwner, owner.Role)
	assert.True(t, password.Compare(owner.Password, testPassword))
	assert.Len(t, stores.owners, 1)
}

func TestRegisterPasswordChecks(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{Password: testPassword, ConfirmPassword: "distinta"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, _, err = svc.Register(context.Background(), RegisterInput{Password: "corta", ConfirmPassword: "corta"})
	assert.ErrorIs(t, err, ErrInsecurePassword)
}

func TestChangePassword(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	next := "Nueva$Clave9"

	err := svc.ChangePassword(context.Background(), 1, "equivocada", next, next)
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), 1, testPassword, next, next))
	assert.True(t, password.Compare(users.users[1].Password, next))
	assert.False(t, users.users[1].MustChangePassword)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, users, _, mailer := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, "desconocido@correo.pe"))
	assert.Empty(t, mailer.resets)

	require.NoError(t, svc.ForgotPassword(ctx, "rosa@bodega.pe"))
	link := mailer.resets["rosa@bodega.pe"]
	require.True(t, strings.HasPrefix(link, "https://app.bodegaapp.pe/reset-password?token="), link)
	token := strings.TrimPrefix(link, "https://app.bodegaapp.pe/reset-password?token=")

	reset := users.resets[token]
	assert.Equal(t, saleNow.Add(24*time.Hour), reset.ExpiresAt)

	next := "Otra$Clave77"
	require.NoError(t, svc.ResetPassword(ctx, token, next, next))
	assert.True(t, password.Compare(users.users[1].Password, next))

	// tokens are single use
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, next, next), ErrInvalidResetToken)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "no-existe", next, next), ErrInvalidResetToken)
}

func TestResetPasswordExpired(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	users.resets["viejo"] = domain.PasswordReset{Token: "viejo", UserID: 1, ExpiresAt: saleNow.Add(-time.Minute)}

	next := "Otra$Clave77"
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "viejo", next, next), ErrInvalidResetToken)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "rosa.q", UsernameFromEmail(" Rosa.Q@Bodega.pe "))
	assert.Equal(t, "sinarroba", UsernameFromEmail("sinarroba"))
}
