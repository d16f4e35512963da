package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	rentalweb "github.com/skyfleet/rentals-web"
)

func forgeToken(t *testing.T, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func runAdminGuard(ctx router.Context) error {
	guard := newAdminGuard(rentalweb.NewClaimsDecoder())
	next := func(c router.Context) error {
		return c.Next()
	}
	return guard(next)(ctx)
}

func TestAdminGuard_AdmitsAdminCookie(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.CookiesM[rentalweb.DefaultTokenCookie] = forgeToken(t, "ADMIN")
	ctx.On("Locals", "session_claims", mock.Anything).Return(nil)

	require.NoError(t, runAdminGuard(ctx))
	require.True(t, ctx.NextCalled)
}

func TestAdminGuard_MemberRoleIsNotAuthorized(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.CookiesM[rentalweb.DefaultTokenCookie] = forgeToken(t, "USER")
	ctx.On("Redirect", "/not-authorized", []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, runAdminGuard(ctx))
	require.False(t, ctx.NextCalled)
	ctx.AssertExpectations(t)
}

func TestAdminGuard_MissingCookieRedirectsToLogin(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.On("Redirect", "/login", []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, runAdminGuard(ctx))
	require.False(t, ctx.NextCalled)
	ctx.AssertExpectations(t)
}

func TestAdminGuard_DeadTokenRedirectsToLogin(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.CookiesM[rentalweb.DefaultTokenCookie] = "not-a-token"
	ctx.On("Redirect", "/login", []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, runAdminGuard(ctx))
	require.False(t, ctx.NextCalled)
	ctx.AssertExpectations(t)
}

func TestClaimsValidator_ExposesSessionClaims(t *testing.T) {
	v := claimsValidator{inner: rentalweb.NewClaimsDecoder()}

	claims, err := v.Validate(forgeToken(t, "ADMIN"))
	require.NoError(t, err)
	require.Equal(t, "17", claims.UserID())
	require.True(t, claims.HasRole("ADMIN"))
}
