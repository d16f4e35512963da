package tokenware_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/skyfleet/rentals-web/middleware/tokenware"
)

type fakeClaims struct {
	subject string
	userID  string
	role    string
}

func (c fakeClaims) Subject() string { return c.subject }
func (c fakeClaims) UserID() string  { return c.userID }
func (c fakeClaims) Role() string    { return c.role }
func (c fakeClaims) HasRole(role string) bool {
	return c.role == role
}

type fakeValidator struct {
	claims tokenware.AuthClaims
	err    error
	got    string
}

func (v *fakeValidator) Validate(tokenString string) (tokenware.AuthClaims, error) {
	v.got = tokenString
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func runMiddleware(cfg tokenware.Config, ctx router.Context) error {
	next := func(c router.Context) error {
		return c.Next()
	}
	return tokenware.New(cfg)(next)(ctx)
}

func TestTokenware_CookieExtraction(t *testing.T) {
	validator := &fakeValidator{claims: fakeClaims{subject: "pat@example.com", userID: "17", role: "USER"}}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "cookie:rentals_token",
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()
	ctx.CookiesM["rentals_token"] = "tok-abc"
	ctx.On("Locals", "session_claims", mock.Anything).Return(nil)

	if err := runMiddleware(cfg, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validator.got != "tok-abc" {
		t.Errorf("expected validator to receive cookie token, got %q", validator.got)
	}
	if !ctx.NextCalled {
		t.Errorf("expected Next to be invoked")
	}
}

func TestTokenware_HeaderExtraction(t *testing.T) {
	validator := &fakeValidator{claims: fakeClaims{subject: "pat@example.com", role: "USER"}}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "header:" + router.HeaderAuthorization,
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM[router.HeaderAuthorization] = "Bearer tok-xyz"
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer tok-xyz")
	ctx.On("Locals", "session_claims", mock.Anything).Return(nil)

	if err := runMiddleware(cfg, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validator.got != "tok-xyz" {
		t.Errorf("expected bearer token without scheme, got %q", validator.got)
	}
}

func TestTokenware_MissingToken(t *testing.T) {
	validator := &fakeValidator{claims: fakeClaims{}}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "cookie:rentals_token",
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()

	err := runMiddleware(cfg, ctx)
	if err == nil {
		t.Fatal("expected error for missing token, got nil")
	}
	if !strings.Contains(err.Error(), tokenware.ErrTokenMissingOrMalformed.Error()) {
		t.Errorf("expected missing token error, got: %v", err)
	}
	if validator.got != "" {
		t.Errorf("validator should not run without a token")
	}
}

func TestTokenware_ValidatorRejection(t *testing.T) {
	validator := &fakeValidator{err: errors.New("token is expired")}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "cookie:rentals_token",
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()
	ctx.CookiesM["rentals_token"] = "dead-token"

	err := runMiddleware(cfg, ctx)
	if err == nil {
		t.Fatal("expected error for rejected token, got nil")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected expiry error, got: %v", err)
	}
	if ctx.NextCalled {
		t.Errorf("Next must not run after a rejected token")
	}
}

func TestTokenware_RequiredRole(t *testing.T) {
	validator := &fakeValidator{claims: fakeClaims{subject: "pat@example.com", role: "USER"}}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "cookie:rentals_token",
		RequiredRole:   "ADMIN",
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()
	ctx.CookiesM["rentals_token"] = "tok"

	err := runMiddleware(cfg, ctx)
	if err == nil {
		t.Fatal("expected role rejection, got nil")
	}
	if !strings.Contains(err.Error(), "ADMIN") {
		t.Errorf("expected role error to name the missing role, got: %v", err)
	}
}

type pathMock struct {
	*router.MockContext
	pathOverride string
}

func (m *pathMock) Path() string {
	return m.pathOverride
}

func TestTokenware_FilterSkips(t *testing.T) {
	validator := &fakeValidator{claims: fakeClaims{}}

	cfg := tokenware.Config{
		TokenValidator: validator,
		TokenLookup:    "cookie:rentals_token",
		Filter: func(ctx router.Context) bool {
			return ctx.Path() == "/drones"
		},
	}

	ctx := &pathMock{MockContext: router.NewMockContext(), pathOverride: "/drones"}

	if err := runMiddleware(cfg, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validator.got != "" {
		t.Errorf("filtered request must not hit the validator")
	}
}

func TestGetExtractors_ParsesLookupList(t *testing.T) {
	extractors := tokenware.GetExtractors("cookie:rentals_token, header:Authorization, query:token")
	if len(extractors) != 3 {
		t.Fatalf("expected 3 extractors, got %d", len(extractors))
	}
}
