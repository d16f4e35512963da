package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalweb "github.com/skyfleet/rentals-web"
	"github.com/skyfleet/rentals-web/client"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(client.Config{BaseURL: srv.URL})
}

func TestClient_BearerTokenFromSource(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]client.Drone{})
	})
	c.WithTokenSource(func() (string, bool) { return "tok-123", true })

	_, err := c.Drones.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_ExplicitTokenWinsOverSource(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(client.Profile{Email: "pat@example.com", Role: "USER"})
	})
	c.WithTokenSource(func() (string, bool) { return "ambient", true })

	_, err := c.Users.FetchProfile(context.Background(), "explicit")
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", gotAuth)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pat@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-abc"})
	})

	token, err := c.Auth.Login(context.Background(), "pat@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
}

func TestLogin_RejectionMapsToCredentialError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
	})

	_, err := c.Auth.Login(context.Background(), "pat@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, rentalweb.IsCredentialError(err))
}

func TestRegister_ValidationCarriesFieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "validation failed",
			"errors":  map[string]string{"email": "already registered"},
		})
	})

	err := c.Auth.Register(context.Background(), rentalweb.Registration{
		Name:  "Pat",
		Email: "pat@example.com",
	})
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, "REGISTRATION_REJECTED", richErr.TextCode)

	fields := rentalweb.FieldErrors(err)
	require.NotNil(t, fields)
	assert.Equal(t, "already registered", fields["email"])
}

func TestFetchProfile_UnauthorizedMapsToProfileError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Users.FetchProfile(context.Background(), "stale-token")
	require.Error(t, err)
	assert.True(t, rentalweb.IsAuthFailure(err))

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, "PROFILE_UNAUTHORIZED", richErr.TextCode)
}

func TestFetchProfile_OutageIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Users.FetchProfile(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, rentalweb.IsTransient(err))

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, "PROFILE_UNAVAILABLE", richErr.TextCode)
}

func TestFetchProfile_MapsBackendShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/profile", r.URL.Path)
		json.NewEncoder(w).Encode(client.Profile{
			ID:      17,
			Name:    "Pat Doe",
			Email:   "pat@example.com",
			Phone:   "+14155552671",
			Address: "1 Hangar Way",
			Role:    "USER",
		})
	})

	identity, err := c.Users.FetchProfile(context.Background(), "tok")
	require.NoError(t, err)
	// the identity stays keyed on the user id, never the email, so callers
	// like the per-customer booking lookup keep working after resolution
	assert.Equal(t, "17", identity.ID)
	assert.Equal(t, "Pat Doe", identity.DisplayName)
	assert.Equal(t, "pat@example.com", identity.Email)
	assert.Equal(t, rentalweb.RoleUser, identity.Role)
	assert.True(t, identity.Authoritative)
}

func TestAdmin_ForbiddenMapsToAuthz(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "admin only"})
	})

	_, err := c.Admin.Dashboard(context.Background())
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, errors.CategoryAuthz, richErr.Category)
}

func TestVerifyPayment_PostsProof(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/verifyPayment", r.URL.Path)

		var proof client.PaymentVerification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&proof))
		assert.Equal(t, int64(42), proof.BookingID)
		assert.Equal(t, "sig", proof.RazorpaySignature)

		json.NewEncoder(w).Encode(client.Payment{ID: 7, BookingID: 42, PaymentStatus: "SUCCESS"})
	})

	payment, err := c.Payments.Verify(context.Background(), client.PaymentVerification{
		BookingID:         42,
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order_1",
		RazorpaySignature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), payment.ID)
	assert.Equal(t, "SUCCESS", payment.PaymentStatus)
}

func TestBackendUnreachable_IsOperationError(t *testing.T) {
	c := client.New(client.Config{BaseURL: "http://127.0.0.1:1"})

	_, err := c.Drones.List(context.Background())
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, errors.CategoryOperation, richErr.Category)
	assert.Equal(t, "BACKEND_UNREACHABLE", richErr.TextCode)
}
