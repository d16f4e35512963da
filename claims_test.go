package rentalweb_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalweb "github.com/skyfleet/rentals-web"
)

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestClaimsDecoder_ValidToken(t *testing.T) {
	decoder := rentalweb.NewClaimsDecoder()

	token := makeToken(t, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   "USER",
	})

	claims, err := decoder.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "pat@example.com", claims.Subject())
	assert.Equal(t, "17", claims.UserID())
	assert.Equal(t, rentalweb.RoleUser, claims.Role())
	assert.True(t, claims.HasRole(rentalweb.RoleUser))
	assert.False(t, claims.HasRole(rentalweb.RoleAdmin))
	assert.False(t, claims.Expires().IsZero())
}

func TestClaimsDecoder_FailsClosed(t *testing.T) {
	decoder := rentalweb.NewClaimsDecoder()

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing subject", jwt.MapClaims{"userId": "17", "role": "USER"}},
		{"missing userId", jwt.MapClaims{"sub": "pat@example.com", "role": "USER"}},
		{"missing role", jwt.MapClaims{"sub": "pat@example.com", "userId": "17"}},
		{"unknown role", jwt.MapClaims{"sub": "pat@example.com", "userId": "17", "role": "SUPERADMIN"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token := makeToken(t, tc.claims)
			_, err := decoder.Validate(token)
			require.Error(t, err)
			assert.True(t, rentalweb.IsDecodeError(err))
		})
	}
}

func TestClaimsDecoder_MissingExpiration(t *testing.T) {
	decoder := rentalweb.NewClaimsDecoder()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   "USER",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = decoder.Validate(signed)
	require.Error(t, err)
	assert.True(t, rentalweb.IsDecodeError(err))
}

func TestClaimsDecoder_ExpiredToken(t *testing.T) {
	decoder := rentalweb.NewClaimsDecoder()

	token := makeToken(t, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   "USER",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	_, err := decoder.Validate(token)
	require.Error(t, err)
	assert.True(t, rentalweb.IsDecodeError(err))
	assert.True(t, rentalweb.IsAuthFailure(err))
}

func TestClaimsDecoder_Garbage(t *testing.T) {
	decoder := rentalweb.NewClaimsDecoder()

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := decoder.Validate(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, rentalweb.IsDecodeError(err), "input %q", raw)
	}
}

func TestVerifyingDecoder_RejectsBadSignature(t *testing.T) {
	decoder := rentalweb.NewVerifyingDecoder(func(token *jwt.Token) (any, error) {
		return []byte("a-different-secret"), nil
	})

	token := makeToken(t, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   "USER",
	})

	_, err := decoder.Validate(token)
	require.Error(t, err)
	assert.True(t, rentalweb.IsDecodeError(err))
}

func TestVerifyingDecoder_AcceptsGoodSignature(t *testing.T) {
	decoder := rentalweb.NewVerifyingDecoder(func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})

	token := makeToken(t, jwt.MapClaims{
		"sub":    "pat@example.com",
		"userId": "17",
		"role":   "ADMIN",
	})

	claims, err := decoder.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, rentalweb.RoleAdmin, claims.Role())
}

func TestTokenValidatorFunc_NilFailsClosed(t *testing.T) {
	var fn rentalweb.TokenValidatorFunc
	_, err := fn.Validate("anything")
	require.Error(t, err)
}
