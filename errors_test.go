package rentalweb_test

import (
	stderrors "errors"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	rentalweb "github.com/skyfleet/rentals-web"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		credential bool
		decode     bool
		authFail   bool
		transient  bool
	}{
		{
			name:       "rejected credentials",
			err:        rentalweb.ErrInvalidCredentials,
			credential: true,
			authFail:   true,
		},
		{
			name:     "undecodable token",
			err:      rentalweb.ErrUnableToDecodeToken,
			decode:   true,
			authFail: true,
		},
		{
			name:     "expired token",
			err:      rentalweb.ErrTokenExpired,
			decode:   true,
			authFail: true,
		},
		{
			name:     "profile unauthorized",
			err:      rentalweb.ErrProfileUnauthorized,
			authFail: true,
		},
		{
			name:      "profile unavailable",
			err:       rentalweb.ErrProfileUnavailable,
			transient: true,
		},
		{
			name:     "role mismatch",
			err:      rentalweb.ErrRoleMismatch,
			authFail: true,
		},
		{
			name:      "plain error defaults to transient",
			err:       stderrors.New("connection reset"),
			transient: true,
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.credential, rentalweb.IsCredentialError(tc.err), "IsCredentialError")
			assert.Equal(t, tc.decode, rentalweb.IsDecodeError(tc.err), "IsDecodeError")
			assert.Equal(t, tc.authFail, rentalweb.IsAuthFailure(tc.err), "IsAuthFailure")
			assert.Equal(t, tc.transient, rentalweb.IsTransient(tc.err), "IsTransient")
		})
	}
}

func TestFieldErrors(t *testing.T) {
	rejected := rentalweb.ErrRegistrationRejected.Clone()
	rejected.Metadata = map[string]any{
		"fields": map[string]string{
			"email": "already registered",
			"phone": "not a valid phone number",
		},
	}

	fields := rentalweb.FieldErrors(rejected)
	assert.Equal(t, "already registered", fields["email"])
	assert.Equal(t, "not a valid phone number", fields["phone"])
}

func TestFieldErrors_AnyValuedMetadata(t *testing.T) {
	rejected := rentalweb.ErrRegistrationRejected.Clone()
	rejected.Metadata = map[string]any{
		"fields": map[string]any{
			"email": "already registered",
			"count": 3,
		},
	}

	fields := rentalweb.FieldErrors(rejected)
	assert.Equal(t, "already registered", fields["email"])
	_, ok := fields["count"]
	assert.False(t, ok, "non-string field detail is dropped")
}

func TestFieldErrors_Absent(t *testing.T) {
	assert.Nil(t, rentalweb.FieldErrors(stderrors.New("boring")))
	assert.Nil(t, rentalweb.FieldErrors(rentalweb.ErrRegistrationRejected))

	withOther := errors.New("rejected", errors.CategoryValidation).
		WithMetadata(map[string]any{"hint": "try later"})
	assert.Nil(t, rentalweb.FieldErrors(withOther))
}
