package rentalweb

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrNoToken is the error for operations that need a persisted token
var ErrNoToken = stderrors.New("no token in session")

// ErrUnableToFindSession is the error when the request carries no session
var ErrUnableToFindSession = stderrors.New("unable to find session")

// ErrInvalidCredentials is returned when the backend rejects a login.
// The session is left untouched; the caller surfaces the message locally.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrRegistrationRejected is returned when registration fails validation or
// conflicts with an existing account. Field-level detail, when the backend
// supplies it, travels in the error metadata under "fields".
var ErrRegistrationRejected = errors.New("registration rejected", errors.CategoryValidation).
	WithTextCode("REGISTRATION_REJECTED").
	WithCode(errors.CodeBadRequest)

// ErrUnableToDecodeToken is the DecodeError: a malformed or incomplete token.
// Always fatal for the session.
var ErrUnableToDecodeToken = errors.New("unable to decode token", errors.CategoryAuth).
	WithTextCode("TOKEN_DECODE").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired marks a token past its expiration claim. Fatal, forces logout.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrProfileUnauthorized is the ProfileFetchError variant for an expired or
// revoked token: the backend refused the bearer token, so the session dies.
var ErrProfileUnauthorized = errors.New("profile fetch unauthorized", errors.CategoryAuth).
	WithTextCode("PROFILE_UNAUTHORIZED").
	WithCode(errors.CodeUnauthorized)

// ErrProfileUnavailable is the transient ProfileFetchError variant: network
// failure or backend error. The optimistic identity stays in effect.
var ErrProfileUnavailable = errors.New("profile temporarily unavailable", errors.CategoryOperation).
	WithTextCode("PROFILE_UNAVAILABLE").
	WithCode(errors.CodeInternal)

// ErrRoleMismatch is raised when the decoded token role and the fetched
// profile role disagree. Fail closed: neither source is trusted.
var ErrRoleMismatch = errors.New("token role does not match profile role", errors.CategoryAuth).
	WithTextCode("ROLE_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrMissingCallbackToken is the OAuthCallbackError: the provider redirect
// arrived without a token query parameter.
var ErrMissingCallbackToken = errors.New("oauth callback is missing a token", errors.CategoryBadInput).
	WithTextCode("OAUTH_MISSING_TOKEN").
	WithCode(errors.CodeBadRequest)

// IsCredentialError reports whether a login failed because the backend
// rejected the credentials, as opposed to a transport failure.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == ErrInvalidCredentials.TextCode
	}
	return false
}

// IsDecodeError will check for unusable tokens (malformed or expired)
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.TextCode {
		case ErrUnableToDecodeToken.TextCode, ErrTokenExpired.TextCode:
			return true
		}
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// IsAuthFailure reports whether the error means the current token is dead
// and the session must be torn down.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryAuth
	}
	return false
}

// IsTransient reports whether the failure is retryable by the user and does
// not invalidate the session.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryOperation
	}
	// anything unclassified is treated as transient rather than tearing
	// the session down on an unknown failure
	return true
}

// FieldErrors extracts per-field messages from a registration error, when
// the backend supplied them.
func FieldErrors(err error) map[string]string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}

	raw, ok := richErr.Metadata["fields"]
	if !ok {
		return nil
	}

	switch fields := raw.(type) {
	case map[string]string:
		return fields
	case map[string]any:
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	}

	return nil
}

func decodeFailure(reason string) error {
	clone := ErrUnableToDecodeToken.Clone()
	if clone == nil {
		return ErrUnableToDecodeToken
	}
	clone.Message = "unable to decode token: " + reason
	clone.Source = ErrUnableToDecodeToken
	return clone
}
