package rentalweb

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// AuthClaims represents the structured claims the backend embeds in its tokens
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() Role
	HasRole(role Role) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenClaims is the concrete implementation of AuthClaims. The backend signs
// tokens with the subject set to the account email, plus custom role and
// userId claims.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"userId,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*TokenClaims)(nil)

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID claim
func (c *TokenClaims) UserID() string {
	return c.UID
}

// Role returns the role claim
func (c *TokenClaims) Role() Role {
	return Role(c.UserRole)
}

// HasRole checks if the token carries a specific role
func (c *TokenClaims) HasRole(role Role) bool {
	return Role(c.UserRole) == role
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// validate fails closed: every claim routing depends on must be present and
// well formed, otherwise the token is unusable regardless of its signature.
func (c *TokenClaims) validate(now time.Time) error {
	if c.RegisteredClaims.Subject == "" {
		return decodeFailure("missing subject claim")
	}

	if c.UID == "" {
		return decodeFailure("missing userId claim")
	}

	if _, ok := ParseRole(c.UserRole); !ok {
		return decodeFailure("missing or unknown role claim")
	}

	if c.RegisteredClaims.ExpiresAt == nil {
		return decodeFailure("missing expiration claim")
	}

	if !now.Before(c.RegisteredClaims.ExpiresAt.Time) {
		return ErrTokenExpired
	}

	return nil
}

// TokenValidator validates a raw token and extracts claims without tying
// callers to a specific verification scheme.
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*TokenClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (*TokenClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeToken
	}
	return f(tokenString)
}

// ClaimsDecoder extracts claims without verifying the signature. The client
// never holds the backend's signing key; the token is trusted only after the
// profile endpoint accepts it, so an unverified parse is the decode path
// used for immediate post-login routing.
type ClaimsDecoder struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewClaimsDecoder returns a decoder with a strict, fail-closed claim schema.
func NewClaimsDecoder() *ClaimsDecoder {
	return &ClaimsDecoder{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// Validate satisfies the TokenValidator interface.
func (d *ClaimsDecoder) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	if _, _, err := d.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(err, ErrUnableToDecodeToken.Category, ErrUnableToDecodeToken.Message).
			WithTextCode(ErrUnableToDecodeToken.TextCode)
	}

	if err := claims.validate(d.now()); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyingDecoder validates tokens against a key set, for deployments where
// the identity provider publishes its verification keys.
type VerifyingDecoder struct {
	keyFunc jwt.Keyfunc
	now     func() time.Time
}

// NewVerifyingDecoder wraps a jwt.Keyfunc (e.g. a JWKS keyfunc) into a
// TokenValidator with the same fail-closed claim schema as ClaimsDecoder.
func NewVerifyingDecoder(keyFunc jwt.Keyfunc) *VerifyingDecoder {
	return &VerifyingDecoder{
		keyFunc: keyFunc,
		now:     time.Now,
	}
}

// Validate satisfies the TokenValidator interface.
func (d *VerifyingDecoder) Validate(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, d.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrUnableToDecodeToken.Category, ErrUnableToDecodeToken.Message).
			WithTextCode(ErrUnableToDecodeToken.TextCode)
	}

	if !token.Valid {
		return nil, ErrUnableToDecodeToken
	}

	if err := claims.validate(d.now()); err != nil {
		return nil, err
	}

	return claims, nil
}
