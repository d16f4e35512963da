package rentalweb

import (
	"context"
)

// Resolver produces an Identity from either a token decode or a profile
// fetch, and keeps the two sources consistent. Decoding never touches the
// network; fetching supersedes the decoded identity with the complete record.
type Resolver struct {
	validator TokenValidator
	profiles  ProfileFetcher
	logger    Logger
}

// NewResolver returns a resolver backed by the profile endpoint. The default
// validator is the unverified claims decoder.
func NewResolver(profiles ProfileFetcher) *Resolver {
	return &Resolver{
		validator: NewClaimsDecoder(),
		profiles:  profiles,
		logger:    defLogger{},
	}
}

// WithTokenValidator sets a custom validator, e.g. a JWKS-verifying decoder.
func (r *Resolver) WithTokenValidator(validator TokenValidator) *Resolver {
	if validator != nil {
		r.validator = validator
	}
	return r
}

// WithLogger sets the resolver logger.
func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// DecodeFromToken parses claims without a network call and builds the
// optimistic identity used for immediate routing decisions. Fails closed on
// any missing or malformed required claim.
func (r *Resolver) DecodeFromToken(token string) (*Identity, error) {
	claims, err := r.validator.Validate(token)
	if err != nil {
		r.logger.Error("resolver decode failed: %v", err)
		return nil, err
	}

	return IdentityFromClaims(claims), nil
}

// FetchAuthoritative calls the profile endpoint and returns the complete
// record, including fields absent from the token such as phone and address.
func (r *Resolver) FetchAuthoritative(ctx context.Context, token string) (*Identity, error) {
	identity, err := r.profiles.FetchProfile(ctx, token)
	if err != nil {
		r.logger.Error("resolver profile fetch failed: %v", err)
		return nil, err
	}

	if identity == nil {
		return nil, ErrProfileUnavailable
	}

	identity.Authoritative = true
	return identity, nil
}

// Reconcile validates an authoritative identity against the optimistic one.
// A role disagreement is fatal: the more permissive value is never trusted.
func (r *Resolver) Reconcile(optimistic, authoritative *Identity) error {
	if optimistic == nil || authoritative == nil {
		return nil
	}

	if optimistic.Role != authoritative.Role {
		r.logger.Error("resolver role mismatch: decoded %s, authoritative %s", optimistic.Role, authoritative.Role)
		return ErrRoleMismatch
	}

	return nil
}
