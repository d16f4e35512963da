package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goliatone/go-errors"

	rentalweb "github.com/skyfleet/rentals-web"
)

// UsersService covers the profile endpoints. It satisfies
// rentalweb.ProfileFetcher so the identity resolver can confirm sessions
// against the backend.
type UsersService struct {
	client *Client
}

// FetchProfile loads the authoritative identity for the given token. Auth
// rejections and outages map to the session error vocabulary so the store
// can decide between forced logout and keeping the optimistic identity.
func (s *UsersService) FetchProfile(ctx context.Context, token string) (*rentalweb.Identity, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &out); err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			switch richErr.Category {
			case errors.CategoryAuth, errors.CategoryAuthz:
				return nil, rentalweb.ErrProfileUnauthorized
			}
		}
		unavailable := rentalweb.ErrProfileUnavailable.Clone()
		unavailable.Source = err
		return nil, unavailable
	}

	// the session identity is keyed on the numeric user id, the same value
	// the token's userId claim carries
	return &rentalweb.Identity{
		ID:            strconv.FormatInt(out.ID, 10),
		DisplayName:   out.Name,
		Email:         out.Email,
		Role:          out.Role,
		Phone:         out.Phone,
		Address:       out.Address,
		Authoritative: true,
	}, nil
}

type profileUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateProfile applies a partial edit and returns the backend's view of
// the profile after the write.
func (s *UsersService) UpdateProfile(ctx context.Context, patch rentalweb.IdentityPatch) (*Profile, error) {
	var out Profile
	body := profileUpdateRequest{
		Name:    patch.DisplayName,
		Email:   patch.Email,
		Phone:   patch.Phone,
		Address: patch.Address,
	}
	if err := s.client.do(ctx, http.MethodPut, "/api/users/profile", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the signed-in user's password. The current token
// stays valid; the backend does not revoke sessions on rotation.
func (s *UsersService) ChangePassword(ctx context.Context, current, next string) error {
	return s.client.do(ctx, http.MethodPut, "/api/users/password", "", passwordChangeRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}

// Me returns the raw profile record for the current token.
func (s *UsersService) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodGet, "/api/users/me", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get loads a user by ID. Admin only.
func (s *UsersService) Get(ctx context.Context, id int64) (*Profile, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user account. Admin only.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	return s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), "", nil, nil)
}

var _ rentalweb.ProfileFetcher = (*UsersService)(nil)
