package client

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"

	rentalweb "github.com/skyfleet/rentals-web"
)

// AuthService drives the credential endpoints. It satisfies
// rentalweb.AuthAPI so a session store can plug it in directly.
type AuthService struct {
	client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. A backend rejection maps
// to the credential error so callers can distinguish it from outages.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	err := s.client.do(ctx, http.MethodPost, "/api/users/auth/login", "", loginRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			return "", rentalweb.ErrInvalidCredentials
		}
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response carried no token", errors.CategoryOperation).
			WithTextCode("BACKEND_ERROR")
	}
	return out.Token, nil
}

// Register creates a new USER account. Field-level rejections surface with
// validation metadata intact so forms can render them inline.
func (s *AuthService) Register(ctx context.Context, reg rentalweb.Registration) error {
	err := s.client.do(ctx, http.MethodPost, "/api/users/auth/register", "", reg, nil)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryValidation {
			wrapped := rentalweb.ErrRegistrationRejected.Clone()
			wrapped.Source = err
			wrapped.Metadata = richErr.Metadata
			return wrapped
		}
		return err
	}
	return nil
}

var _ rentalweb.AuthAPI = (*AuthService)(nil)
