package client

import (
	"context"
	"fmt"
	"net/http"
)

// UndertakingsService covers the deposit agreement a renter signs before a
// booking is released.
type UndertakingsService struct {
	client *Client
}

// Get loads one undertaking.
func (s *UndertakingsService) Get(ctx context.Context, id int64) (*Undertaking, error) {
	var out Undertaking
	path := fmt.Sprintf("/api/undertakings/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Accept marks the agreement as signed by the renter. Accepting an already
// accepted undertaking is a no-op on the backend.
func (s *UndertakingsService) Accept(ctx context.Context, id int64) (*Undertaking, error) {
	var out Undertaking
	path := fmt.Sprintf("/api/undertakings/%d/accept", id)
	if err := s.client.do(ctx, http.MethodPut, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
