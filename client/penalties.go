package client

import (
	"context"
	"fmt"
	"net/http"
)

// PenaltiesService covers damage and late-return charges.
type PenaltiesService struct {
	client *Client
}

// List returns every penalty visible to the caller.
func (s *PenaltiesService) List(ctx context.Context) ([]Penalty, error) {
	var out []Penalty
	if err := s.client.do(ctx, http.MethodGet, "/api/penalties", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one penalty.
func (s *PenaltiesService) Get(ctx context.Context, id int64) (*Penalty, error) {
	var out Penalty
	path := fmt.Sprintf("/api/penalties/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByBooking returns the penalties raised against a booking.
func (s *PenaltiesService) ListByBooking(ctx context.Context, bookingID int64) ([]Penalty, error) {
	var out []Penalty
	path := fmt.Sprintf("/api/penalties/booking/%d", bookingID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
