package client

import (
	"context"
	"fmt"
	"net/http"
)

// RatingsService covers drone reviews.
type RatingsService struct {
	client *Client
}

// Create submits a review for a drone the caller rented.
func (s *RatingsService) Create(ctx context.Context, req RatingRequest) (*Rating, error) {
	var out Rating
	if err := s.client.do(ctx, http.MethodPost, "/api/ratings", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get loads one review.
func (s *RatingsService) Get(ctx context.Context, id int64) (*Rating, error) {
	var out Rating
	path := fmt.Sprintf("/api/ratings/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByBooking returns the reviews attached to a booking.
func (s *RatingsService) ListByBooking(ctx context.Context, bookingID int64) ([]Rating, error) {
	var out []Rating
	path := fmt.Sprintf("/api/ratings/booking/%d", bookingID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a review.
func (s *RatingsService) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/ratings/%d", id)
	return s.client.do(ctx, http.MethodDelete, path, "", nil, nil)
}
