package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// BookingsService covers the rental lifecycle endpoints for the signed-in
// user.
type BookingsService struct {
	client *Client
}

// Create places a new booking for the signed-in user.
func (s *BookingsService) Create(ctx context.Context, req BookingRequest) (*Booking, error) {
	var out Booking
	if err := s.client.do(ctx, http.MethodPost, "/api/bookings", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get loads one booking by id.
func (s *BookingsService) Get(ctx context.Context, id int64) (*Booking, error) {
	var out Booking
	path := fmt.Sprintf("/api/bookings/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByCustomer returns the bookings owned by a customer.
func (s *BookingsService) ListByCustomer(ctx context.Context, customerID int64) ([]Booking, error) {
	var out []Booking
	path := fmt.Sprintf("/api/bookings/byCustomerId/%d", customerID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStatus filters bookings by lifecycle state.
func (s *BookingsService) ListByStatus(ctx context.Context, status string) ([]Booking, error) {
	var out []Booking
	path := "/api/bookings/status/" + url.PathEscape(status)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel withdraws a booking before delivery.
func (s *BookingsService) Cancel(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/bookings/%d", id)
	return s.client.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// Payments returns the payments recorded against a booking.
func (s *BookingsService) Payments(ctx context.Context, bookingID int64) ([]Payment, error) {
	var out []Payment
	path := fmt.Sprintf("/api/bookings/%d/payments", bookingID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Undertakings returns the deposit agreements attached to a booking.
func (s *BookingsService) Undertakings(ctx context.Context, bookingID int64) ([]Undertaking, error) {
	var out []Undertaking
	path := fmt.Sprintf("/api/bookings/%d/undertakings", bookingID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
