package client

import (
	"context"
	"fmt"
	"net/http"
)

// PaymentsService covers checkout order creation and verification.
type PaymentsService struct {
	client *Client
}

type orderRequest struct {
	BookingID int64 `json:"bookingId"`
}

// CreateOrder opens a gateway order for a booking. The returned order id is
// what the checkout widget is launched with.
func (s *PaymentsService) CreateOrder(ctx context.Context, bookingID int64) (*CheckoutOrder, error) {
	var out CheckoutOrder
	if err := s.client.do(ctx, http.MethodPost, "/api/payments", "", orderRequest{BookingID: bookingID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify submits the signed checkout proof. The backend recomputes the
// signature; a mismatch comes back as a validation rejection.
func (s *PaymentsService) Verify(ctx context.Context, proof PaymentVerification) (*Payment, error) {
	var out Payment
	if err := s.client.do(ctx, http.MethodPost, "/api/payments/verifyPayment", "", proof, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get loads one payment record.
func (s *PaymentsService) Get(ctx context.Context, id int64) (*Payment, error) {
	var out Payment
	path := fmt.Sprintf("/api/payments/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
