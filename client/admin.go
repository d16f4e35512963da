package client

import (
	"context"
	"fmt"
	"net/http"
)

// AdminService covers the back-office endpoints. Every call requires an
// ADMIN token; the backend answers anything else with a 403.
type AdminService struct {
	client *Client
}

// DashboardStats is the back-office landing summary.
type DashboardStats struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalDrones    int     `json:"totalDrones"`
	TotalBookings  int     `json:"totalBookings"`
	ActiveBookings int     `json:"activeBookings"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// RevenueEntry is one row of the revenue report.
type RevenueEntry struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// Dashboard returns the aggregate counters for the admin landing page.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := s.client.do(ctx, http.MethodGet, "/api/admin/dashboard", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists every registered account.
func (s *AdminService) Users(ctx context.Context) ([]Profile, error) {
	var out []Profile
	if err := s.client.do(ctx, http.MethodGet, "/api/admin/users", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bookings lists every booking across all users.
func (s *AdminService) Bookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := s.client.do(ctx, http.MethodGet, "/api/admin/bookings", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

// SetBookingStatus moves a booking to the given lifecycle state.
func (s *AdminService) SetBookingStatus(ctx context.Context, id int64, status string) (*Booking, error) {
	var out Booking
	path := fmt.Sprintf("/api/admin/bookings/%d/status", id)
	if err := s.client.do(ctx, http.MethodPut, path, "", bookingStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Payments lists every payment record.
func (s *AdminService) Payments(ctx context.Context) ([]Payment, error) {
	var out []Payment
	if err := s.client.do(ctx, http.MethodGet, "/api/admin/payments", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Revenue returns the revenue report rows.
func (s *AdminService) Revenue(ctx context.Context) ([]RevenueEntry, error) {
	var out []RevenueEntry
	if err := s.client.do(ctx, http.MethodGet, "/api/admin/revenue", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
