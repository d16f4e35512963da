package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DronesService covers the catalog endpoints. Listing and search are
// public; mutations require an ADMIN token.
type DronesService struct {
	client *Client
}

// List returns the full catalog.
func (s *DronesService) List(ctx context.Context) ([]Drone, error) {
	var out []Drone
	if err := s.client.do(ctx, http.MethodGet, "/api/drones", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads a single drone by id.
func (s *DronesService) Get(ctx context.Context, id int64) (*Drone, error) {
	var out Drone
	path := fmt.Sprintf("/api/drones/getById/%d", id)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByStatus filters the catalog by availability state.
func (s *DronesService) ListByStatus(ctx context.Context, status string) ([]Drone, error) {
	var out []Drone
	path := "/api/drones/status/" + url.PathEscape(status)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchOptions narrow a catalog search. Zero values are skipped.
type SearchOptions struct {
	Query    string
	Location string
	MaxPrice float64
}

// Search queries the catalog with the given filters.
func (s *DronesService) Search(ctx context.Context, opts SearchOptions) ([]Drone, error) {
	values := url.Values{}
	if opts.Query != "" {
		values.Set("q", opts.Query)
	}
	if opts.Location != "" {
		values.Set("location", opts.Location)
	}
	if opts.MaxPrice > 0 {
		values.Set("maxPrice", fmt.Sprintf("%g", opts.MaxPrice))
	}

	path := "/api/drones/search"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []Drone
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ratings returns the reviews left for a drone.
func (s *DronesService) Ratings(ctx context.Context, droneID int64) ([]Rating, error) {
	var out []Rating
	path := fmt.Sprintf("/api/drones/ratings/%d", droneID)
	if err := s.client.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add registers a new drone in the catalog. Admin only.
func (s *DronesService) Add(ctx context.Context, drone Drone) (*Drone, error) {
	var out Drone
	if err := s.client.do(ctx, http.MethodPost, "/api/drones/add/drone", "", drone, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a drone's details. Admin only.
func (s *DronesService) Update(ctx context.Context, id int64, drone Drone) (*Drone, error) {
	var out Drone
	path := fmt.Sprintf("/api/drones/%d", id)
	if err := s.client.do(ctx, http.MethodPut, path, "", drone, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a drone from the catalog. Admin only.
func (s *DronesService) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/drones/%d", id)
	return s.client.do(ctx, http.MethodDelete, path, "", nil, nil)
}
