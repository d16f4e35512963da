// Package client is the typed REST surface of the rentals backend. It is a
// transport layer only: every call maps one backend endpoint, carries the
// bearer token, and fails within a bounded interval instead of hanging.
// Nothing here retries; the user re-triggers the action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for authenticated calls. Absence
// means the call goes out anonymous.
type TokenSource func() (string, bool)

// Logger mirrors the core logging interface so the client does not import it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds client construction options.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     Logger
}

// Client groups the per-resource services over one HTTP transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     Logger

	Auth         *AuthService
	Users        *UsersService
	Drones       *DronesService
	Bookings     *BookingsService
	Payments     *PaymentsService
	Penalties    *PenaltiesService
	Ratings      *RatingsService
	Undertakings *UndertakingsService
	Admin        *AdminService
}

// New builds a client for the backend at cfg.BaseURL.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		logger:     logger,
	}

	c.Auth = &AuthService{client: c}
	c.Users = &UsersService{client: c}
	c.Drones = &DronesService{client: c}
	c.Bookings = &BookingsService{client: c}
	c.Payments = &PaymentsService{client: c}
	c.Penalties = &PenaltiesService{client: c}
	c.Ratings = &RatingsService{client: c}
	c.Undertakings = &UndertakingsService{client: c}
	c.Admin = &AdminService{client: c}

	return c
}

// WithTokenSource swaps the bearer token source, e.g. to bind the client to
// a request-scoped session.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	c.tokens = tokens
	return c
}

// apiError is the backend's error body shape.
type apiError struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// do issues one JSON request. An explicit token overrides the token source;
// pass "" to fall back to it.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token == "" && c.tokens != nil {
		if t, ok := c.tokens(); ok {
			token = t
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request %s %s failed: %v", method, path, err)
		return errors.Wrap(err, errors.CategoryOperation, "rentals backend unreachable").
			WithTextCode("BACKEND_UNREACHABLE")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to decode response body")
	}

	return nil
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	payload := apiError{}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if len(raw) > 0 {
		json.Unmarshal(raw, &payload)
	}

	message := payload.Message
	if message == "" {
		message = fmt.Sprintf("backend returned %d", resp.StatusCode)
	}

	c.logger.Debug("backend rejected %s %s: %d %s", method, path, resp.StatusCode, message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(message, errors.CategoryAuth).
			WithTextCode("BACKEND_UNAUTHORIZED").
			WithCode(errors.CodeUnauthorized)

	case resp.StatusCode == http.StatusForbidden:
		return errors.New(message, errors.CategoryAuthz).
			WithCode(errors.CodeForbidden)

	case resp.StatusCode == http.StatusNotFound:
		return errors.New(message, errors.CategoryNotFound).
			WithCode(errors.CodeBadRequest)

	case resp.StatusCode == http.StatusConflict:
		return errors.New(message, errors.CategoryConflict).
			WithCode(errors.CodeConflict)

	case resp.StatusCode < 500:
		richErr := errors.New(message, errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
		if len(payload.Errors) > 0 {
			fields := make(map[string]any, len(payload.Errors))
			for k, v := range payload.Errors {
				fields[k] = v
			}
			richErr = richErr.WithMetadata(map[string]any{"fields": fields})
		}
		return richErr

	default:
		return errors.New(message, errors.CategoryOperation).
			WithTextCode("BACKEND_ERROR").
			WithCode(errors.CodeInternal)
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
