package rentalweb

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Registration is the payload submitted to the backend registration endpoint
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// AuthAPI is the slice of the backend the session store talks to. Implemented
// by client.AuthService; kept narrow so tests can fake credential exchange.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// Register creates an account. It never returns a token.
	Register(ctx context.Context, reg Registration) error
}

// ProfileFetcher retrieves the authoritative user record for a bearer token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*Identity, error)
}

// TokenStorage is the single durable client artifact of session state: one
// key holding the bearer token. Only the session store writes or clears it.
type TokenStorage interface {
	Get() (string, bool)
	Set(token string)
	Clear()
}

// MemoryTokenStorage keeps the token in memory, for headless clients and tests.
type MemoryTokenStorage struct {
	token string
	set   bool
}

func (m *MemoryTokenStorage) Get() (string, bool) {
	return m.token, m.set
}

func (m *MemoryTokenStorage) Set(token string) {
	m.token = token
	m.set = true
}

func (m *MemoryTokenStorage) Clear() {
	m.token = ""
	m.set = false
}

// DestinationStore remembers the path a user was trying to reach when the
// guard redirected them to login. Consumed exactly once.
type DestinationStore interface {
	Remember(path string)
	Consume() (string, bool)
}

// MemoryDestinationStore holds the pending destination in memory.
type MemoryDestinationStore struct {
	path string
	set  bool
}

func (m *MemoryDestinationStore) Remember(path string) {
	m.path = path
	m.set = true
}

func (m *MemoryDestinationStore) Consume() (string, bool) {
	if !m.set {
		return "", false
	}
	path := m.path
	m.path = ""
	m.set = false
	return path, true
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] WEB "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] WEB "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] WEB "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
