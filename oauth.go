package rentalweb

import (
	"context"
	"net/url"
	"sync"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// CallbackParams carries what the identity provider hands back through the
// redirect query string.
type CallbackParams struct {
	Token string
	Role  Role
}

// ParseCallback reads token and role from the redirect's query parameters.
func ParseCallback(query url.Values) CallbackParams {
	return CallbackParams{
		Token: query.Get("token"),
		Role:  Role(query.Get("role")),
	}
}

// CompletionOutcome tells the caller where to navigate after the callback.
type CompletionOutcome struct {
	Destination string
	Err         error
}

// Succeeded reports whether the callback authenticated the session
func (o CompletionOutcome) Succeeded() bool {
	return o.Err == nil
}

// OAuthCompleter folds a provider-issued token into a session. *Store
// satisfies it.
type OAuthCompleter interface {
	CompleteOAuth(ctx context.Context, token string, role Role) error
}

// maxHandledCallbacks caps the replay cache. Once full, the oldest entry is
// evicted, so a token that old stops being replay-protected.
const maxHandledCallbacks = 1024

// CompletionHandler consumes the provider redirect exactly once. A repeat of
// the same callback (re-render, duplicated navigation) is a no-op that
// returns the original outcome instead of double-submitting.
type CompletionHandler struct {
	mu           sync.Mutex
	completer    OAuthCompleter
	handled      map[uuid.UUID]CompletionOutcome
	handledOrder []uuid.UUID
	maxHandled   int
	adminLanding string
	userLanding  string
	loginPath    string
	logger       Logger
}

// NewCompletionHandler wires the handler to the session completer.
func NewCompletionHandler(completer OAuthCompleter) *CompletionHandler {
	return &CompletionHandler{
		completer:    completer,
		handled:      map[uuid.UUID]CompletionOutcome{},
		maxHandled:   maxHandledCallbacks,
		adminLanding: "/admin",
		userLanding:  "/profile",
		loginPath:    "/login",
		logger:       defLogger{},
	}
}

// WithLandings overrides the post-completion destinations.
func (h *CompletionHandler) WithLandings(admin, user string) *CompletionHandler {
	if admin != "" {
		h.adminLanding = admin
	}
	if user != "" {
		h.userLanding = user
	}
	return h
}

// WithReplayCapacity overrides how many completed callbacks stay replay
// protected.
func (h *CompletionHandler) WithReplayCapacity(n int) *CompletionHandler {
	if n > 0 {
		h.maxHandled = n
	}
	return h
}

// WithLogger sets the handler logger.
func (h *CompletionHandler) WithLogger(logger Logger) *CompletionHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Complete folds the callback into the session store and picks the landing
// view from the redirect-supplied role, since authoritative resolution is
// still in flight at this point.
func (h *CompletionHandler) Complete(ctx context.Context, params CallbackParams) CompletionOutcome {
	return h.CompleteWith(ctx, h.completer, params)
}

// CompleteWith behaves like Complete against a caller-supplied completer,
// for request-scoped sessions. Replay detection is shared across completers
// since the dedupe key derives from the token itself.
func (h *CompletionHandler) CompleteWith(ctx context.Context, completer OAuthCompleter, params CallbackParams) CompletionOutcome {
	if params.Token == "" {
		h.logger.Error("oauth callback without token")
		return CompletionOutcome{Destination: h.loginPath, Err: ErrMissingCallbackToken}
	}

	key, err := hashid.NewUUID(params.Token)
	if err == nil {
		h.mu.Lock()
		if outcome, seen := h.handled[key]; seen {
			h.mu.Unlock()
			h.logger.Debug("oauth callback replay ignored")
			return outcome
		}
		h.mu.Unlock()
	}

	outcome := h.complete(ctx, completer, params)

	if err == nil {
		h.mu.Lock()
		h.remember(key, outcome)
		h.mu.Unlock()
	}

	return outcome
}

// remember stores the outcome, evicting the oldest entry when the cache is
// full. Caller holds h.mu.
func (h *CompletionHandler) remember(key uuid.UUID, outcome CompletionOutcome) {
	if _, seen := h.handled[key]; !seen {
		for len(h.handledOrder) >= h.maxHandled {
			oldest := h.handledOrder[0]
			h.handledOrder = h.handledOrder[1:]
			delete(h.handled, oldest)
		}
		h.handledOrder = append(h.handledOrder, key)
	}
	h.handled[key] = outcome
}

func (h *CompletionHandler) complete(ctx context.Context, completer OAuthCompleter, params CallbackParams) CompletionOutcome {
	if err := completer.CompleteOAuth(ctx, params.Token, params.Role); err != nil {
		h.logger.Error("oauth completion failed: %v", err)
		return CompletionOutcome{Destination: h.loginPath, Err: err}
	}

	destination := h.userLanding
	if params.Role == RoleAdmin {
		destination = h.adminLanding
	}

	return CompletionOutcome{Destination: destination}
}
