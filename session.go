package rentalweb

import (
	"context"
	"sync"
	"time"
)

// Status is the session's resolution state
type Status string

const (
	// StatusUnresolved is the state before the first identity resolution
	StatusUnresolved Status = "unresolved"
	// StatusResolving means a resolution is in flight
	StatusResolving Status = "resolving"
	// StatusAuthenticated means an identity has been resolved
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated means there is no usable token
	StatusUnauthenticated Status = "unauthenticated"
)

// Session is an immutable snapshot of authentication state. Identity is
// present if and only if Status is StatusAuthenticated; a token alone does
// not imply authentication.
type Session struct {
	Token    string
	Identity *Identity
	Status   Status
}

// Authenticated reports whether the session carries a resolved identity
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the session role, when authenticated
func (s Session) Role() (Role, bool) {
	if !s.Authenticated() {
		return "", false
	}
	return s.Identity.Role, true
}

// LoginResult is what the login form routes on
type LoginResult struct {
	Success bool
	Role    Role
}

// Store is the single source of truth for authentication state. It is an
// explicitly constructed object with a defined lifecycle, never a package
// singleton; consumers receive it by injection or through the request context.
type Store struct {
	mu           sync.Mutex
	api          AuthAPI
	resolver     *Resolver
	storage      TokenStorage
	logger       Logger
	activitySink ActivitySink
	syncResolve  bool

	token    string
	identity *Identity
	status   Status
	gen      uint64
}

// NewStore creates a session store, hydrating the token from any previously
// persisted value. The session stays StatusUnresolved until RefreshIdentity
// runs, so guards can render a neutral state instead of redirect-flickering.
func NewStore(api AuthAPI, resolver *Resolver, storage TokenStorage) *Store {
	s := &Store{
		api:          api,
		resolver:     resolver,
		storage:      storage,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		status:       StatusUnresolved,
	}

	if token, ok := storage.Get(); ok && token != "" {
		s.token = token
	}

	return s
}

// WithLogger sets the store logger.
func (s *Store) WithLogger(logger Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting session events.
func (s *Store) WithActivitySink(sink ActivitySink) *Store {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithSynchronousResolve makes the authoritative profile fetch run inline
// instead of in the background. Request-scoped stores use this so every
// session mutation lands before the response is written.
func (s *Store) WithSynchronousResolve() *Store {
	s.syncResolve = true
	return s
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Login exchanges credentials for a token, persists it, resolves an identity
// and returns the role the caller routes with. Any failure clears partial
// state and leaves the session unauthenticated.
func (s *Store) Login(ctx context.Context, email, password string) (LoginResult, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Error("login rejected for %s: %v", email, err)
		s.mu.Lock()
		s.clearLocked()
		s.mu.Unlock()
		s.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return LoginResult{}, err
	}

	role, err := s.adoptToken(ctx, token)
	if err != nil {
		s.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return LoginResult{}, err
	}

	s.emit(ctx, ActivityEventLoginSuccess, s.currentUserID(), map[string]any{
		"email": email,
	})

	return LoginResult{Success: true, Role: role}, nil
}

// CompleteOAuth folds a token handed back by the provider redirect into the
// session. The redirect-supplied role must agree with the token's role claim;
// a disagreement fails closed.
func (s *Store) CompleteOAuth(ctx context.Context, token string, role Role) error {
	if token == "" {
		s.emit(ctx, ActivityEventOAuthFailure, "", nil)
		return ErrMissingCallbackToken
	}

	decoded, err := s.adoptToken(ctx, token)
	if err != nil {
		s.emit(ctx, ActivityEventOAuthFailure, "", map[string]any{"error": err.Error()})
		return err
	}

	if role != "" && role != decoded {
		s.logger.Error("oauth redirect role %s disagrees with token role %s", role, decoded)
		s.mu.Lock()
		s.forceLogoutLocked()
		s.mu.Unlock()
		s.emit(ctx, ActivityEventRoleMismatch, "", map[string]any{
			"redirect": role,
			"token":    decoded,
		})
		return ErrRoleMismatch
	}

	s.emit(ctx, ActivityEventOAuthCompleted, s.currentUserID(), nil)
	return nil
}

// Register submits a registration. It never authenticates: success only
// means the account exists and the caller should navigate to login.
func (s *Store) Register(ctx context.Context, reg Registration) error {
	if err := s.api.Register(ctx, reg); err != nil {
		s.logger.Error("registration rejected for %s: %v", reg.Email, err)
		return err
	}

	s.emit(ctx, ActivityEventRegistered, "", map[string]any{"email": reg.Email})
	return nil
}

// Logout clears the token and identity synchronously and unconditionally.
// Idempotent; no network failure can block it.
func (s *Store) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.status == StatusAuthenticated
	userID := ""
	if s.identity != nil {
		userID = s.identity.ID
	}
	s.clearLocked()
	s.mu.Unlock()

	if wasAuthenticated {
		s.emit(context.Background(), ActivityEventLogout, userID, nil)
	}
}

// RefreshIdentity re-resolves the identity from the current token, invoked
// at startup and after any external token mutation. Without a token it
// settles on StatusUnauthenticated without a network call.
func (s *Store) RefreshIdentity(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.clearLocked()
		s.mu.Unlock()
		return
	}
	s.status = StatusResolving
	s.mu.Unlock()

	if _, err := s.adoptToken(ctx, token); err != nil {
		s.logger.Error("refresh could not resolve identity: %v", err)
	}
}

// UpdateIdentity merges a partial identity update into the session after a
// profile edit. The token is untouched and no re-resolution is triggered.
func (s *Store) UpdateIdentity(patch IdentityPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return
	}

	merged := s.identity.merge(patch)
	s.identity = &merged
}

// adoptToken persists the token, installs the optimistic decoded identity
// and kicks the authoritative resolution. Returns the role to route with.
func (s *Store) adoptToken(ctx context.Context, token string) (Role, error) {
	optimistic, err := s.resolver.DecodeFromToken(token)
	if err != nil {
		// decode failures are fatal: a dead token must not be retried forever
		s.mu.Lock()
		s.forceLogoutLocked()
		s.mu.Unlock()
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.storage.Set(token)
	s.identity = optimistic
	s.status = StatusAuthenticated
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if s.syncResolve {
		s.resolveAuthoritative(ctx, token, gen)
	} else {
		go s.resolveAuthoritative(ctx, token, gen)
	}

	return optimistic.Role, nil
}

// resolveAuthoritative refines the optimistic identity with the profile
// endpoint's record. The result applies only while its generation is still
// current: a logout or re-login in the meantime discards it.
func (s *Store) resolveAuthoritative(ctx context.Context, token string, gen uint64) {
	authoritative, fetchErr := s.resolver.FetchAuthoritative(ctx, token)

	s.mu.Lock()
	if s.gen != gen || s.token != token {
		s.mu.Unlock()
		s.emit(ctx, ActivityEventStaleDiscarded, "", map[string]any{"generation": gen})
		return
	}

	if fetchErr != nil {
		if IsAuthFailure(fetchErr) {
			// the backend refused the bearer token, session is dead
			s.forceLogoutLocked()
			s.mu.Unlock()
			s.emit(ctx, ActivityEventForcedLogout, "", map[string]any{"error": fetchErr.Error()})
			return
		}
		// transient failure: the optimistic identity stays in effect and
		// the fetch retries on the next refresh
		s.mu.Unlock()
		s.logger.Info("profile fetch unavailable, keeping optimistic identity: %v", fetchErr)
		return
	}

	if err := s.resolver.Reconcile(s.identity, authoritative); err != nil {
		s.forceLogoutLocked()
		s.mu.Unlock()
		s.emit(ctx, ActivityEventRoleMismatch, authoritative.ID, map[string]any{"error": err.Error()})
		return
	}

	s.identity = authoritative
	userID := authoritative.ID
	s.mu.Unlock()

	s.emit(ctx, ActivityEventProfileRefreshed, userID, nil)
}

func (s *Store) clearLocked() {
	s.token = ""
	s.identity = nil
	s.status = StatusUnauthenticated
	s.storage.Clear()
	s.gen++
}

func (s *Store) forceLogoutLocked() {
	s.clearLocked()
}

func (s *Store) snapshotLocked() Session {
	snapshot := Session{
		Token:  s.token,
		Status: s.status,
	}

	if s.identity != nil {
		identity := *s.identity
		snapshot.Identity = &identity
	}

	return snapshot
}

func (s *Store) currentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.ID
}

func (s *Store) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Error("activity sink record error: %v", err)
	}
}
