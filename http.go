package rentalweb

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

const (
	// DefaultTokenCookie is where the session token lives between requests.
	DefaultTokenCookie = "rentals_token"
	// DefaultDestinationCookie holds the pending destination captured when a
	// guard turns an unauthenticated request away.
	DefaultDestinationCookie = "rentals_dest"
)

// WebAuthenticator glues the session store, guard, and layout selector to
// HTTP traffic. Each request gets its own store hydrated from the token
// cookie, resolved synchronously, then snapshotted into the request context.
type WebAuthenticator struct {
	api              AuthAPI
	resolver         *Resolver
	guard            *Guard
	cookieDuration   time.Duration
	tokenCookie      string
	destCookie       string
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

// NewWebAuthenticator wires the HTTP session layer.
func NewWebAuthenticator(api AuthAPI, resolver *Resolver, guard *Guard) *WebAuthenticator {
	a := &WebAuthenticator{
		api:            api,
		resolver:       resolver,
		guard:          guard,
		cookieDuration: 24 * time.Hour,
		tokenCookie:    DefaultTokenCookie,
		destCookie:     DefaultDestinationCookie,
		Logger:         defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a
}

// WithCookieDuration overrides how long the token cookie lives.
func (a *WebAuthenticator) WithCookieDuration(d time.Duration) *WebAuthenticator {
	if d > 0 {
		a.cookieDuration = d
	}
	return a
}

// WithCookieNames overrides the token and destination cookie names.
func (a *WebAuthenticator) WithCookieNames(token, destination string) *WebAuthenticator {
	if token != "" {
		a.tokenCookie = token
	}
	if destination != "" {
		a.destCookie = destination
	}
	return a
}

// WithLogger overrides the default logger.
func (a *WebAuthenticator) WithLogger(logger Logger) *WebAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// SessionStore builds a request-scoped store hydrated from the token cookie.
// Resolution is synchronous so the rendered page never races the profile
// fetch; per request the cookie plays the part of durable session storage.
func (a *WebAuthenticator) SessionStore(c router.Context) *Store {
	storage := &cookieTokenStorage{ctx: c, name: a.tokenCookie, duration: a.cookieDuration}
	return NewStore(a.api, a.resolver, storage).
		WithLogger(a.Logger).
		WithSynchronousResolve()
}

// SessionMiddleware resolves the session once per request and stashes the
// snapshot in the request context and in locals for templates.
func (a *WebAuthenticator) SessionMiddleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			store := a.SessionStore(c)
			// a dead token clears the store itself; the request continues
			// unauthenticated rather than failing outright
			store.RefreshIdentity(c.Context())

			session := store.Current()
			c.SetContext(WithSessionContext(c.Context(), session))
			c.Locals("session", session)
			c.Locals("layout", string(LayoutForSession(session)))
			if session.Identity != nil {
				c.Locals("current_user", session.Identity)
			}

			return next(c)
		}
	}
}

// GuardMiddleware enforces the route rules. It expects SessionMiddleware to
// have run first.
func (a *WebAuthenticator) GuardMiddleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session, ok := SessionFromContext(c.Context())
			if !ok {
				session = Session{Status: StatusUnauthenticated}
			}

			destinations := &cookieDestinationStore{ctx: c, name: a.destCookie}
			decision := a.guard.EvaluateWith(c.Path(), session, destinations)

			switch decision.Action {
			case ActionAllow:
				return next(c)
			case ActionLoading:
				// synchronous resolution means this only happens when a
				// handler bypasses SessionMiddleware; treat as unauthenticated
				destinations.Remember(c.OriginalURL())
				return a.redirect(c, a.guard.LoginPath())
			case ActionRedirectLogin:
				return a.redirect(c, decision.Target)
			case ActionRedirectDenied:
				return a.redirect(c, decision.Target)
			default:
				return a.ErrorHandler(c, errors.New("unhandled guard action", errors.CategoryInternal))
			}
		}
	}
}

// Login authenticates the credentials and sets the token cookie.
func (a *WebAuthenticator) Login(c router.Context, email, password string) (LoginResult, error) {
	store := a.SessionStore(c)
	result, err := store.Login(c.Context(), email, password)
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return result, err
	}
	return result, nil
}

// CompleteOAuth finishes a provider redirect and sets the token cookie.
func (a *WebAuthenticator) CompleteOAuth(c router.Context, token string, redirectRole string) error {
	store := a.SessionStore(c)
	return store.CompleteOAuth(c.Context(), token, redirectRole)
}

// Register submits a registration. It never touches the session.
func (a *WebAuthenticator) Register(c router.Context, reg Registration) error {
	store := a.SessionStore(c)
	return store.Register(c.Context(), reg)
}

// Logout clears the token cookie.
func (a *WebAuthenticator) Logout(c router.Context) {
	store := a.SessionStore(c)
	store.Logout()
}

// GetRedirect consumes the pending destination, falling back to def.
func (a *WebAuthenticator) GetRedirect(c router.Context, def string) string {
	destinations := &cookieDestinationStore{ctx: c, name: a.destCookie}
	if target, ok := destinations.Consume(); ok {
		return target
	}
	return def
}

// SetRedirect remembers the current URL as the pending destination.
func (a *WebAuthenticator) SetRedirect(c router.Context) {
	destinations := &cookieDestinationStore{ctx: c, name: a.destCookie}
	destinations.Remember(c.OriginalURL())
}

func (a *WebAuthenticator) redirect(c router.Context, target string) error {
	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(target, statusCode)
}

func (a *WebAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"authentication error, redirecting to login: %s (%s) path=%s",
		richErr.Message, richErr.TextCode, c.OriginalURL(),
	)

	a.SetRedirect(c)
	return a.redirect(c, a.guard.LoginPath())
}

func (a *WebAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"error handler: %s category=%s details=%s",
		richErr.Message, richErr.Category, print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}

// cookieTokenStorage keeps the bearer token in an HTTP-only cookie, the
// request-scoped stand-in for durable session storage.
type cookieTokenStorage struct {
	ctx      router.Context
	name     string
	duration time.Duration

	cleared bool
	value   string
	set     bool
}

func (s *cookieTokenStorage) Get() (string, bool) {
	if s.cleared {
		return "", false
	}
	if s.set {
		return s.value, true
	}
	v := s.ctx.Cookies(s.name)
	if v == "" {
		return "", false
	}
	return v, true
}

func (s *cookieTokenStorage) Set(token string) {
	s.value = token
	s.set = true
	s.cleared = false
	s.ctx.Cookie(&router.Cookie{
		Name:     s.name,
		Value:    token,
		Expires:  time.Now().Add(s.duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (s *cookieTokenStorage) Clear() {
	s.cleared = true
	s.set = false
	s.value = ""
	expireCookie(s.ctx, s.name)
}

// cookieDestinationStore keeps the pending destination in a short-lived
// cookie so it survives the round trip through the login page.
type cookieDestinationStore struct {
	ctx  router.Context
	name string
}

func (d *cookieDestinationStore) Remember(path string) {
	d.ctx.Cookie(&router.Cookie{
		Name:     d.name,
		Value:    path,
		Expires:  time.Now().Add(5 * time.Minute),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (d *cookieDestinationStore) Consume() (string, bool) {
	v := d.ctx.Cookies(d.name)
	if v == "" {
		return "", false
	}
	expireCookie(d.ctx, d.name)
	return v, true
}

func expireCookie(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
