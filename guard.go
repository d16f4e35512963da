package rentalweb

import (
	"sort"
	"strings"
)

// RouteRule pairs a navigable path prefix with the set of roles allowed to
// reach it. An empty role set means the route is public.
type RouteRule struct {
	Prefix string
	Roles  RoleSet
}

// Public reports whether the rule imposes no restriction
func (r RouteRule) Public() bool {
	return len(r.Roles) == 0
}

// GuardAction is the outcome of evaluating a navigation attempt
type GuardAction int

const (
	// ActionAllow renders the requested view
	ActionAllow GuardAction = iota
	// ActionLoading renders a neutral loading state; session hydration has
	// not settled yet and redirecting now would flicker
	ActionLoading
	// ActionRedirectLogin records the pending destination and sends the
	// visitor to the login view
	ActionRedirectLogin
	// ActionRedirectDenied sends an authenticated visitor without the
	// required role to the not-authorized view
	ActionRedirectDenied
)

// Decision is the guard's verdict for one navigation attempt
type Decision struct {
	Action GuardAction
	// Target is the redirect destination for the redirect actions
	Target string
}

// Guard evaluates route authorization rules against the current session.
// It holds no session state of its own: every navigation re-evaluates from
// scratch, so a mid-session role change takes effect on the next path change.
type Guard struct {
	rules        []RouteRule
	destinations DestinationStore
	loginPath    string
	deniedPath   string
	logger       Logger
}

// NewGuard builds a guard over a declarative rule set. Rules match by
// longest prefix; paths with no matching rule are public.
func NewGuard(rules []RouteRule, destinations DestinationStore) *Guard {
	sorted := make([]RouteRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return &Guard{
		rules:        sorted,
		destinations: destinations,
		loginPath:    "/login",
		deniedPath:   "/not-authorized",
		logger:       defLogger{},
	}
}

// WithLoginPath overrides the login redirect target.
func (g *Guard) WithLoginPath(path string) *Guard {
	if path != "" {
		g.loginPath = path
	}
	return g
}

// WithDeniedPath overrides the not-authorized redirect target. The target
// never discloses which roles the route requires.
func (g *Guard) WithDeniedPath(path string) *Guard {
	if path != "" {
		g.deniedPath = path
	}
	return g
}

// WithLogger sets the guard logger.
func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Rule returns the longest-prefix rule matching path, if any.
func (g *Guard) Rule(path string) (RouteRule, bool) {
	for _, rule := range g.rules {
		if matchPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return RouteRule{}, false
}

// Evaluate decides what happens to a navigation attempt at path for the
// given session snapshot.
func (g *Guard) Evaluate(path string, sess Session) Decision {
	return g.EvaluateWith(path, sess, g.destinations)
}

// EvaluateWith behaves like Evaluate but records the pending destination in
// the supplied store instead of the guard's own. HTTP handlers use this to
// bind destinations to the request's cookies.
func (g *Guard) EvaluateWith(path string, sess Session, destinations DestinationStore) Decision {
	rule, found := g.Rule(path)
	if !found || rule.Public() {
		return Decision{Action: ActionAllow}
	}

	switch sess.Status {
	case StatusUnresolved, StatusResolving:
		return Decision{Action: ActionLoading}

	case StatusAuthenticated:
		role, ok := sess.Role()
		if ok && rule.Roles.Contains(role) {
			return Decision{Action: ActionAllow}
		}
		g.logger.Info("guard denied navigation to %s for role %s", path, role)
		return Decision{Action: ActionRedirectDenied, Target: g.deniedPath}

	default:
		destinations.Remember(path)
		return Decision{Action: ActionRedirectLogin, Target: g.loginPath}
	}
}

// LoginPath returns the configured login redirect target.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// DeniedPath returns the configured not-authorized redirect target.
func (g *Guard) DeniedPath() string {
	return g.deniedPath
}

// ResumeDestination consumes the pending destination recorded by a login
// redirect, falling back to def when none is pending. The destination is
// discarded either way.
func (g *Guard) ResumeDestination(def string) string {
	if path, ok := g.destinations.Consume(); ok && path != "" {
		return path
	}
	return def
}

func matchPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return path == "/" || prefix == ""
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix) && len(path) > len(prefix) && path[len(prefix)] == '/'
}
