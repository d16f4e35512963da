package rentalweb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rentalweb "github.com/skyfleet/rentals-web"
)

func testRules() []rentalweb.RouteRule {
	return []rentalweb.RouteRule{
		{Prefix: "/admin", Roles: rentalweb.RoleSet{rentalweb.RoleAdmin}},
		{Prefix: "/admin/reports", Roles: rentalweb.RoleSet{rentalweb.RoleAdmin}},
		{Prefix: "/profile", Roles: rentalweb.RoleSet{rentalweb.RoleUser, rentalweb.RoleAdmin}},
		{Prefix: "/bookings", Roles: rentalweb.RoleSet{rentalweb.RoleUser, rentalweb.RoleAdmin}},
		{Prefix: "/drones", Roles: nil},
	}
}

func authedSession(role rentalweb.Role) rentalweb.Session {
	return rentalweb.Session{
		Token:    "tok",
		Status:   rentalweb.StatusAuthenticated,
		Identity: &rentalweb.Identity{ID: "17", Role: role},
	}
}

func TestGuard_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		sess   rentalweb.Session
		action rentalweb.GuardAction
		target string
	}{
		{
			name:   "unmatched path is public",
			path:   "/about",
			sess:   rentalweb.Session{Status: rentalweb.StatusUnauthenticated},
			action: rentalweb.ActionAllow,
		},
		{
			name:   "explicitly public rule",
			path:   "/drones/42",
			sess:   rentalweb.Session{Status: rentalweb.StatusUnauthenticated},
			action: rentalweb.ActionAllow,
		},
		{
			name:   "unresolved session loads instead of redirecting",
			path:   "/profile",
			sess:   rentalweb.Session{Status: rentalweb.StatusUnresolved},
			action: rentalweb.ActionLoading,
		},
		{
			name:   "resolving session loads instead of redirecting",
			path:   "/profile",
			sess:   rentalweb.Session{Status: rentalweb.StatusResolving},
			action: rentalweb.ActionLoading,
		},
		{
			name:   "anonymous visitor goes to login",
			path:   "/bookings",
			sess:   rentalweb.Session{Status: rentalweb.StatusUnauthenticated},
			action: rentalweb.ActionRedirectLogin,
			target: "/login",
		},
		{
			name:   "user reaches a user route",
			path:   "/profile",
			sess:   authedSession(rentalweb.RoleUser),
			action: rentalweb.ActionAllow,
		},
		{
			name:   "admin reaches an admin route",
			path:   "/admin",
			sess:   authedSession(rentalweb.RoleAdmin),
			action: rentalweb.ActionAllow,
		},
		{
			name:   "user denied on an admin route",
			path:   "/admin",
			sess:   authedSession(rentalweb.RoleUser),
			action: rentalweb.ActionRedirectDenied,
			target: "/not-authorized",
		},
		{
			name:   "admin allowed on a shared route",
			path:   "/bookings/9",
			sess:   authedSession(rentalweb.RoleAdmin),
			action: rentalweb.ActionAllow,
		},
		{
			name: "token without identity is not authenticated",
			path: "/profile",
			sess: rentalweb.Session{
				Token:  "tok",
				Status: rentalweb.StatusAuthenticated,
			},
			action: rentalweb.ActionRedirectDenied,
			target: "/not-authorized",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guard := rentalweb.NewGuard(testRules(), &rentalweb.MemoryDestinationStore{})
			decision := guard.Evaluate(tc.path, tc.sess)
			assert.Equal(t, tc.action, decision.Action)
			assert.Equal(t, tc.target, decision.Target)
		})
	}
}

func TestGuard_LongestPrefixWins(t *testing.T) {
	rules := []rentalweb.RouteRule{
		{Prefix: "/admin", Roles: rentalweb.RoleSet{rentalweb.RoleAdmin}},
		{Prefix: "/admin/help", Roles: nil},
	}
	guard := rentalweb.NewGuard(rules, &rentalweb.MemoryDestinationStore{})

	anon := rentalweb.Session{Status: rentalweb.StatusUnauthenticated}

	decision := guard.Evaluate("/admin/help", anon)
	assert.Equal(t, rentalweb.ActionAllow, decision.Action,
		"the more specific public rule must win over the admin prefix")

	decision = guard.Evaluate("/admin/users", anon)
	assert.Equal(t, rentalweb.ActionRedirectLogin, decision.Action)
}

func TestGuard_PrefixMatchesOnSegmentBoundary(t *testing.T) {
	guard := rentalweb.NewGuard(testRules(), &rentalweb.MemoryDestinationStore{})
	anon := rentalweb.Session{Status: rentalweb.StatusUnauthenticated}

	// /administrator is not under /admin
	decision := guard.Evaluate("/administrator", anon)
	assert.Equal(t, rentalweb.ActionAllow, decision.Action)

	decision = guard.Evaluate("/admin/users/3", anon)
	assert.Equal(t, rentalweb.ActionRedirectLogin, decision.Action)
}

func TestGuard_RecordsDestinationOnLoginRedirect(t *testing.T) {
	destinations := &rentalweb.MemoryDestinationStore{}
	guard := rentalweb.NewGuard(testRules(), destinations)

	decision := guard.Evaluate("/bookings/4", rentalweb.Session{Status: rentalweb.StatusUnauthenticated})
	require.Equal(t, rentalweb.ActionRedirectLogin, decision.Action)

	path, ok := destinations.Consume()
	require.True(t, ok)
	assert.Equal(t, "/bookings/4", path)
}

func TestGuard_DeniedRedirectLeavesNoDestination(t *testing.T) {
	destinations := &rentalweb.MemoryDestinationStore{}
	guard := rentalweb.NewGuard(testRules(), destinations)

	decision := guard.Evaluate("/admin", authedSession(rentalweb.RoleUser))
	require.Equal(t, rentalweb.ActionRedirectDenied, decision.Action)

	_, ok := destinations.Consume()
	assert.False(t, ok, "a denied visitor resumes nowhere after re-login")
}

func TestGuard_EvaluateWithUsesSuppliedStore(t *testing.T) {
	guard := rentalweb.NewGuard(testRules(), &rentalweb.MemoryDestinationStore{})

	requestScoped := &rentalweb.MemoryDestinationStore{}
	decision := guard.EvaluateWith("/profile", rentalweb.Session{Status: rentalweb.StatusUnauthenticated}, requestScoped)
	require.Equal(t, rentalweb.ActionRedirectLogin, decision.Action)

	path, ok := requestScoped.Consume()
	require.True(t, ok)
	assert.Equal(t, "/profile", path)
}

func TestGuard_ResumeDestinationConsumesOnce(t *testing.T) {
	destinations := &rentalweb.MemoryDestinationStore{}
	guard := rentalweb.NewGuard(testRules(), destinations)

	guard.Evaluate("/bookings", rentalweb.Session{Status: rentalweb.StatusUnauthenticated})

	assert.Equal(t, "/bookings", guard.ResumeDestination("/profile"))
	assert.Equal(t, "/profile", guard.ResumeDestination("/profile"), "destination is single use")
}

func TestGuard_CustomRedirectTargets(t *testing.T) {
	guard := rentalweb.NewGuard(testRules(), &rentalweb.MemoryDestinationStore{}).
		WithLoginPath("/signin").
		WithDeniedPath("/403")

	assert.Equal(t, "/signin", guard.LoginPath())
	assert.Equal(t, "/403", guard.DeniedPath())

	decision := guard.Evaluate("/profile", rentalweb.Session{Status: rentalweb.StatusUnauthenticated})
	assert.Equal(t, "/signin", decision.Target)

	decision = guard.Evaluate("/admin", authedSession(rentalweb.RoleUser))
	assert.Equal(t, "/403", decision.Target)
}

func TestGuard_RuleLookup(t *testing.T) {
	guard := rentalweb.NewGuard(testRules(), &rentalweb.MemoryDestinationStore{})

	rule, found := guard.Rule("/admin/reports/monthly")
	require.True(t, found)
	assert.Equal(t, "/admin/reports", rule.Prefix)

	_, found = guard.Rule("/checkout")
	assert.False(t, found)
}
