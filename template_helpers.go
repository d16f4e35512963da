package rentalweb

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions for the view layer.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"ADMIN" %}
//	{{ layout_for(session) }}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"has_role":         hasRole,
		"layout_for":       layoutFor,

		// role constants for template access
		"roles": map[string]string{
			"user":  RoleUser,
			"admin": RoleAdmin,
		},
	}
}

// TemplateHelpersWithRouter returns the helpers with the current user pulled
// out of the request locals, where SessionMiddleware put it.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()

	if user := ctx.Locals(userKey); user != nil {
		helpers[TemplateUserKey] = user
	}

	if layout := ctx.Locals("layout"); layout != nil {
		helpers["layout"] = layout
	}

	return helpers
}

// GetTemplateUser extracts the current user from the request locals.
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

// isAuthenticated checks if the provided user object is a resolved identity
func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *Identity:
		return u != nil
	case Identity:
		return true
	case Session:
		return u.Authenticated()
	case AuthClaims:
		return u != nil && u.UserID() != ""
	case map[string]any:
		// JSON-converted user objects
		return len(u) > 0
	default:
		return false
	}
}

// hasRole checks if the user carries the given role
func hasRole(user any, role string) bool {
	switch u := user.(type) {
	case *Identity:
		if u == nil {
			return false
		}
		return u.Role == role
	case Identity:
		return u.Role == role
	case Session:
		r, ok := u.Role()
		return ok && r == role
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.HasRole(role)
	case map[string]any:
		if raw, exists := u["role"]; exists {
			if s, ok := raw.(string); ok {
				return s == role
			}
		}
		return false
	default:
		return false
	}
}

// layoutFor picks the layout shell for whatever session-shaped value the
// template hands over.
func layoutFor(value any) string {
	switch v := value.(type) {
	case Session:
		return string(LayoutForSession(v))
	case *Identity:
		if v == nil {
			return string(LayoutPublic)
		}
		return string(SelectLayout(StatusAuthenticated, v.Role))
	case Identity:
		return string(SelectLayout(StatusAuthenticated, v.Role))
	default:
		return string(LayoutPublic)
	}
}
