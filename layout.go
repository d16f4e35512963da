package rentalweb

// LayoutKind identifies which chrome wraps the current view
type LayoutKind string

const (
	// LayoutAdmin is the admin console chrome
	LayoutAdmin LayoutKind = "admin"
	// LayoutUser is the authenticated customer chrome
	LayoutUser LayoutKind = "user"
	// LayoutPublic is the marketing chrome for everyone else
	LayoutPublic LayoutKind = "public"
)

// SelectLayout is a pure dispatch over the closed (status, role) enumeration.
// Admin chrome requires an authenticated ADMIN, user chrome an authenticated
// USER; everything else, including a session still resolving, gets the
// public chrome. No side effects, re-evaluated on every render.
func SelectLayout(status Status, role Role) LayoutKind {
	if status != StatusAuthenticated {
		return LayoutPublic
	}

	switch role {
	case RoleAdmin:
		return LayoutAdmin
	case RoleUser:
		return LayoutUser
	default:
		return LayoutPublic
	}
}

// LayoutForSession selects the chrome for a session snapshot.
func LayoutForSession(sess Session) LayoutKind {
	role, _ := sess.Role()
	return SelectLayout(sess.Status, role)
}
