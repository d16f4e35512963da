package rentalweb

// Role is the user's role as issued by the rentals backend
type Role = string

const (
	// RoleUser is a regular customer (browse, book, rate)
	RoleUser Role = "USER"
	// RoleAdmin is a console administrator (manage users, drones, bookings)
	RoleAdmin Role = "ADMIN"
)

// IsValidRole checks if the role is one of the roles the backend issues
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// RoleSet is the set of roles a route rule permits
type RoleSet []Role

// Contains reports whether role is in the set
func (rs RoleSet) Contains(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// AllRoles returns every role the backend issues
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}
