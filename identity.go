package rentalweb

// Identity is the resolved, trusted representation of the current user.
// Phone and Address are only known once the authoritative profile has been
// fetched; a token-decoded identity leaves them empty.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`

	// Authoritative marks identities produced by the profile endpoint as
	// opposed to an optimistic token decode.
	Authoritative bool `json:"-"`
}

// IdentityFromClaims builds the optimistic identity used for routing right
// after login or OAuth completion. The token subject doubles as both the
// display name and the email, matching what the backend embeds.
func IdentityFromClaims(claims AuthClaims) *Identity {
	return &Identity{
		ID:          claims.UserID(),
		DisplayName: claims.Subject(),
		Email:       claims.Subject(),
		Role:        claims.Role(),
	}
}

// IdentityPatch is a partial identity update applied after a profile edit.
// Nil fields are left untouched. Role is deliberately absent: a profile edit
// can never change the role the session routes with.
type IdentityPatch struct {
	DisplayName *string
	Email       *string
	Phone       *string
	Address     *string
}

// merge applies the patch on a copy of the identity.
func (i Identity) merge(patch IdentityPatch) Identity {
	if patch.DisplayName != nil {
		i.DisplayName = *patch.DisplayName
	}
	if patch.Email != nil {
		i.Email = *patch.Email
	}
	if patch.Phone != nil {
		i.Phone = *patch.Phone
	}
	if patch.Address != nil {
		i.Address = *patch.Address
	}
	return i
}
