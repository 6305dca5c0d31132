package domain

// IdentityEmailClaim is the claim that names the token owner.
const IdentityEmailClaim = "email"

// Identity is the authenticated subject carried by an access token.
// Email is nil when the token carries no string email claim. Claims holds
// every field the caller asserted when the token was issued.
type Identity struct {
	Email  *string
	Claims map[string]any
}

// NewIdentity builds an identity from asserted claims. Claims are kept as
// given; Email is set only when the email claim is a string.
func NewIdentity(claims map[string]any) Identity {
	identity := Identity{Claims: claims}
	if email, ok := claims[IdentityEmailClaim].(string); ok {
		identity.Email = &email
	}
	return identity
}

// HasEmail reports whether the identity carries an email claim.
func (i Identity) HasEmail() bool {
	return i.Email != nil
}

// EmailValue returns the email claim or an empty string.
func (i Identity) EmailValue() string {
	if i.Email == nil {
		return ""
	}
	return *i.Email
}

// EmailMalformed reports an email claim that is present but not a string,
// null included.
func (i Identity) EmailMalformed() bool {
	if i.Email != nil {
		return false
	}
	_, present := i.Claims[IdentityEmailClaim]
	return present
}
