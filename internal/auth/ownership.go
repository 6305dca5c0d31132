package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/genius-car/internal/domain"
	apperrors "github.com/spec-kit/genius-car/pkg/util"
)

// ErrOwnershipMismatch is returned when a caller asks for records owned by
// another identity.
var ErrOwnershipMismatch = errors.New("requested owner does not match identity")

// CheckOwnership compares the identity email with the requested owner.
// Both absent counts as a match; otherwise both must be present and equal
// byte for byte. An email claim that is not a string never matches.
func CheckOwnership(identity domain.Identity, requested *string) error {
	switch {
	case identity.EmailMalformed():
		return ErrOwnershipMismatch
	case identity.Email == nil && requested == nil:
		return nil
	case identity.Email == nil || requested == nil:
		return ErrOwnershipMismatch
	case *identity.Email != *requested:
		return ErrOwnershipMismatch
	}
	return nil
}

// RequireQueryOwner ensures the query parameter named key matches the
// authenticated identity's email. It must run after AuthMiddleware.Handle.
func RequireQueryOwner(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(accessDenied)
		}
		if err := CheckOwnership(identity, OptionalQuery(c, key)); err != nil {
			return apperrors.NewForbidden(accessDenied)
		}
		return c.Next()
	}
}

// OptionalQuery returns the query parameter value, or nil when the
// parameter is absent. A present but empty parameter yields "".
func OptionalQuery(c *fiber.Ctx, key string) *string {
	args := c.Context().QueryArgs()
	if !args.Has(key) {
		return nil
	}
	val := string(args.Peek(key))
	return &val
}
