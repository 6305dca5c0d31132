package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/genius-car/internal/domain"
	apperrors "github.com/spec-kit/genius-car/pkg/util"
)

const identityKey = "auth_identity"

const accessDenied = "unauthorized access"

// AuthMiddleware validates bearer tokens on protected routes.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle rejects requests without an Authorization header (401) or whose
// token does not verify (403), and stores the identity for later handlers.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized(accessDenied)
	}

	identity, err := m.tokens.Verify(BearerToken(authHeader))
	if err != nil {
		return apperrors.NewForbidden(accessDenied)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// BearerToken returns the second whitespace-separated field of an
// Authorization header value. The scheme word is not inspected.
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
