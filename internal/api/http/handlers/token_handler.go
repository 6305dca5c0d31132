package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/genius-car/internal/api/dto"
	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/service"
	apperrors "github.com/spec-kit/genius-car/pkg/util"
)

// TokenHandler issues access tokens.
type TokenHandler struct {
	auth *service.AuthService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(authService *service.AuthService) *TokenHandler {
	return &TokenHandler{auth: authService}
}

// Issue handles POST /jwt. The body must be a JSON object; an empty body
// issues a token without an email.
func (h *TokenHandler) Issue(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	token, exp, err := h.auth.IssueToken(domain.NewIdentity(req))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{Token: token, ExpiresAt: exp})
}
