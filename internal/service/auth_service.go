package service

import (
	"time"

	"github.com/spec-kit/genius-car/internal/auth"
	"github.com/spec-kit/genius-car/internal/config"
	"github.com/spec-kit/genius-car/internal/domain"
)

// AuthService issues access tokens.
type AuthService struct {
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config) *AuthService {
	return &AuthService{tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret)}
}

// NewAuthServiceWithTokens builds the service around an existing manager.
func NewAuthServiceWithTokens(tokens *auth.TokenManager) *AuthService {
	return &AuthService{tokenMgr: tokens}
}

// IssueToken signs a token for whatever identity the caller asserts.
// Callers are trusted; restrict the route with auth.IssueGuard if needed.
func (s *AuthService) IssueToken(identity domain.Identity) (string, time.Time, error) {
	return s.tokenMgr.Issue(identity)
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
