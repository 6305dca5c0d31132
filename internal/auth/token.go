package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/genius-car/internal/domain"
)

// TokenTTL is the fixed lifetime of every issued access token.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidToken covers every verification failure: malformed input,
	// signature mismatch, wrong algorithm or elapsed expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when issuing without a signing secret.
	ErrMissingSecret = errors.New("signing secret not configured")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// WithClock replaces the time source used for issuing and verifying.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// issuerClaims are always set by the issuer; asserted values are dropped.
var issuerClaims = []string{"exp", "iat", "nbf"}

// Issue signs a token carrying every asserted claim of the identity. The
// claims are not checked; only the timing claims are replaced.
func (tm *TokenManager) Issue(identity domain.Identity) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}

	claims := make(jwt.MapClaims, len(identity.Claims)+3)
	for k, v := range identity.Claims {
		claims[k] = v
	}
	for _, k := range issuerClaims {
		delete(claims, k)
	}
	if identity.Email != nil {
		claims[domain.IdentityEmailClaim] = *identity.Email
		if _, ok := claims["sub"]; !ok {
			claims["sub"] = *identity.Email
		}
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims["iat"] = jwt.NewNumericDate(issuedAt)
	claims["exp"] = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token and returns the identity it carries.
func (tm *TokenManager) Verify(tokenStr string) (domain.Identity, error) {
	if len(tm.secret) == 0 || tokenStr == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, ErrInvalidToken
	}

	if !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.NewIdentity(claims), nil
}
