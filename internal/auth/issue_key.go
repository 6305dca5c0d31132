package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/genius-car/pkg/util"
)

// IssueKeyHeader carries the shared issuance key on POST /jwt.
const IssueKeyHeader = "X-Issue-Key"

var (
	ErrIssueKeyMissing  = errors.New("issue key missing")
	ErrIssueKeyMismatch = errors.New("issue key mismatch")
)

// IssueGuard optionally restricts token issuance to callers holding a
// shared key. A guard built from an empty hash lets every caller through.
type IssueGuard struct {
	hash []byte
}

// NewIssueGuard builds a guard from a bcrypt hash.
func NewIssueGuard(hash string) *IssueGuard {
	return &IssueGuard{hash: []byte(hash)}
}

// Enabled reports whether a key is required.
func (g *IssueGuard) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Check verifies a presented key against the configured hash.
func (g *IssueGuard) Check(presented string) error {
	if !g.Enabled() {
		return nil
	}
	if presented == "" {
		return ErrIssueKeyMissing
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(presented)); err != nil {
		return ErrIssueKeyMismatch
	}
	return nil
}

// Handle enforces the guard on the issuance route.
func (g *IssueGuard) Handle(c *fiber.Ctx) error {
	switch err := g.Check(c.Get(IssueKeyHeader)); {
	case errors.Is(err, ErrIssueKeyMissing):
		return apperrors.NewUnauthorized("issue key required")
	case err != nil:
		return apperrors.NewForbidden("invalid issue key")
	}
	return c.Next()
}

// HashIssueKey hashes a plaintext issuance key with the given cost.
func HashIssueKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
