package dto

import "time"

// TokenRequest is the identity a caller asks to be issued a token for.
// Every field is signed as given.
type TokenRequest map[string]any

// TokenResponse is returned by POST /jwt.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
