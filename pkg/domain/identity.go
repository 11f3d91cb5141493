package domain

import "time"

// Identity is the user decoded from an access token's claims.
// It is never persisted on its own.
type Identity struct {
	ID        int64     `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DisplayName is the username, falling back to email.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

// AuthTokens is the access/refresh pair issued on login and register.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
