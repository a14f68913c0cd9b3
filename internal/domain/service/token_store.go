package service

import "time"

// TokenStore persists the single access token. Token is read by every
// request; Save and Clear are only called from login and logout.
type TokenStore interface {
	Token() (string, bool)
	Save(token string) error
	Clear() error
}

// TokenInfo is what can be read from an access token without verifying it.
type TokenInfo struct {
	UserID    string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past.
func (i *TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// TokenInspector decodes access token claims for display. It never
// validates signatures; the server stays the only authority.
type TokenInspector interface {
	Inspect(token string) (*TokenInfo, error)
}
