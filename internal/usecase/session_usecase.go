// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"pickup/internal/domain/entity"
)

// SessionUsecase is the single source of truth for who is logged in. It is
// an explicit object; every instance is an independent session.
type SessionUsecase interface {
	Login(ctx context.Context, email, password string) (*entity.User, error)
	Register(ctx context.Context, input *RegisterInput) error
	Logout(ctx context.Context) error

	// Restore loads the profile for a stored token, once per session.
	Restore(ctx context.Context) error

	CurrentUser() *entity.User
	IsAuthenticated() bool
	Token() (string, bool)

	// Subscribe registers fn for current-user changes. The returned func
	// removes the subscription.
	Subscribe(fn func(*entity.User)) (unsubscribe func())

	// RequireUser returns domainerrors.ErrLoginRequired when nobody is
	// logged in.
	RequireUser() (*entity.User, error)

	// HandleUnauthorized logs the user out when err carries a 401 from the
	// API and reports whether it did.
	HandleUnauthorized(ctx context.Context, err error) bool

	// SetUser replaces the current user after a profile change.
	SetUser(user *entity.User)

	SessionInfo() (*SessionInfo, error)
}

// --- Input DTOs ---

// RegisterInput defines the data required to create an account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Password  string `json:"password" validate:"required,min=6"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// --- Output DTOs ---

// SessionInfo describes the stored access token. It is read without
// verification and is for display only.
type SessionInfo struct {
	User      *entity.User `json:"user,omitempty"`
	UserID    string       `json:"user_id"`
	TokenType string       `json:"token_type,omitempty"`
	IssuedAt  time.Time    `json:"issued_at,omitzero"`
	ExpiresAt time.Time    `json:"expires_at,omitzero"`
	Expired   bool         `json:"expired"`
}
