package usecase

import (
	"context"

	"pickup/internal/domain/entity"
)

// ProfileUsecase defines the profile operations of the logged-in user.
type ProfileUsecase interface {
	GetProfile(ctx context.Context) (*entity.User, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error)
}

// --- Input DTOs ---

// UpdateProfileInput defines the editable profile fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address *string `json:"address,omitempty"`
}

// IsEmpty reports whether no field is set.
func (in *UpdateProfileInput) IsEmpty() bool {
	return in.Name == nil && in.Phone == nil && in.Address == nil
}
