package impl

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProfileService(t *testing.T) (*testServices, usecase.ProfileUsecase) {
	t.Helper()

	s := createTestServices(t, "T1").loggedIn(testUser)

	return s, NewProfileService(ProfileParams{
		Gateway: s.gateway,
		Session: s.session,
		Logger:  s.logger,
	})
}

func ptr[T any](v T) *T {
	return &v
}

func TestProfileService_UpdateProfile_Success(t *testing.T) {
	s, profile := createTestProfileService(t)
	s.api.Reply(http.MethodPatch, pathMeUpdate, http.StatusOK,
		`{"id":7,"email":"a@b.com","name":"Asha K","phone":"555","address":"12 Park Road"}`)

	var notified *entity.User
	s.session.Subscribe(func(u *entity.User) { notified = u })

	user, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{Name: ptr("Asha K")})

	require.NoError(t, err)
	assert.Equal(t, "Asha K", user.Name)
	assert.Equal(t, "Asha K", s.session.CurrentUser().Name)
	require.NotNil(t, notified)
	assert.Equal(t, "Asha K", notified.Name)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(s.api.Body(http.MethodPatch, pathMeUpdate), &sent))
	assert.Equal(t, map[string]any{"name": "Asha K"}, sent)
}

func TestProfileService_UpdateProfile_EmptyResponseKeepsProfile(t *testing.T) {
	s, profile := createTestProfileService(t)
	s.api.Reply(http.MethodPatch, pathMeUpdate, http.StatusOK, "")

	user, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{Phone: ptr("999")})

	require.NoError(t, err)
	want := &entity.User{ID: 7, Email: "a@b.com", Name: "Asha", Phone: "999", Address: "12 Park Road"}
	assert.Equal(t, want, user)
	assert.Equal(t, want, s.session.CurrentUser())
	assert.Equal(t, "555", testUser.Phone)
}

func TestProfileService_UpdateProfile_Empty(t *testing.T) {
	s, profile := createTestProfileService(t)

	user, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{})

	require.NoError(t, err)
	assert.Equal(t, testUser, user)
	assert.Zero(t, s.api.Calls(http.MethodPatch, pathMeUpdate))
}

func TestProfileService_UpdateProfile_ServerValidation(t *testing.T) {
	s, profile := createTestProfileService(t)
	s.api.Reply(http.MethodPatch, pathMeUpdate, http.StatusBadRequest,
		`{"phone":["Ensure this field has no more than 20 characters."]}`)

	_, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{Phone: ptr("1")})

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Ensure this field has no more than 20 characters.", validationErr.Field("phone"))
	assert.Equal(t, "Asha", s.session.CurrentUser().Name)
}

func TestProfileService_UpdateProfile_LocalValidation(t *testing.T) {
	s, profile := createTestProfileService(t)

	_, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{
		Phone: ptr("0123456789012345678901"),
	})

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Zero(t, s.api.Calls(http.MethodPatch, pathMeUpdate))
}

func TestProfileService_UpdateProfile_Unauthorized(t *testing.T) {
	s, profile := createTestProfileService(t)
	s.api.Reply(http.MethodPatch, pathMeUpdate, http.StatusUnauthorized, `{"detail":"Token is invalid or expired"}`)

	_, err := profile.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{Name: ptr("X")})

	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
	assert.False(t, s.session.IsAuthenticated())
}

func TestProfileService_GetProfile_RequiresLogin(t *testing.T) {
	s := createTestServices(t, "")
	profile := NewProfileService(ProfileParams{Gateway: s.gateway, Session: s.session, Logger: s.logger})

	_, err := profile.GetProfile(context.Background())

	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))
	assert.Zero(t, s.api.Calls(http.MethodGet, pathMe))
}

func TestProfileService_GetProfile_RefreshesSession(t *testing.T) {
	s, profile := createTestProfileService(t)
	s.api.Reply(http.MethodGet, pathMe, http.StatusOK,
		`{"id":7,"email":"a@b.com","name":"Asha","phone":"999","address":"12 Park Road"}`)

	user, err := profile.GetProfile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "999", user.Phone)
	assert.Equal(t, "999", s.session.CurrentUser().Phone)
}
