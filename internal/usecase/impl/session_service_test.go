package impl

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Login_Success(t *testing.T) {
	s := createTestServices(t, "")
	s.api.Reply(http.MethodPost, pathToken, http.StatusOK, `{"access":"T1","refresh":"R1"}`)
	s.api.Reply(http.MethodGet, pathMe, http.StatusOK, testUserJSON)

	var notified []*entity.User
	s.session.Subscribe(func(u *entity.User) { notified = append(notified, u) })

	user, err := s.session.Login(context.Background(), "a@b.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, testUser, user)
	token, ok := s.tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "Bearer T1", s.api.Auth(http.MethodGet, pathMe))
	assert.Empty(t, s.api.Auth(http.MethodPost, pathToken))
	assert.True(t, s.session.IsAuthenticated())
	require.Len(t, notified, 1)
	assert.Equal(t, "a@b.com", notified[0].Email)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(s.api.Body(http.MethodPost, pathToken), &sent))
	assert.Equal(t, map[string]string{"email": "a@b.com", "password": "secret1"}, sent)
}

func TestSessionService_Login_InvalidCredentials(t *testing.T) {
	s := createTestServices(t, "OLD")
	s.api.Reply(http.MethodPost, pathToken, http.StatusUnauthorized,
		`{"detail":"No active account found with the given credentials"}`)

	user, err := s.session.Login(context.Background(), "a@b.com", "wrong")

	assert.Nil(t, user)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Equal(t, "Invalid email or password. Please try again.", domainerrors.UserMessage(err))
	token, _ := s.tokens.Token()
	assert.Equal(t, "OLD", token)
	assert.Nil(t, s.session.CurrentUser())
	assert.Zero(t, s.api.Calls(http.MethodGet, pathMe))
}

func TestSessionService_Login_ServerErrorIsAuthenticationError(t *testing.T) {
	s := createTestServices(t, "OLD")
	s.api.Reply(http.MethodPost, pathToken, http.StatusInternalServerError, `{"detail":"boom"}`)

	user, err := s.session.Login(context.Background(), "a@b.com", "secret1")

	assert.Nil(t, user)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	token, _ := s.tokens.Token()
	assert.Equal(t, "OLD", token)
	assert.Zero(t, s.api.Calls(http.MethodGet, pathMe))
}

func TestSessionService_Login_ProfileFailureRestoresToken(t *testing.T) {
	s := createTestServices(t, "OLD")
	s.api.Reply(http.MethodPost, pathToken, http.StatusOK, `{"access":"T1","refresh":"R1"}`)
	s.api.Reply(http.MethodGet, pathMe, http.StatusInternalServerError, `{"detail":"boom"}`)

	_, err := s.session.Login(context.Background(), "a@b.com", "secret1")

	require.Error(t, err)
	token, _ := s.tokens.Token()
	assert.Equal(t, "OLD", token)
	assert.False(t, s.session.IsAuthenticated())
}

func TestSessionService_Register_LocalValidation(t *testing.T) {
	s := createTestServices(t, "")

	err := s.session.Register(context.Background(), &usecase.RegisterInput{
		Email:     "not-an-email",
		Password:  "123",
		Password2: "456",
	})

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Enter a valid email address.", validationErr.Field("email"))
	assert.Equal(t, "Must be at least 6 characters long.", validationErr.Field("password"))
	assert.Equal(t, "Passwords do not match.", validationErr.Field("password2"))
	assert.Zero(t, s.api.Calls(http.MethodPost, pathRegister))
}

func TestSessionService_Register_ServerFieldErrors(t *testing.T) {
	s := createTestServices(t, "")
	s.api.Reply(http.MethodPost, pathRegister, http.StatusBadRequest,
		`{"email":["user with this email already exists."]}`)

	err := s.session.Register(context.Background(), &usecase.RegisterInput{
		Email:     "a@b.com",
		Password:  "secret1",
		Password2: "secret1",
	})

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"user with this email already exists."}, validationErr.Fields["email"])
	assert.Equal(t, "user with this email already exists.", domainerrors.UserMessage(err))
}

func TestSessionService_Register_DoesNotLogIn(t *testing.T) {
	s := createTestServices(t, "")
	s.api.Reply(http.MethodPost, pathRegister, http.StatusCreated, `{"id":9,"email":"new@b.com"}`)

	err := s.session.Register(context.Background(), &usecase.RegisterInput{
		Email:     "new@b.com",
		Name:      "New",
		Password:  "secret1",
		Password2: "secret1",
	})

	require.NoError(t, err)
	assert.False(t, s.session.IsAuthenticated())
	_, ok := s.tokens.Token()
	assert.False(t, ok)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(s.api.Body(http.MethodPost, pathRegister), &sent))
	assert.Equal(t, "secret1", sent["password2"])
}

func TestSessionService_Logout_Idempotent(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)

	var notified int
	s.session.Subscribe(func(u *entity.User) {
		notified++
		assert.Nil(t, u)
	})

	require.NoError(t, s.session.Logout(context.Background()))
	require.NoError(t, s.session.Logout(context.Background()))

	assert.Equal(t, 1, notified)
	assert.Nil(t, s.session.CurrentUser())
	_, ok := s.tokens.Token()
	assert.False(t, ok)
}

func TestSessionService_Restore_RequestsProfileOnce(t *testing.T) {
	s := createTestServices(t, "T1")
	s.api.Reply(http.MethodGet, pathMe, http.StatusOK, testUserJSON)

	require.NoError(t, s.session.Restore(context.Background()))
	require.NoError(t, s.session.Restore(context.Background()))

	assert.Equal(t, 1, s.api.Calls(http.MethodGet, pathMe))
	assert.Equal(t, testUser, s.session.CurrentUser())
	assert.Equal(t, "Bearer T1", s.api.Auth(http.MethodGet, pathMe))
}

func TestSessionService_Restore_UnauthorizedClearsToken(t *testing.T) {
	s := createTestServices(t, "EXPIRED")
	s.api.Reply(http.MethodGet, pathMe, http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`)

	require.NoError(t, s.session.Restore(context.Background()))

	_, ok := s.tokens.Token()
	assert.False(t, ok)
	assert.Nil(t, s.session.CurrentUser())
}

func TestSessionService_Restore_OtherFailureKeepsToken(t *testing.T) {
	s := createTestServices(t, "T1")
	s.api.Reply(http.MethodGet, pathMe, http.StatusBadGateway, `bad gateway`)

	err := s.session.Restore(context.Background())
	require.Error(t, err)
	require.NoError(t, s.session.Restore(context.Background()))

	token, ok := s.tokens.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Nil(t, s.session.CurrentUser())
	assert.Equal(t, 1, s.api.Calls(http.MethodGet, pathMe))
}

func TestSessionService_Restore_NoToken(t *testing.T) {
	s := createTestServices(t, "")

	require.NoError(t, s.session.Restore(context.Background()))

	assert.Zero(t, s.api.Calls(http.MethodGet, pathMe))
}

func TestSessionService_IndependentSessions(t *testing.T) {
	a := createTestServices(t, "").loggedIn(testUser)
	b := createTestServices(t, "")

	assert.True(t, a.session.IsAuthenticated())
	assert.False(t, b.session.IsAuthenticated())
}

func TestSessionService_RequireUser(t *testing.T) {
	s := createTestServices(t, "")

	_, err := s.session.RequireUser()
	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))

	s.loggedIn(testUser)
	user, err := s.session.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestSessionService_HandleUnauthorized(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)

	assert.False(t, s.session.HandleUnauthorized(context.Background(), domainerrors.ErrNetwork))
	assert.True(t, s.session.IsAuthenticated())

	s.api.Reply(http.MethodGet, pathCenters, http.StatusUnauthorized, `{"detail":"expired"}`)
	_, err := s.catalog.ListCenters(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
	assert.False(t, s.session.IsAuthenticated())
	_, ok := s.tokens.Token()
	assert.False(t, ok)
}

func TestSessionService_Subscribe_Unsubscribe(t *testing.T) {
	s := createTestServices(t, "")

	var calls int
	unsubscribe := s.session.Subscribe(func(*entity.User) { calls++ })

	s.session.SetUser(testUser)
	s.session.SetUser(testUser)
	unsubscribe()
	unsubscribe()
	s.session.SetUser(nil)

	assert.Equal(t, 1, calls)
}

func TestSessionService_CurrentUserIsACopy(t *testing.T) {
	s := createTestServices(t, "").loggedIn(testUser)

	s.session.CurrentUser().Name = "Changed"

	assert.Equal(t, "Asha", s.session.CurrentUser().Name)
}

func TestSessionService_SessionInfo(t *testing.T) {
	s := createTestServices(t, "")

	_, err := s.session.SessionInfo()
	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    7,
		"token_type": "access",
		"iat":        issued.Unix(),
		"exp":        issued.Add(5 * time.Minute).Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	require.NoError(t, s.tokens.Save(token))
	s.session.now = func() time.Time { return issued.Add(time.Hour) }

	info, err := s.session.SessionInfo()

	require.NoError(t, err)
	assert.Equal(t, "7", info.UserID)
	assert.Equal(t, "access", info.TokenType)
	assert.True(t, info.Expired)
	_, ok := s.tokens.Token()
	assert.True(t, ok)
}
