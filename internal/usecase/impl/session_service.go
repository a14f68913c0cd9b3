package impl

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/usecase"
	"pickup/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	gateway   service.Gateway
	tokens    service.TokenStore
	inspector service.TokenInspector
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time

	restoreMu sync.Mutex
	restored  bool

	mu          sync.RWMutex
	user        *entity.User
	subscribers map[uint64]func(*entity.User)
	nextSubID   uint64
}

// SessionParams holds dependencies for the session, injected by Fx
type SessionParams struct {
	fx.In

	Gateway   service.Gateway
	Tokens    service.TokenStore
	Inspector service.TokenInspector
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionParams) usecase.SessionUsecase {
	return &sessionService{
		gateway:     params.Gateway,
		tokens:      params.Tokens,
		inspector:   params.Inspector,
		validate:    util.NewValidator(),
		logger:      params.Logger,
		now:         time.Now,
		subscribers: make(map[uint64]func(*entity.User)),
	}
}

// Login exchanges credentials for a token and loads the profile. On any
// failure the previously stored state is left as it was.
func (srv *sessionService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	logger := srv.log(ctx)
	logger.Info("Logging in", slog.String("email", email))

	var pair entity.TokenPair
	err := call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathToken,
		JSON:   map[string]string{"email": email, "password": password},
		Header: anonymous,
	}, &pair)
	if err != nil {
		if _, ok := service.AsAPIError(err); ok {
			logger.Warn("Login rejected", slog.Any("error", err))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, err.Error())
		}

		return nil, errors.Wrap(err, "request token")
	}
	if pair.Access == "" {
		return nil, errors.Wrap(domainerrors.ErrInternalError, "token response has no access token")
	}

	previous, hadPrevious := srv.tokens.Token()
	if err := srv.tokens.Save(pair.Access); err != nil {
		return nil, errors.Wrap(err, "store token")
	}

	user, err := srv.fetchProfile(ctx)
	if err != nil {
		srv.rollbackToken(logger, previous, hadPrevious)
		if service.IsUnauthorized(err) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, err.Error())
		}

		return nil, errors.Wrap(err, "fetch profile after login")
	}

	srv.restoreMu.Lock()
	srv.restored = true
	srv.restoreMu.Unlock()

	srv.setUser(user)
	logger.Info("Logged in", slog.Int64("user_id", user.ID))

	return user, nil
}

func (srv *sessionService) rollbackToken(logger *slog.Logger, previous string, hadPrevious bool) {
	var err error
	if hadPrevious {
		err = srv.tokens.Save(previous)
	} else {
		err = srv.tokens.Clear()
	}
	if err != nil {
		logger.Error("Failed to restore previous token", slog.Any("error", err))
	}
}

// Register creates an account. It does not log in.
func (srv *sessionService) Register(ctx context.Context, input *usecase.RegisterInput) error {
	if err := srv.validate.Struct(input); err != nil {
		if fields := util.FieldMessages(err); fields != nil {
			return domainerrors.NewValidationError(fields)
		}

		return errors.Wrap(err, "validate registration")
	}

	srv.log(ctx).Info("Registering account", slog.String("email", input.Email))

	err := call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathRegister,
		JSON:   input,
		Header: anonymous,
	}, nil)
	if err == nil {
		return nil
	}

	if apiErr, ok := service.AsAPIError(err); ok && apiErr.IsClientError() {
		if fields := apiErr.FieldErrors(); fields != nil {
			return domainerrors.NewValidationError(fields)
		}

		return errors.Wrap(domainerrors.ErrRegistrationFailed, err.Error())
	}

	return errors.Wrap(err, "register")
}

// Logout forgets the token and the user. It is safe to call repeatedly.
func (srv *sessionService) Logout(ctx context.Context) error {
	if err := srv.tokens.Clear(); err != nil {
		return errors.Wrap(err, "clear token")
	}
	if srv.setUser(nil) {
		srv.log(ctx).Info("Logged out")
	}

	return nil
}

// Restore fetches the profile for a stored token. It issues at most one
// request per session: a 401 discards the token, any other failure keeps
// it and leaves the user unset until the next run.
func (srv *sessionService) Restore(ctx context.Context) error {
	srv.restoreMu.Lock()
	defer srv.restoreMu.Unlock()

	if srv.restored {
		return nil
	}
	if _, ok := srv.tokens.Token(); !ok {
		return nil
	}
	srv.restored = true

	logger := srv.log(ctx)
	user, err := srv.fetchProfile(ctx)
	if err != nil {
		if srv.HandleUnauthorized(ctx, err) {
			return nil
		}
		logger.Warn("Could not load profile for stored token; keeping it", slog.Any("error", err))

		return errors.Wrap(err, "restore session")
	}

	srv.setUser(user)
	logger.Debug("Session restored", slog.Int64("user_id", user.ID))

	return nil
}

func (srv *sessionService) fetchProfile(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: pathMe}, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// CurrentUser returns a copy of the logged-in user, or nil.
func (srv *sessionService) CurrentUser() *entity.User {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	if srv.user == nil {
		return nil
	}
	u := *srv.user

	return &u
}

// IsAuthenticated reports whether a user is loaded.
func (srv *sessionService) IsAuthenticated() bool {
	return srv.CurrentUser() != nil
}

// Token returns the stored access token.
func (srv *sessionService) Token() (string, bool) {
	return srv.tokens.Token()
}

// Subscribe registers fn for current-user changes.
func (srv *sessionService) Subscribe(fn func(*entity.User)) func() {
	srv.mu.Lock()
	id := srv.nextSubID
	srv.nextSubID++
	srv.subscribers[id] = fn
	srv.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			srv.mu.Lock()
			delete(srv.subscribers, id)
			srv.mu.Unlock()
		})
	}
}

// RequireUser returns the current user or ErrLoginRequired.
func (srv *sessionService) RequireUser() (*entity.User, error) {
	user := srv.CurrentUser()
	if user == nil {
		return nil, errors.WithStack(domainerrors.ErrLoginRequired)
	}

	return user, nil
}

// HandleUnauthorized forces a logout when err is a 401 from the API.
func (srv *sessionService) HandleUnauthorized(ctx context.Context, err error) bool {
	if !service.IsUnauthorized(err) {
		return false
	}

	srv.log(ctx).Warn("Token rejected by server; logging out")
	if clearErr := srv.tokens.Clear(); clearErr != nil {
		srv.log(ctx).Error("Failed to clear rejected token", slog.Any("error", clearErr))
	}
	srv.setUser(nil)

	return true
}

// SetUser replaces the current user and notifies subscribers on change.
func (srv *sessionService) SetUser(user *entity.User) {
	srv.setUser(user)
}

// SessionInfo reads the stored token's claims for display.
func (srv *sessionService) SessionInfo() (*usecase.SessionInfo, error) {
	token, ok := srv.tokens.Token()
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrLoginRequired)
	}

	info, err := srv.inspector.Inspect(token)
	if err != nil {
		return nil, errors.Wrap(err, "inspect token")
	}

	return &usecase.SessionInfo{
		User:      srv.CurrentUser(),
		UserID:    info.UserID,
		TokenType: info.TokenType,
		IssuedAt:  info.IssuedAt,
		ExpiresAt: info.ExpiresAt,
		Expired:   info.Expired(srv.now()),
	}, nil
}

// setUser stores user and, when it differs from the previous value, calls
// the subscribers outside the lock. It reports whether anything changed.
func (srv *sessionService) setUser(user *entity.User) bool {
	if user != nil {
		u := *user
		user = &u
	}

	srv.mu.Lock()
	changed := !sameUser(srv.user, user)
	srv.user = user
	var subscribers []func(*entity.User)
	if changed {
		subscribers = make([]func(*entity.User), 0, len(srv.subscribers))
		for _, fn := range srv.subscribers {
			subscribers = append(subscribers, fn)
		}
	}
	srv.mu.Unlock()

	for _, fn := range subscribers {
		var snapshot *entity.User
		if user != nil {
			u := *user
			snapshot = &u
		}
		fn(snapshot)
	}

	return changed
}

func sameUser(a, b *entity.User) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}
