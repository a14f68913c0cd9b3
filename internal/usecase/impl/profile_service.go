package impl

import (
	"context"
	"log/slog"
	"net/http"

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

// profileService implements the ProfileUsecase interface.
type profileService struct {
	gateway  service.Gateway
	session  usecase.SessionUsecase
	validate *validator.Validate
	logger   *slog.Logger
}

// ProfileParams holds dependencies for ProfileService, injected by Fx
type ProfileParams struct {
	fx.In

	Gateway service.Gateway
	Session usecase.SessionUsecase
	Logger  *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileParams) usecase.ProfileUsecase {
	return &profileService{
		gateway:  params.Gateway,
		session:  params.Session,
		validate: util.NewValidator(),
		logger:   params.Logger,
	}
}

// GetProfile re-reads the profile from the server and refreshes the session.
func (srv *profileService) GetProfile(ctx context.Context) (*entity.User, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	var user entity.User
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: pathMe}, &user); err != nil {
		return nil, sessionError(ctx, srv.session, err, "get profile")
	}
	srv.session.SetUser(&user)

	return &user, nil
}

// UpdateProfile sends the changed fields and stores the server's answer as
// the current user.
func (srv *profileService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.User, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, srv.logger)

	current, err := srv.session.RequireUser()
	if err != nil {
		return nil, err
	}
	if input == nil || input.IsEmpty() {
		return current, nil
	}

	if err := srv.validate.Struct(input); err != nil {
		if fields := util.FieldMessages(err); fields != nil {
			return nil, domainerrors.NewValidationError(fields)
		}

		return nil, errors.Wrap(err, "validate profile")
	}

	var user entity.User
	err = call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPatch,
		Path:   pathMeUpdate,
		JSON:   input,
	}, &user)
	if err != nil {
		if apiErr, ok := service.AsAPIError(err); ok && apiErr.IsClientError() && !apiErr.IsUnauthorized() {
			if fields := apiErr.FieldErrors(); fields != nil {
				return nil, domainerrors.NewValidationError(fields)
			}
		}
		logger.Error("Failed to update profile", slog.Any("error", err))

		return nil, sessionError(ctx, srv.session, err, "update profile")
	}

	if user.ID == 0 {
		user = mergeProfile(current, input)
	}

	srv.session.SetUser(&user)
	logger.Info("Profile updated", slog.Int64("user_id", user.ID))

	return &user, nil
}

// mergeProfile applies input to a copy of current, for servers that answer
// the update without a body.
func mergeProfile(current *entity.User, input *usecase.UpdateProfileInput) entity.User {
	user := *current
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Address != nil {
		user.Address = *input.Address
	}

	return user
}
