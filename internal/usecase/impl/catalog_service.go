package impl

import (
	"context"
	"log/slog"
	"net/http"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/infra/geo"
	"pickup/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	gateway service.Gateway
	session usecase.SessionUsecase
	mapsKey string
	logger  *slog.Logger
}

// CatalogParams holds dependencies for CatalogService, injected by Fx
type CatalogParams struct {
	fx.In

	Config  *config.Config
	Gateway service.Gateway
	Session usecase.SessionUsecase
	Logger  *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogParams) usecase.CatalogUsecase {
	var mapsKey string
	if params.Config.Maps != nil {
		mapsKey = params.Config.Maps.APIKey
	}

	return &catalogService{
		gateway: params.Gateway,
		session: params.Session,
		mapsKey: mapsKey,
		logger:  params.Logger,
	}
}

// ListWasteTypes is public; no login needed.
func (srv *catalogService) ListWasteTypes(ctx context.Context) ([]entity.WasteType, error) {
	var types []entity.WasteType
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: pathWasteTypes}, &types); err != nil {
		return nil, errors.Wrap(err, "list waste types")
	}

	return types, nil
}

// ListCenters requires a login.
func (srv *catalogService) ListCenters(ctx context.Context) ([]entity.Center, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	var centers []entity.Center
	if err := call(ctx, srv.gateway, &service.Request{Method: http.MethodGet, Path: pathCenters}, &centers); err != nil {
		return nil, sessionError(ctx, srv.session, err, "list centers")
	}

	return centers, nil
}

// NearestCenter asks the server for the closest center to p.
func (srv *catalogService) NearestCenter(ctx context.Context, p orb.Point) (*entity.NearestCenter, error) {
	if _, err := srv.session.RequireUser(); err != nil {
		return nil, err
	}

	var nearest entity.NearestCenter
	err := call(ctx, srv.gateway, &service.Request{
		Method: http.MethodPost,
		Path:   pathNearestCenter,
		JSON:   map[string]float64{"latitude": p.Lat(), "longitude": p.Lon()},
	}, &nearest)
	if err != nil {
		if apiErr, ok := service.AsAPIError(err); ok && !apiErr.IsUnauthorized() {
			switch {
			case apiErr.IsNotFound():
				return nil, errors.Wrap(domainerrors.ErrNoCentersFound, err.Error())
			case apiErr.IsClientError():
				if fields := apiErr.FieldErrors(); fields != nil {
					return nil, domainerrors.NewValidationError(fields)
				}
			}
		}

		return nil, sessionError(ctx, srv.session, err, "nearest center")
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Debug("Nearest center",
		slog.Int64("center_id", nearest.Center.ID),
		slog.Float64("distance_km", nearest.DistanceKm),
	)

	return &nearest, nil
}

// RankCenters sorts every center by great-circle distance from p.
func (srv *catalogService) RankCenters(ctx context.Context, p orb.Point) ([]entity.NearestCenter, error) {
	centers, err := srv.ListCenters(ctx)
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, errors.WithStack(domainerrors.ErrNoCentersFound)
	}

	return geo.RankCenters(centers, p), nil
}

// CenterMap renders the centers as a static map URL.
func (srv *catalogService) CenterMap(centers []entity.Center, selectedID int64, user *orb.Point) string {
	if srv.mapsKey == "" {
		return ""
	}

	return geo.StaticMapURL(srv.mapsKey, centers, selectedID, user)
}
