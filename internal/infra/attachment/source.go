// Package attachment opens the optional booking image. Locations are local
// paths or bucket URLs understood by gocloud.dev/blob, e.g.
// file:///home/me/photos/bin.png.
package attachment

import (
	"context"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/util"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const imageField = "waste_image"

type bucketOpener func(ctx context.Context, bucketURL string) (*blob.Bucket, error)

// blobSource implements service.AttachmentSource on top of blob buckets.
type blobSource struct {
	maxBytes     int64
	allowedTypes []string
	open         bucketOpener
	logger       *slog.Logger
}

// Params holds dependencies for the attachment source, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewSource creates the attachment source from the attachment config section.
func NewSource(params Params) service.AttachmentSource {
	return newSource(params.Config.Attachment, params.Logger, openBucket)
}

func newSource(cfg *config.AttachmentConfig, logger *slog.Logger, open bucketOpener) *blobSource {
	return &blobSource{
		maxBytes:     cfg.MaxBytes,
		allowedTypes: cfg.AllowedTypes,
		open:         open,
		logger:       logger,
	}
}

// openBucket treats scheme-less locations as local directories.
func openBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	if !strings.Contains(bucketURL, "://") {
		return fileblob.OpenBucket(bucketURL, nil)
	}

	return blob.OpenBucket(ctx, bucketURL)
}

// Open reads the image at location and checks its type and size.
func (s *blobSource) Open(ctx context.Context, location string) (*service.Attachment, error) {
	bucketURL, key, err := splitLocation(location)
	if err != nil {
		return nil, domainerrors.NewValidationError(map[string][]string{imageField: {"Image location is invalid."}})
	}

	bucket, err := s.open(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %s", bucketURL)
	}
	defer bucket.Close()

	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, domainerrors.NewValidationError(map[string][]string{imageField: {"Image file not found."}})
		}

		return nil, errors.Wrapf(err, "stat %s", location)
	}
	if s.maxBytes > 0 && attrs.Size > s.maxBytes {
		return nil, s.tooLarge()
	}

	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", location)
	}
	defer r.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = attrs.Size
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", location)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, s.tooLarge()
	}

	contentType := mimetype.Detect(data).String()
	if len(s.allowedTypes) > 0 && !slices.Contains(s.allowedTypes, contentType) {
		return nil, domainerrors.NewValidationError(map[string][]string{imageField: {"Please upload a JPG or PNG image."}})
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Debug("Opened attachment",
		slog.String("location", location),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)),
	)

	return &service.Attachment{
		FileName:    path.Base(key),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *blobSource) tooLarge() error {
	return domainerrors.NewValidationError(map[string][]string{
		imageField: {"Image size must be at most " + util.FormatBytes(s.maxBytes) + "."},
	})
}

// splitLocation separates the bucket from the object key, which is the
// last path element.
func splitLocation(location string) (bucketURL, key string, err error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", "", errors.New("empty location")
	}

	scheme, rest, hasScheme := strings.Cut(location, "://")
	if !hasScheme {
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", errors.WithStack(err)
		}

		return filepath.Dir(abs), filepath.Base(abs), nil
	}

	rest, query, _ := strings.Cut(rest, "?")
	i := strings.LastIndex(rest, "/")
	if i < 0 || i == len(rest)-1 {
		return "", "", errors.Errorf("location %q has no object key", location)
	}
	bucketURL = scheme + "://" + rest[:i]
	if query != "" {
		bucketURL += "?" + query
	}

	return bucketURL, rest[i+1:], nil
}

// Module provides the attachment FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewSource),
)
