// Package api implements the gateway to the remote booking API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"pickup/config"
	deliverycontext "pickup/internal/delivery/context"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// Client is the service.Gateway backed by net/http. It carries no request
// timeout of its own; callers bound requests with their context.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
	tokens     service.TokenStore
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Params holds dependencies for the gateway, injected by Fx
type Params struct {
	fx.In

	Config     *config.Config
	Logger     *slog.Logger
	Tokens     service.TokenStore
	HTTPClient *http.Client `optional:"true"`
}

// NewGateway creates the gateway from configuration.
func NewGateway(params Params) (service.Gateway, error) {
	return New(params.Config.API, params.Tokens, params.Logger, params.HTTPClient)
}

// New creates a client for the API at cfg.BaseURL. A nil httpClient uses
// http.DefaultClient. A non-positive rate limit disables limiting.
func New(cfg config.APIConfig, tokens service.TokenStore, logger *slog.Logger, httpClient *http.Client) (*Client, error) {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api base url %q", cfg.BaseURL)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("api base url %q must be absolute", cfg.BaseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// Do sends req and returns the 2xx response. Non-2xx answers become
// *service.APIError; transport failures wrap domainerrors.ErrNetwork.
func (c *Client) Do(ctx context.Context, req *service.Request) (*service.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.WithStack(ctxErr)
		}
		logger.Warn("API request failed",
			slog.String("method", httpReq.Method),
			slog.String("path", req.Path),
			slog.Any("error", err),
		)

		return nil, errors.Wrapf(domainerrors.ErrNetwork.WithDetails(err.Error()), "%s %s", httpReq.Method, req.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(domainerrors.ErrNetwork.WithDetails(err.Error()), "read %s %s", httpReq.Method, req.Path)
	}

	logger.Debug("API request",
		slog.String("method", httpReq.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &service.APIError{Status: resp.StatusCode, Body: body}
	}

	return &service.Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, req *service.Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	rel, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse path %q", req.Path)
	}
	target := c.baseURL.ResolveReference(rel)

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil && req.Form != nil:
		return nil, errors.New("request has both a JSON and a multipart body")
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, errors.Wrap(err, "encode json body")
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		buf, ct, err := encodeMultipart(req.Form)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	requestID := deliverycontext.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(deliverycontext.HeaderXRequestID, requestID)

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	// Explicit headers win over everything set above.
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	return httpReq, nil
}

func encodeMultipart(form *service.MultipartForm) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	for _, field := range form.Fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", field.Name)
		}
	}

	for _, file := range form.Files {
		part, err := w.CreatePart(filePartHeader(file))
		if err != nil {
			return nil, "", errors.Wrapf(err, "create file part %s", file.Field)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", errors.Wrapf(err, "copy file part %s", file.Field)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}

	return buf, w.FormDataContentType(), nil
}

func filePartHeader(file service.FormFile) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	escape := strings.NewReplacer(`\`, `\\`, `"`, `\"`)

	return textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="` + escape.Replace(file.Field) + `"; filename="` + escape.Replace(file.FileName) + `"`},
		"Content-Type":        {contentType},
	}
}
