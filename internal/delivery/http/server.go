// Package http hosts the local echo server the checkout widget posts back to.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"pickup/internal/delivery/http/middleware"
	"pickup/internal/domain/lifecycle"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// Server is a short-lived echo server bound to a local port.
type Server struct {
	logger *slog.Logger
	server *echo.Echo
}

// NewServer creates the server with request ids, request logging and
// AppError mapping installed.
func NewServer(logger *slog.Logger, debug bool) *Server {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.NewRequestIDMiddleware(logger).Process)
	echoServer.Use(middleware.NewLoggerMiddleware(logger, debug).Handle)

	return &Server{
		logger: logger,
		server: echoServer,
	}
}

// Echo exposes the router for route registration.
func (s *Server) Echo() *echo.Echo {
	return s.server
}

// Start listens on host:port (port 0 picks a free one) and serves in the
// background. It returns the base URL, e.g. http://127.0.0.1:53121.
func (s *Server) Start(host string, port int) (string, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return "", errors.Wrap(err, "listen for checkout callbacks")
	}
	s.server.Listener = listener

	go func() {
		if err := s.server.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Checkout server stopped", slog.Any("error", err))
		}
	}()

	addr := listener.Addr().String()
	s.logger.Debug("Started checkout server", slog.String("addr", addr))

	return "http://" + addr, nil
}

// Stop shuts the server down, waiting at most lifecycle.DefaultTimeout.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Debug("Shutting down checkout server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
