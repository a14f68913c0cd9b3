// Package router contains the routes of the checkout callback server.
package router

import (
	"pickup/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
)

// router holds all the handlers that need to be registered.
type router struct {
	checkoutHandler *handler.CheckoutHandler
}

// NewRouter is the constructor for the Router.
func NewRouter(checkoutHandler *handler.CheckoutHandler) *router {
	return &router{
		checkoutHandler: checkoutHandler,
	}
}

// RegisterRoutes sets up the checkout routes. Every route is scoped to the
// session id so only the link printed for this payment works.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	checkoutGroup := e.Group("/checkout/:session")
	{
		checkoutGroup.GET("", r.checkoutHandler.Page)
		checkoutGroup.POST("/complete", r.checkoutHandler.Complete)
		checkoutGroup.POST("/failed", r.checkoutHandler.Failed)
		checkoutGroup.POST("/dismiss", r.checkoutHandler.Dismiss)
	}
}
