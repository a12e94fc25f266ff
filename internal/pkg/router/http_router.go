package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LinkFox/app/controllers"
	"github.com/ManuelReschke/LinkFox/internal/pkg/middleware"
	"github.com/ManuelReschke/LinkFox/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize the account controller with the linking service
	controllers.InitializeAccountController()

	h.registerAuthRoutes(app)
	h.registerAccountRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
