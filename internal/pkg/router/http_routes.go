package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/LinkFox/app/controllers"
	"github.com/ManuelReschke/LinkFox/internal/pkg/env"
	"github.com/ManuelReschke/LinkFox/internal/pkg/middleware"
)

func (h HttpRouter) registerAuthRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Post("/login", controllers.HandleAuthLogin)
	group.Post("/register", controllers.HandleAuthRegister)
	group.Post("/logout", controllers.HandleAuthLogout)
}

func (h HttpRouter) registerAccountRoutes(app *fiber.App) {
	accounts := app.Group("/accounts", middleware.RequireAuth)
	accounts.Get("/", controllers.HandleAccountList)
	accounts.Get("/new/:provider", controllers.HandleAccountNew)
	// Provider callbacks arrive as plain GET redirects from the provider
	accounts.Get("/new/:provider/callback", controllers.HandleAccountCallback)
}
