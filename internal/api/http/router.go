package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/missing-persons-service/internal/api/http/handlers"
	"github.com/spec-kit/missing-persons-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Persons        *handlers.PersonsHandler
	Stories        *handlers.StoriesHandler
	Statistics     *handlers.StatisticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/register", cfg.Users.Register)
	api.Post("/login", cfg.Users.Login)
	api.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)
	api.Get("/user", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	api.Get("/missing-persons", cfg.Persons.Search)
	api.Get("/missing-persons/:id", cfg.Persons.Get)
	api.Post("/missing-persons", cfg.AuthMiddleware.Handle, cfg.Persons.Create)
	api.Put("/missing-persons/:id", cfg.AuthMiddleware.Handle, cfg.Persons.Update)

	api.Get("/success-stories", cfg.Stories.List)
	api.Post("/success-stories", cfg.AuthMiddleware.Handle, cfg.Stories.Create)

	api.Get("/statistics", cfg.Statistics.Get)
}
