package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/device-cost-service/internal/api/http/handlers"
	"github.com/spec-kit/device-cost-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Share          *handlers.ShareHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	products := app.Group("/products", cfg.AuthMiddleware.Handle)
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Patch("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)
	products.Post("/:id/tags", cfg.Products.AddTag)

	share := app.Group("/share", cfg.AuthMiddleware.Handle)
	share.Get("/summary", cfg.Share.Summary)
	share.Get("/image", cfg.Share.Image)
	share.Post("/image/publish", cfg.Share.Publish)
}
