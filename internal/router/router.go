package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classroom-go-api/internal/config"
	gql "github.com/noah-isme/classroom-go-api/internal/graphql"
	"github.com/noah-isme/classroom-go-api/internal/handler"
	"github.com/noah-isme/classroom-go-api/internal/middleware"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GraphQLHandler    *gql.Handler
	JWTMiddleware     fiber.Handler
	JWTOptional       fiber.Handler
	AuthRateLimit     fiber.Handler
	APIRateLimit      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	noop := func(c *fiber.Ctx) error { return c.Next() }

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = noop
	}
	jwtOptional := deps.JWTOptional
	if jwtOptional == nil {
		jwtOptional = noop
	}
	authRateLimit := deps.AuthRateLimit
	if authRateLimit == nil {
		authRateLimit = noop
	}
	apiRateLimit := deps.APIRateLimit
	if apiRateLimit == nil {
		apiRateLimit = noop
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", authRateLimit)
		deps.AuthHandler.Register(auth)
	}

	tutorOnly := middleware.RequireRole(models.RoleTutor)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", apiRateLimit, jwtMiddleware)

		// Submit and grade are fixed paths and must register ahead of the
		// parameterised assignment routes.
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assignments, tutorOnly, studentOnly)
		}

		deps.AssignmentHandler.Register(assignments, tutorOnly)
	}

	if deps.GraphQLHandler != nil {
		graphql := app.Group("", apiRateLimit, jwtOptional)
		deps.GraphQLHandler.Register(graphql)
	}
}
