package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coachdesk-api/internal/config"
	"github.com/noah-isme/coachdesk-api/internal/handler"
	"github.com/noah-isme/coachdesk-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ProfileHandler    *handler.ProfileHandler
	DashboardHandler  *handler.DashboardHandler
	JourneyHandler    *handler.JourneyHandler
	CourseHandler     *handler.CourseHandler
	TaskHandler       *handler.TaskHandler
	RubricHandler     *handler.RubricHandler
	GradingHandler    *handler.GradingHandler
	AttachmentHandler *handler.AttachmentHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := api.Group("", jwtMiddleware)

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(protected.Group("/profile"))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(protected.Group("/dashboard"))
	}

	if deps.JourneyHandler != nil {
		deps.JourneyHandler.Register(protected.Group("/journeys"))
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(protected.Group("/courses"))
	}

	// Tasks share one group between detail, rubric, and grading routes.
	tasks := protected.Group("/tasks")
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(tasks)
	}
	if deps.RubricHandler != nil {
		deps.RubricHandler.Register(tasks)
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(tasks)
	}

	if deps.AttachmentHandler != nil {
		deps.AttachmentHandler.Register(protected.Group("/files"))
	}
}
