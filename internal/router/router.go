package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/educonnect-api/internal/config"
	"github.com/noah-isme/educonnect-api/internal/handler"
	"github.com/noah-isme/educonnect-api/internal/middleware"
	"github.com/noah-isme/educonnect-api/internal/models"
	"github.com/noah-isme/educonnect-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	PaperHandler      *handler.PaperHandler
	SubmissionHandler *handler.SubmissionHandler
	FileHandler       *handler.FileHandler
	DashboardHandler  *handler.DashboardHandler
	ActivityHandler   *handler.ActivityHandler
	ProfileHandler    *handler.ProfileHandler
	JWTMiddleware     fiber.Handler
	LoginLimiter      fiber.Handler
	HealthProbes      map[string]handler.HealthProbe
	EnableMetrics     bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.EnableMetrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.LoginLimiter != nil {
			deps.AuthHandler.Register(auth, deps.LoginLimiter)
		} else {
			deps.AuthHandler.Register(auth)
		}
	}

	if deps.PaperHandler != nil {
		papers := api.Group("/papers", jwtMiddleware)
		deps.PaperHandler.Register(papers)
		deps.PaperHandler.RegisterManagement(papers, teacherOnly)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.RegisterStudent(submissions, studentOnly)
		deps.SubmissionHandler.RegisterReport(submissions)
		deps.SubmissionHandler.RegisterTeacher(submissions, teacherOnly)
	}

	if deps.FileHandler != nil {
		deps.FileHandler.Register(api.Group("/files", jwtMiddleware))
	}

	if deps.DashboardHandler != nil || deps.ActivityHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, teacherOnly)
		if deps.DashboardHandler != nil {
			deps.DashboardHandler.RegisterTeacher(teacher)
		}
		if deps.ActivityHandler != nil {
			deps.ActivityHandler.Register(teacher)
		}
	}

	if deps.DashboardHandler != nil {
		student := api.Group("/student", jwtMiddleware, studentOnly)
		deps.DashboardHandler.RegisterStudent(student)
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/profile", jwtMiddleware))
	}
}
