package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/api/http/handlers"
	"github.com/iridescentding/memoq-tickets-system/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Users         *handlers.UsersHandler
	Tickets       *handlers.TicketsHandler
	Monitoring    *handlers.MonitoringHandler
	Notifications *handlers.NotificationsHandler
	Attachments   *handlers.AttachmentsHandler
	Authenticate  fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)
	app.Post("/auth/register", cfg.Users.Register)
	app.Get("/auth/me", cfg.Authenticate, cfg.Users.Me)

	tickets := app.Group("/tickets", cfg.Authenticate)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/pending-assignment", auth.RequireAdminCapable(), cfg.Tickets.PendingAssignment)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/assign", auth.RequireAdminCapable(), cfg.Tickets.Assign)
	tickets.Post("/:id/transfer", auth.RequireSupportCapable(), cfg.Tickets.Transfer)
	tickets.Post("/:id/replies", cfg.Tickets.Reply)
	tickets.Get("/:id/replies", cfg.Tickets.Replies)
	tickets.Post("/:id/pause", cfg.Tickets.Pause)
	tickets.Post("/:id/resume", cfg.Tickets.Resume)
	tickets.Post("/:id/status", auth.RequireSupportCapable(), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/rating", cfg.Tickets.Rate)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/attachments", cfg.Attachments.Upload)
	tickets.Get("/:id/notifications", auth.RequireSupportCapable(), cfg.Notifications.LogsByTicket)

	monitoring := app.Group("/monitoring", cfg.Authenticate, auth.RequireAdminCapable())
	monitoring.Get("/sla/ir", cfg.Monitoring.IRReport)
	monitoring.Get("/sla/resolution", cfg.Monitoring.ResolutionReport)
	monitoring.Get("/idle", cfg.Monitoring.Idle)
	monitoring.Post("/scan", cfg.Monitoring.Scan)

	app.Get("/notifications/templates", cfg.Authenticate, auth.RequireAdminCapable(), cfg.Notifications.ListTemplates)
}
