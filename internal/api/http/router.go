package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/query-service/internal/api/http/handlers"
	"github.com/helpdesk-kit/query-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every protected route names the
// action it performs; the policy table decides which roles may pass.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Logout)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", auth.RequireAction(auth.ActionCreateTicket), cfg.Tickets.Create)
	tickets.Get("", auth.RequireAction(auth.ActionListAllTickets), cfg.Tickets.List)
	tickets.Get("/assigned", auth.RequireAction(auth.ActionListAssignedOpen), cfg.Tickets.ListAssignedOpen)
	tickets.Post("/assign", auth.RequireAction(auth.ActionBulkAssign), cfg.Tickets.BulkAssign)
	tickets.Put("/:id", auth.RequireAction(auth.ActionUpdateTicket), cfg.Tickets.Update)
	tickets.Patch("/:id/status", auth.RequireAction(auth.ActionUpdateStatus), cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/comment", auth.RequireAction(auth.ActionAddComment), cfg.Tickets.AddComment)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle)
	analytics.Get("/tickets", auth.RequireAction(auth.ActionTicketAnalytics), cfg.Analytics.TicketStats)
	analytics.Get("/logins/daily", auth.RequireAction(auth.ActionLoginAnalytics), cfg.Analytics.DailyLogins)
	analytics.Get("/logins/weekly", auth.RequireAction(auth.ActionLoginAnalytics), cfg.Analytics.WeeklyLogins)
}
