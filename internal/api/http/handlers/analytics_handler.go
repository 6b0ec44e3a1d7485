package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/query-service/internal/api/dto"
	"github.com/helpdesk-kit/query-service/internal/service"
)

// AnalyticsHandler exposes the derived dashboard views. All routes are
// pure reads.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	tickets   *service.TicketService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, tickets *service.TicketService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, tickets: tickets}
}

// TicketStats GET /analytics/tickets. Monthly volume plus status mix
// over the full ticket set.
func (h *AnalyticsHandler) TicketStats(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListAll(c.UserContext())
	if err != nil {
		return err
	}

	monthly := h.analytics.MonthlyTicketCounts(tickets)
	monthlyResp := make([]dto.MonthlyCountResponse, 0, len(monthly))
	for _, bucket := range monthly {
		monthlyResp = append(monthlyResp, dto.MonthlyCountResponse{
			Month: bucket.Month.Format("2006-01"),
			Count: bucket.Count,
		})
	}

	split := make(map[string]int)
	for status, count := range h.analytics.StatusSplit(tickets) {
		split[string(status)] = count
	}

	return c.JSON(fiber.Map{"data": dto.TicketAnalyticsResponse{
		Total:       len(tickets),
		Monthly:     monthlyResp,
		StatusSplit: split,
	}})
}

// DailyLogins GET /analytics/logins/daily. Per-user, per-day session
// totals; open sessions count up to the moment of the query.
func (h *AnalyticsHandler) DailyLogins(c *fiber.Ctx) error {
	totals, err := h.analytics.DailyLoginTotals(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.DailyLoginResponse, 0, len(totals))
	for _, total := range totals {
		items = append(items, dto.DailyLoginResponse{
			Username: total.Username,
			Day:      total.Day.Format("2006-01-02"),
			Seconds:  total.Seconds,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// WeeklyLogins GET /analytics/logins/weekly. Current Monday-Friday
// window summed per user.
func (h *AnalyticsHandler) WeeklyLogins(c *fiber.Ctx) error {
	totals, err := h.analytics.WeeklyLoginTotals(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.WeeklyLoginResponse, 0, len(totals))
	for _, total := range totals {
		items = append(items, dto.WeeklyLoginResponse{
			Username:  total.Username,
			Seconds:   total.Seconds,
			Formatted: total.Formatted,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
