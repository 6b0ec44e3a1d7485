package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/query-service/internal/api/dto"
	"github.com/helpdesk-kit/query-service/internal/auth"
	"github.com/helpdesk-kit/query-service/internal/domain"
	"github.com/helpdesk-kit/query-service/internal/events"
	"github.com/helpdesk-kit/query-service/internal/service"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// TicketsHandler exposes the ticket lifecycle operations. Role checks
// happen in the route middleware via the policy table; nothing here or
// in the service re-derives them.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets. Client query submission; all four fields are
// required here, the service itself does not reject empty strings.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Mobile) == "" ||
		strings.TrimSpace(req.Heading) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("email, mobile, heading and description required", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), req.Email, req.Mobile, req.Heading, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /tickets. Every ticket, newest first, no pagination.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Update PUT /tickets/:id. Admin full-record overwrite.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseTicketStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}

	if err := h.service.Update(c.UserContext(), actorFromContext(c), id, req.Email, req.Mobile, req.Heading, req.Description, status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// UpdateStatus PATCH /tickets/:id/status. Support partial update.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseTicketStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}

	if err := h.service.UpdateStatus(c.UserContext(), actorFromContext(c), id, status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// AddComment PUT /tickets/:id/comment. Overwrites the single work-note
// slot; the author is the authenticated principal.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Note) == "" {
		return apperrors.NewValidationError("note required", nil)
	}

	author := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		author = principal.User.Username
	}
	if err := h.service.AddComment(c.UserContext(), id, req.Note, author); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"commented": true}})
}

// BulkAssign POST /tickets/assign. Applies one priority, SLA window
// and assignee set across every listed ticket.
func (h *TicketsHandler) BulkAssign(c *fiber.Ctx) error {
	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.service.BulkAssign(c.UserContext(), actorFromContext(c), req.TicketIDs, req.Assignees, domain.TicketPriority(req.Priority), req.SLAHours); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned": len(req.TicketIDs)}})
}

// ListAssignedOpen GET /tickets/assigned. Open tickets assigned to the
// authenticated support user.
func (h *TicketsHandler) ListAssignedOpen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListAssignedOpen(c.UserContext(), principal.User.Username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func actorFromContext(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.Actor{Username: principal.User.Username, Role: principal.User.Role}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:          ticket.ID,
		Email:       ticket.ClientEmail,
		Mobile:      ticket.ClientMob,
		Heading:     ticket.Heading,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		DateRaised:  ticket.DateRaised,
		DateClosed:  ticket.DateClosed,
		SLAHours:    ticket.SLAHours,
		Assignees:   ticket.Assignees,
		Comment:     ticket.Comment,
	}
	if ticket.Priority != nil {
		priority := string(*ticket.Priority)
		resp.Priority = &priority
	}
	if resp.Assignees == nil {
		resp.Assignees = []string{}
	}
	return resp
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}
