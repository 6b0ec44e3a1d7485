package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/query-service/internal/domain"
	"github.com/helpdesk-kit/query-service/internal/events"
	"github.com/helpdesk-kit/query-service/internal/repository"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// TicketService coordinates the ticket lifecycle. It performs no role
// authorization; that is entirely the transport layer's job, and every
// operation here works the same regardless of who invokes it.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Create inserts a new Open ticket with no priority, SLA, assignment
// or comment. Non-empty validation of the four fields is the caller's
// responsibility.
func (s *TicketService) Create(ctx context.Context, email, mobile, heading, description string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ClientEmail: email,
		ClientMob:   mobile,
		Heading:     heading,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ClientEmail: ticket.ClientEmail,
			Heading:     ticket.Heading,
		},
	})
	return ticket, nil
}

// ListAll returns every ticket, newest raised first. No pagination.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Update overwrites the ticket's five mutable detail fields. The
// closed timestamp follows the status on EVERY call: Closed stamps it
// with now, Open clears it even when the ticket was already Open.
func (s *TicketService) Update(ctx context.Context, actor events.Actor, id int64, email, mobile, heading, description string, status domain.TicketStatus) error {
	previous, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return s.mapTicketErr(err, id)
	}

	closedAt := s.closedTimestamp(status)
	if err := s.tickets.UpdateDetails(ctx, id, email, mobile, heading, description, status, closedAt); err != nil {
		return s.mapTicketErr(err, id)
	}

	if previous.Status != status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: id,
			Actor:    actor,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: previous.Status,
				NewStatus: status,
			},
		})
	}
	return nil
}

// UpdateStatus changes only status and the closed timestamp. Both
// directions are always allowed; reopening clears the timestamp.
func (s *TicketService) UpdateStatus(ctx context.Context, actor events.Actor, id int64, status domain.TicketStatus) error {
	previous, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return s.mapTicketErr(err, id)
	}

	closedAt := s.closedTimestamp(status)
	if err := s.tickets.UpdateStatus(ctx, id, status, closedAt); err != nil {
		return s.mapTicketErr(err, id)
	}

	if previous.Status != status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: id,
			Actor:    actor,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: previous.Status,
				NewStatus: status,
			},
		})
	}
	return nil
}

// AddComment overwrites the ticket's single work-note slot; last
// writer wins and no history is kept. The author travels on the
// emitted event only, never into the store.
func (s *TicketService) AddComment(ctx context.Context, id int64, note, author string) error {
	if err := s.tickets.UpdateComment(ctx, id, note); err != nil {
		return s.mapTicketErr(err, id)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: id,
		Actor:    events.Actor{Username: author, Role: domain.RoleSupport},
		Payload: events.TicketCommentedPayload{
			Author:      author,
			NotePreview: notePreview(note, 120),
		},
	})
	return nil
}

// BulkAssign sets the same priority, SLA window and assignee set on
// every ticket in ids. The assignee set REPLACES any prior assignment.
// Each ticket commits in its own transaction: a failure partway leaves
// the earlier tickets assigned and reports which ticket failed.
func (s *TicketService) BulkAssign(ctx context.Context, actor events.Actor, ids []int64, assignees []string, priority domain.TicketPriority, slaHours int) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("at least one ticket id required", nil)
	}
	if len(assignees) == 0 {
		return apperrors.NewValidationError("at least one assignee required", nil)
	}
	if _, ok := domain.ParseTicketPriority(string(priority)); !ok {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	if !domain.ValidSLAHours(slaHours) {
		return apperrors.NewValidationError("invalid sla hours", map[string]any{"sla_hours": slaHours})
	}

	normalized := normalizeAssignees(assignees)

	for _, id := range ids {
		if err := s.tickets.Assign(ctx, id, normalized, priority, slaHours); err != nil {
			mapped := s.mapTicketErr(err, id)
			return fmt.Errorf("assign ticket %d: %w", id, mapped)
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: id,
			Actor:    actor,
			Payload: events.TicketAssignedPayload{
				Assignees: normalized,
				Priority:  priority,
				SLAHours:  slaHours,
			},
		})
	}
	return nil
}

// ListAssignedOpen returns the Open tickets whose assignee set
// contains exactly the normalized username. The legacy system matched
// assignees by substring, so BOB also saw BOBBY's tickets; this
// implementation matches set membership instead.
func (s *TicketService) ListAssignedOpen(ctx context.Context, username string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAssignedOpen(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// closedTimestamp returns now for a Closed status and nil otherwise.
func (s *TicketService) closedTimestamp(status domain.TicketStatus) *time.Time {
	if status != domain.TicketStatusClosed {
		return nil
	}
	now := s.now()
	return &now
}

func (s *TicketService) mapTicketErr(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeAssignees(assignees []string) []string {
	seen := make(map[string]struct{}, len(assignees))
	result := make([]string, 0, len(assignees))
	for _, raw := range assignees {
		username := domain.NormalizeUsername(raw)
		if username == "" {
			continue
		}
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}
		result = append(result, username)
	}
	return result
}

func notePreview(note string, max int) string {
	note = strings.TrimSpace(note)
	if len(note) <= max {
		return note
	}
	if max <= 3 {
		return note[:max]
	}
	return note[:max-3] + "..."
}
