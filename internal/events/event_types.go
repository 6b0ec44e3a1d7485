package events

import (
	"time"

	"github.com/helpdesk-kit/query-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommented     EventType = "ticket_commented"
)

// Actor identifies who triggered an event. Username may be empty for
// unauthenticated paths such as client ticket submission forms.
type Actor struct {
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClientEmail string `json:"client_email"`
	Heading     string `json:"heading"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignees []string              `json:"assignees"`
	Priority  domain.TicketPriority `json:"priority"`
	SLAHours  int                   `json:"sla_hours"`
}

// TicketCommentedPayload carries the comment author. The author is not
// persisted on the ticket; the event stream is the only place it
// appears.
type TicketCommentedPayload struct {
	Author      string `json:"author"`
	NotePreview string `json:"note_preview"`
}
