package dto

import "time"

// CreateTicketRequest payload for client query submission. All four
// fields are required; the handler rejects empty values before the
// service is called.
type CreateTicketRequest struct {
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

// UpdateTicketRequest payload for the admin full-record overwrite.
type UpdateTicketRequest struct {
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateStatusRequest payload for the support partial update.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AddCommentRequest payload for the single-slot work note.
type AddCommentRequest struct {
	Note string `json:"note"`
}

// BulkAssignRequest payload applying one assignment to many tickets.
type BulkAssignRequest struct {
	TicketIDs []int64  `json:"ticket_ids"`
	Assignees []string `json:"assignees"`
	Priority  string   `json:"priority"`
	SLAHours  int      `json:"sla_hours"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Mobile      string     `json:"mobile"`
	Heading     string     `json:"heading"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DateRaised  time.Time  `json:"date_raised"`
	DateClosed  *time.Time `json:"date_closed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	SLAHours    *int       `json:"sla_hours,omitempty"`
	Assignees   []string   `json:"assignees"`
	Comment     *string    `json:"comment,omitempty"`
}
