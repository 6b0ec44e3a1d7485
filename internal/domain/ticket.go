package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. Both transitions
// (Open to Closed and back) are always permitted; there is no terminal state.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "Open"
	TicketStatusClosed TicketStatus = "Closed"
)

// ParseTicketStatus validates a raw status value.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusOpen, TicketStatusClosed:
		return TicketStatus(raw), true
	}
	return "", false
}

// TicketPriority enumerates assignment urgency. Unset until an admin
// assigns the ticket.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// ParseTicketPriority validates a raw priority value.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(raw), true
	}
	return "", false
}

// SLAHourOptions is the closed set of resolution windows an admin may
// attach at assignment time. Not enforced automatically.
var SLAHourOptions = []int{4, 8, 24, 48}

// ValidSLAHours reports whether hours is one of the allowed windows.
func ValidSLAHours(hours int) bool {
	for _, h := range SLAHourOptions {
		if h == hours {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for client-raised queries.
//
// DateClosed is non-nil iff Status is Closed. Priority, SLAHours and
// Assignees stay unset until an admin assigns the ticket; Comment is a
// single overwritten slot.
type Ticket struct {
	ID          int64
	ClientEmail string
	ClientMob   string
	Heading     string
	Description string
	Status      TicketStatus
	DateRaised  time.Time
	DateClosed  *time.Time
	Priority    *TicketPriority
	SLAHours    *int
	Assignees   []string
	Comment     *string
}

// AssignedTo renders the assignee set in its legacy comma-joined form.
func (t *Ticket) AssignedTo() string {
	return strings.Join(t.Assignees, ",")
}

// IsAssignedTo reports exact membership of username in the assignee set.
func (t *Ticket) IsAssignedTo(username string) bool {
	normalized := NormalizeUsername(username)
	for _, a := range t.Assignees {
		if a == normalized {
			return true
		}
	}
	return false
}
