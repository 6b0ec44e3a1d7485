package auth

import "github.com/helpdesk-kit/query-service/internal/domain"

// Action names a service operation subject to role authorization.
type Action string

const (
	ActionCreateTicket     Action = "ticket.create"
	ActionListAllTickets   Action = "ticket.list_all"
	ActionUpdateTicket     Action = "ticket.update"
	ActionUpdateStatus     Action = "ticket.update_status"
	ActionAddComment       Action = "ticket.add_comment"
	ActionBulkAssign       Action = "ticket.bulk_assign"
	ActionListAssignedOpen Action = "ticket.list_assigned_open"
	ActionTicketAnalytics  Action = "analytics.tickets"
	ActionLoginAnalytics   Action = "analytics.logins"
)

// policy is the single source of role authorization. The core services
// perform no role checks of their own; every HTTP route consults this
// table before invoking a service operation.
var policy = map[Action][]domain.Role{
	ActionCreateTicket:     {domain.RoleClient},
	ActionListAllTickets:   {domain.RoleSupport, domain.RoleAdmin},
	ActionUpdateTicket:     {domain.RoleAdmin},
	ActionUpdateStatus:     {domain.RoleSupport},
	ActionAddComment:       {domain.RoleSupport},
	ActionBulkAssign:       {domain.RoleAdmin},
	ActionListAssignedOpen: {domain.RoleSupport},
	ActionTicketAnalytics:  {domain.RoleSupport, domain.RoleAdmin},
	ActionLoginAnalytics:   {domain.RoleAdmin},
}

// Allowed reports whether role may perform action.
func Allowed(role domain.Role, action Action) bool {
	for _, allowed := range policy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
