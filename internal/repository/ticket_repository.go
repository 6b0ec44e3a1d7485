package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/query-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Assignment is a
// set-valued association (query_assignees join table) with
// exact-membership lookups; Assign replaces the whole set for one
// ticket inside a single transaction.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	UpdateDetails(ctx context.Context, id int64, email, mobile, heading, description string, status domain.TicketStatus, closedAt *time.Time) error
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus, closedAt *time.Time) error
	UpdateComment(ctx context.Context, id int64, note string) error
	Assign(ctx context.Context, id int64, assignees []string, priority domain.TicketPriority, slaHours int) error
	ListAssignedOpen(ctx context.Context, username string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `q.id, q.client_email, q.client_mobile, q.query_heading, q.query_description,
               q.status, q.date_raised, q.date_closed, q.priority, q.sla_hours, q.comments`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO queries (client_email, client_mobile, query_heading, query_description, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, date_raised`
	return r.pool.QueryRow(ctx, query,
		ticket.ClientEmail,
		ticket.ClientMob,
		ticket.Heading,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.DateRaised)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM queries q WHERE q.id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ClientEmail,
		&ticket.ClientMob,
		&ticket.Heading,
		&ticket.Description,
		&ticket.Status,
		&ticket.DateRaised,
		&ticket.DateClosed,
		&ticket.Priority,
		&ticket.SLAHours,
		&ticket.Comment,
	); err != nil {
		return nil, err
	}
	if err := r.loadAssignees(ctx, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM queries q ORDER BY q.date_raised DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	return r.attachAssignees(ctx, tickets)
}

func (r *ticketRepository) UpdateDetails(ctx context.Context, id int64, email, mobile, heading, description string, status domain.TicketStatus, closedAt *time.Time) error {
	const query = `
        UPDATE queries
        SET client_email=$1, client_mobile=$2, query_heading=$3, query_description=$4,
            status=$5, date_closed=$6
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query, email, mobile, heading, description, status, closedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus, closedAt *time.Time) error {
	const query = `UPDATE queries SET status=$1, date_closed=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, closedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateComment(ctx context.Context, id int64, note string) error {
	const query = `UPDATE queries SET comments=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, note, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Assign replaces the assignee set and sets priority and SLA for one
// ticket. The caller drives the per-ticket loop; there is deliberately
// no cross-ticket transaction.
func (r *ticketRepository) Assign(ctx context.Context, id int64, assignees []string, priority domain.TicketPriority, slaHours int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE queries SET priority=$1, sla_hours=$2 WHERE id=$3`, priority, slaHours, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM query_assignees WHERE query_id=$1`, id); err != nil {
		return err
	}
	for _, username := range assignees {
		if _, err := tx.Exec(ctx,
			`INSERT INTO query_assignees (query_id, username) VALUES ($1,$2)`, id, username); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) ListAssignedOpen(ctx context.Context, username string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM queries q
        JOIN query_assignees a ON a.query_id = q.id
        WHERE a.username=$1 AND q.status=$2
        ORDER BY q.date_raised DESC`

	rows, err := r.pool.Query(ctx, query, username, domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	return r.attachAssignees(ctx, tickets)
}

func (r *ticketRepository) loadAssignees(ctx context.Context, ticket *domain.Ticket) error {
	rows, err := r.pool.Query(ctx,
		`SELECT username FROM query_assignees WHERE query_id=$1 ORDER BY username`, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return err
		}
		ticket.Assignees = append(ticket.Assignees, username)
	}
	return rows.Err()
}

func (r *ticketRepository) attachAssignees(ctx context.Context, tickets []domain.Ticket) ([]domain.Ticket, error) {
	for i := range tickets {
		if err := r.loadAssignees(ctx, &tickets[i]); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ClientEmail,
			&ticket.ClientMob,
			&ticket.Heading,
			&ticket.Description,
			&ticket.Status,
			&ticket.DateRaised,
			&ticket.DateClosed,
			&ticket.Priority,
			&ticket.SLAHours,
			&ticket.Comment,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
