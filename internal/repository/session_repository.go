package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/query-service/internal/domain"
)

// SessionRepository persists the login-time ledger.
type SessionRepository interface {
	Open(ctx context.Context, username string, loginAt time.Time) (*domain.SessionRecord, error)
	// CloseLatestOpen stamps the logout time on the newest open record
	// for username. It reports false when no open record exists; that
	// is not an error.
	CloseLatestOpen(ctx context.Context, username string, logoutAt time.Time) (bool, error)
	ListAll(ctx context.Context) ([]domain.SessionRecord, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.SessionRecord, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Open(ctx context.Context, username string, loginAt time.Time) (*domain.SessionRecord, error) {
	const query = `
        INSERT INTO support_activities (username, login_time)
        VALUES ($1,$2)
        RETURNING id`

	record := &domain.SessionRecord{Username: username, LoginTime: loginAt}
	if err := r.pool.QueryRow(ctx, query, username, loginAt).Scan(&record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *sessionRepository) CloseLatestOpen(ctx context.Context, username string, logoutAt time.Time) (bool, error) {
	const query = `
        UPDATE support_activities SET logout_time=$1
        WHERE id = (
            SELECT id FROM support_activities
            WHERE username=$2 AND logout_time IS NULL
            ORDER BY login_time DESC
            LIMIT 1
        )`

	cmd, err := r.pool.Exec(ctx, query, logoutAt, username)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *sessionRepository) ListAll(ctx context.Context) ([]domain.SessionRecord, error) {
	const query = `
        SELECT id, username, login_time, logout_time
        FROM support_activities
        ORDER BY login_time`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListBetween returns records whose login time falls inside [from, to).
func (r *sessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.SessionRecord, error) {
	const query = `
        SELECT id, username, login_time, logout_time
        FROM support_activities
        WHERE login_time >= $1 AND login_time < $2
        ORDER BY login_time`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]domain.SessionRecord, error) {
	var result []domain.SessionRecord
	for rows.Next() {
		var record domain.SessionRecord
		if err := rows.Scan(
			&record.ID,
			&record.Username,
			&record.LoginTime,
			&record.LogoutTime,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
