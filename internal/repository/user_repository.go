package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/query-service/internal/domain"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

const pgUniqueViolation = "23505"

// UserRepository defines persistence access for the credential store.
// Callers are expected to pass usernames already normalized.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameAndRole(ctx context.Context, username string, role domain.Role) (*domain.User, error)
	UpdatePassword(ctx context.Context, username, hashedPassword string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, hashed_password, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.HashedPassword,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.NewDuplicateUsername(user.Username)
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT id, username, hashed_password, role, created_at
        FROM users WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *userRepository) GetByUsernameAndRole(ctx context.Context, username string, role domain.Role) (*domain.User, error) {
	const query = `
        SELECT id, username, hashed_password, role, created_at
        FROM users WHERE username=$1 AND role=$2`
	return r.fetchSingle(ctx, query, username, role)
}

func (r *userRepository) UpdatePassword(ctx context.Context, username, hashedPassword string) error {
	const query = `UPDATE users SET hashed_password=$1 WHERE username=$2`

	cmd, err := r.pool.Exec(ctx, query, hashedPassword, username)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
