package repository

import (
	"context"
	"database/sql"
	"errors"

	"tadreeb/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

// UserProfile holds only what the graph user node needs for edge anchoring.
type UserProfile struct {
	ID       uuid.UUID
	FullName string
	Email    string
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (UserProfile, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (UserProfile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT u.id, COALESCE(u.full_name, ''), COALESCE(u.email, '') FROM users u WHERE u.id = $1`,
		id,
	)
	var u UserProfile
	if err := row.Scan(&u.ID, &u.FullName, &u.Email); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return UserProfile{}, ErrUserNotFound
		}
		return UserProfile{}, err
	}
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
