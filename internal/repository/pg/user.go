package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type UserPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateUserTable() string {
	return `CREATE TABLE IF NOT EXISTS users
(
	id UUID NOT NULL PRIMARY KEY,
	email VARCHAR(200) NOT NULL UNIQUE CHECK (email ~ '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+[.][A-Za-z]+$'),
	password_hash VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
}

func (u *UserPostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.pool.QueryRow(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = $1", email)
	user := domain.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (u *UserPostgresRepository) Insert(ctx context.Context, user *domain.User) error {
	cmd, err := u.pool.Exec(ctx, "INSERT INTO users(id, email, password_hash, created_at) VALUES($1, $2, $3, $4)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("RowsAffected() = %d", cmd.RowsAffected())
	}
	return nil
}

func NewUserPostgresRepository(pool *pgxpool.Pool) *UserPostgresRepository {
	return &UserPostgresRepository{
		pool: pool,
	}
}
