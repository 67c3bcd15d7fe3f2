// Package pg implements the row store on PostgreSQL through a pgx pool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Connect opens a pool against databaseURL and creates the tables.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := CreateTables(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func CreateTables(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		CreateMediaTable(),
		CreateUserTable(),
		CreateVisitTable(),
	}
	for _, q := range queries {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
