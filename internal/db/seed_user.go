package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/security"
)

// EnsureSeedUser creates a bootstrap account from env config so a fresh
// deployment has someone to log in as. A no-op when SEED_USER_* is unset
// or the email already exists.
func EnsureSeedUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1,$2,$3,$4)
		`,
		cfg.SeedName, cfg.SeedEmail, hash, time.Now().UTC(),
	)

	return err
}
