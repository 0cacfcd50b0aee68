package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on startup when they do not exist yet.
// Deleting a user cascades to that user's notes so no note is ever orphaned.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id           BIGSERIAL PRIMARY KEY,
			content      TEXT NOT NULL,
			subject      TEXT NOT NULL DEFAULT '',
			qr_code_data TEXT NOT NULL DEFAULT '',
			user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   TIMESTAMPTZ NOT NULL,
			file_name    TEXT,
			file_data    BYTEA,
			CONSTRAINT notes_attachment_unit CHECK (
				(file_name IS NULL AND file_data IS NULL) OR
				(file_name IS NOT NULL AND file_data IS NOT NULL)
			)
		)`,
		`CREATE INDEX IF NOT EXISTS notes_user_created_idx
			ON notes (user_id, created_at ASC, id ASC)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
