package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shubh-37/idea-processor/internal/store"
)

type CodeRepository struct {
	db *DB
}

func NewCodeRepository(db *DB) *CodeRepository {
	return &CodeRepository{db: db}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves an access code to its session id
func (r *CodeRepository) Lookup(ctx context.Context, code string) (string, error) {
	var sessionID string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT session_id FROM session_codes WHERE code = $1`,
		normalizeCode(code),
	).Scan(&sessionID)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up code: %w", err)
	}
	return sessionID, nil
}

// Assign releases the session's previous code and claims code for it
func (r *CodeRepository) Assign(ctx context.Context, sessionID, code string) error {
	code = normalizeCode(code)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, sessionID); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM session_codes WHERE session_id = $1 AND code <> $2`, sessionID, code); err != nil {
		return fmt.Errorf("failed to release code: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO session_codes (code, session_id) VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
	`, code, sessionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.ErrCodeTaken
		}
		return fmt.Errorf("failed to claim code: %w", err)
	}

	var owner string
	if err := tx.QueryRow(ctx, `SELECT session_id FROM session_codes WHERE code = $1`, code).Scan(&owner); err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if owner != sessionID {
		return store.ErrCodeTaken
	}

	if _, err := tx.Exec(ctx, `UPDATE sessions SET access_code = $2, updated_at = NOW() WHERE id = $1`, sessionID, code); err != nil {
		return fmt.Errorf("failed to update session code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit code assignment: %w", err)
	}
	return nil
}
