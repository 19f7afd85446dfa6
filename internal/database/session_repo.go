package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, is_active, COALESCE(access_code, ''), context, default_context,
	COALESCE(selected_manual_idea_id, ''), updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID,
		&s.IsActive,
		&s.AccessCode,
		&s.Context,
		&s.DefaultContext,
		&s.SelectedManualIdeaID,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// Ensure creates the session row if it does not exist and returns it
func (r *SessionRepository) Ensure(ctx context.Context, id string) (*models.Session, error) {
	query := `INSERT INTO sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return nil, fmt.Errorf("failed to ensure session: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update merges the non-nil patch fields into the session row
func (r *SessionRepository) Update(ctx context.Context, id string, patch models.SessionPatch) error {
	if _, err := r.Ensure(ctx, id); err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET is_active = COALESCE($2, is_active),
		    context = COALESCE($3, context),
		    default_context = COALESCE($4, default_context),
		    selected_manual_idea_id = CASE WHEN $5::boolean THEN NULLIF($6::text, '') ELSE selected_manual_idea_id END,
		    updated_at = NOW()
		WHERE id = $1
	`

	var selected string
	if patch.SelectedManualIdeaID != nil {
		selected = *patch.SelectedManualIdeaID
	}

	result, err := r.db.Pool.Exec(ctx, query,
		id,
		patch.IsActive,
		patch.Context,
		patch.DefaultContext,
		patch.SelectedManualIdeaID != nil,
		selected,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// FindActive returns one session with is_active = true
func (r *SessionRepository) FindActive(ctx context.Context) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE is_active = TRUE ORDER BY updated_at DESC LIMIT 1`

	s, err := scanSession(r.db.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find active session: %w", err)
	}
	return s, nil
}
