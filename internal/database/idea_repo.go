package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shubh-37/idea-processor/internal/models"
)

type IdeaRepository struct {
	db *DB
}

func NewIdeaRepository(db *DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

// Create inserts a new idea under a session and returns its id
func (r *IdeaRepository) Create(ctx context.Context, sessionID string, idea *models.Idea) error {
	idea.ID = uuid.New().String()

	if idea.Timestamp == 0 {
		idea.Timestamp = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO ideas (id, session_id, name, content, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		idea.ID,
		sessionID,
		idea.Name,
		idea.Content,
		idea.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}

	return nil
}

// ListBySession returns ideas ordered by timestamp, ties broken by id
func (r *IdeaRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Idea, error) {
	query := `
		SELECT id::text, name, content, timestamp
		FROM ideas
		WHERE session_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	ideas := []models.Idea{}
	for rows.Next() {
		var idea models.Idea
		if err := rows.Scan(&idea.ID, &idea.Name, &idea.Content, &idea.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ideas: %w", err)
	}

	// uuid byte order and text order differ; keep the tiebreak consistent with the memory store
	models.SortIdeas(ideas)
	return ideas, nil
}

// DeleteBySession removes every idea of a session
func (r *IdeaRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM ideas WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ideas: %w", err)
	}
	return result.RowsAffected(), nil
}

// Count returns the number of ideas in a session
func (r *IdeaRepository) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ideas WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ideas: %w", err)
	}
	return count, nil
}
