package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shubh-37/idea-processor/internal/models"
)

type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create stores an encoded report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	if report.Type == "" {
		report.Type = models.ReportTypePDF
	}

	query := `
		INSERT INTO reports (id, session_id, name, idea_name, generated_at, type, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		report.ID,
		report.SessionID,
		report.Name,
		report.IdeaName,
		report.GeneratedAt,
		report.Type,
		report.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// ListBySession returns a session's reports, newest first
func (r *ReportRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Report, error) {
	query := `
		SELECT id::text, session_id, name, idea_name, generated_at, type, content
		FROM reports
		WHERE session_id = $1
		ORDER BY generated_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID,
			&report.SessionID,
			&report.Name,
			&report.IdeaName,
			&report.GeneratedAt,
			&report.Type,
			&report.Content,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
