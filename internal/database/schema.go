package database

import (
	"context"
	"fmt"
	"log"
)

const (
	channelIdeasChanged   = "ideas_changed"
	channelSessionChanged = "session_changed"
)

// CreateTables creates all necessary database tables and change triggers
func (db *DB) CreateTables(ctx context.Context) error {
	log.Println("Creating database tables...")

	sessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(100) PRIMARY KEY,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		access_code VARCHAR(32),
		context TEXT NOT NULL DEFAULT '',
		default_context TEXT NOT NULL DEFAULT '',
		selected_manual_idea_id VARCHAR(100),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_active ON sessions(is_active);
	`

	ideasTable := `
	CREATE TABLE IF NOT EXISTS ideas (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id VARCHAR(100) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		name VARCHAR(50) NOT NULL,
		content VARCHAR(500) NOT NULL,
		timestamp BIGINT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ideas_session_order ON ideas(session_id, timestamp ASC, id ASC);
	`

	codesTable := `
	CREATE TABLE IF NOT EXISTS session_codes (
		code VARCHAR(32) PRIMARY KEY,
		session_id VARCHAR(100) NOT NULL UNIQUE REFERENCES sessions(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);
	`

	reportsTable := `
	CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id VARCHAR(100) NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		idea_name TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		type VARCHAR(16) NOT NULL DEFAULT 'pdf',
		content TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_session_generated ON reports(session_id, generated_at DESC);
	`

	triggers := fmt.Sprintf(`
	CREATE OR REPLACE FUNCTION notify_ideas_changed() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('%[1]s', OLD.session_id);
		ELSE
			PERFORM pg_notify('%[1]s', NEW.session_id);
		END IF;
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS trg_ideas_changed ON ideas;
	CREATE TRIGGER trg_ideas_changed AFTER INSERT OR DELETE ON ideas
		FOR EACH ROW EXECUTE FUNCTION notify_ideas_changed();

	CREATE OR REPLACE FUNCTION notify_session_changed() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('%[2]s', NEW.id);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS trg_session_changed ON sessions;
	CREATE TRIGGER trg_session_changed AFTER INSERT OR UPDATE ON sessions
		FOR EACH ROW EXECUTE FUNCTION notify_session_changed();
	`, channelIdeasChanged, channelSessionChanged)

	statements := []string{sessionsTable, ideasTable, codesTable, reportsTable, triggers}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("✅ All tables created successfully")
	return nil
}
