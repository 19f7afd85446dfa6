package database

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
)

// Store implements store.Store on Postgres. Subscriptions LISTEN on
// channels fed by the triggers in CreateTables and re-query on each
// notification.
type Store struct {
	db       *DB
	sessions *SessionRepository
	ideas    *IdeaRepository
	codes    *CodeRepository
	reports  *ReportRepository
}

var _ store.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{
		db:       db,
		sessions: NewSessionRepository(db),
		ideas:    NewIdeaRepository(db),
		codes:    NewCodeRepository(db),
		reports:  NewReportRepository(db),
	}
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return session, store.Wrap("GetSession", id, err)
}

func (s *Store) EnsureSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.Ensure(ctx, id)
	return session, store.Wrap("EnsureSession", id, err)
}

func (s *Store) UpdateSession(ctx context.Context, id string, patch models.SessionPatch) error {
	return store.Wrap("UpdateSession", id, s.sessions.Update(ctx, id, patch))
}

func (s *Store) FindActiveSession(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.FindActive(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return session, store.Wrap("FindActiveSession", "", err)
}

func (s *Store) AddIdea(ctx context.Context, sessionID string, idea models.Idea) (string, error) {
	if err := s.ideas.Create(ctx, sessionID, &idea); err != nil {
		return "", store.Wrap("AddIdea", sessionID, err)
	}
	return idea.ID, nil
}

func (s *Store) ListIdeas(ctx context.Context, sessionID string) ([]models.Idea, error) {
	ideas, err := s.ideas.ListBySession(ctx, sessionID)
	return ideas, store.Wrap("ListIdeas", sessionID, err)
}

func (s *Store) DeleteIdeas(ctx context.Context, sessionID string) error {
	n, err := s.ideas.DeleteBySession(ctx, sessionID)
	if err != nil {
		return store.Wrap("DeleteIdeas", sessionID, err)
	}
	log.Printf("🧹 Deleted %d ideas from session %s", n, sessionID)
	return nil
}

func (s *Store) LookupCode(ctx context.Context, code string) (string, error) {
	id, err := s.codes.Lookup(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return id, store.Wrap("LookupCode", "", err)
}

func (s *Store) AssignCode(ctx context.Context, sessionID, code string) error {
	err := s.codes.Assign(ctx, sessionID, code)
	if errors.Is(err, store.ErrCodeTaken) {
		return err
	}
	return store.Wrap("AssignCode", sessionID, err)
}

func (s *Store) SaveReport(ctx context.Context, report *models.Report) (string, error) {
	if _, err := s.sessions.Ensure(ctx, report.SessionID); err != nil {
		return "", store.Wrap("SaveReport", report.SessionID, err)
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return "", store.Wrap("SaveReport", report.SessionID, err)
	}
	return report.ID, nil
}

func (s *Store) ListReports(ctx context.Context, sessionID string) ([]models.Report, error) {
	reports, err := s.reports.ListBySession(ctx, sessionID)
	return reports, store.Wrap("ListReports", sessionID, err)
}

func (s *Store) SubscribeIdeas(ctx context.Context, sessionID string, fn func([]models.Idea)) (store.Unsubscribe, error) {
	return s.subscribe(ctx, channelIdeasChanged, sessionID, func(ctx context.Context) error {
		ideas, err := s.ideas.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		fn(ideas)
		return nil
	})
}

func (s *Store) SubscribeSession(ctx context.Context, sessionID string, fn func(models.Session)) (store.Unsubscribe, error) {
	return s.subscribe(ctx, channelSessionChanged, sessionID, func(ctx context.Context) error {
		session, err := s.sessions.GetByID(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(*session)
		return nil
	})
}

// subscribe holds a pooled connection in LISTEN mode until ctx is done or
// the returned func is called. LISTEN is issued before the initial snapshot
// so no change between the two is missed.
func (s *Store) subscribe(ctx context.Context, channel, sessionID string, deliver func(context.Context) error) (store.Unsubscribe, error) {
	conn, err := s.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, store.Wrap("Subscribe", sessionID, err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, store.Wrap("Subscribe", sessionID, err)
	}

	if err := deliver(ctx); err != nil {
		conn.Release()
		return nil, store.Wrap("Subscribe", sessionID, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					log.Printf("❌ Subscription on %s for session %s ended: %v", channel, sessionID, err)
				}
				return
			}
			if n.Payload != sessionID {
				continue
			}
			if err := deliver(subCtx); err != nil && subCtx.Err() == nil {
				log.Printf("⚠️ Failed to refresh %s snapshot for session %s: %v", channel, sessionID, err)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}
