// Package store defines the Session Store the controller, gate and
// submission channel depend on, plus an in-memory implementation.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shubh-37/idea-processor/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrCodeTaken = errors.New("access code already in use")
)

// Unsubscribe stops a subscription. Calling it twice is safe.
type Unsubscribe func()

// Store is the document store behind sessions, ideas, codes and reports.
//
// Subscriptions deliver an initial snapshot and then one full snapshot per
// change, in order, from a single goroutine per subscription.
type Store interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	EnsureSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id string, patch models.SessionPatch) error
	FindActiveSession(ctx context.Context) (*models.Session, error)

	AddIdea(ctx context.Context, sessionID string, idea models.Idea) (string, error)
	ListIdeas(ctx context.Context, sessionID string) ([]models.Idea, error)
	DeleteIdeas(ctx context.Context, sessionID string) error

	LookupCode(ctx context.Context, code string) (string, error)
	AssignCode(ctx context.Context, sessionID, code string) error

	SaveReport(ctx context.Context, report *models.Report) (string, error)
	ListReports(ctx context.Context, sessionID string) ([]models.Report, error)

	SubscribeIdeas(ctx context.Context, sessionID string, fn func([]models.Idea)) (Unsubscribe, error)
	SubscribeSession(ctx context.Context, sessionID string, fn func(models.Session)) (Unsubscribe, error)
}

// Error wraps a store failure with the operation that hit it.
type Error struct {
	Op        string
	SessionID string
	Err       error
}

func (e *Error) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("store %s (session %s): %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err, otherwise a *Error
func Wrap(op, sessionID string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, SessionID: sessionID, Err: err}
}
