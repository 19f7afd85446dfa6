// Package gate admits participants into a session by access code and
// throttles repeated failures for both participants and admins.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
)

// Outcome is the result kind of a code check
type Outcome string

const (
	Admitted      Outcome = "admitted"
	Rejected      Outcome = "rejected"
	SessionClosed Outcome = "session_closed"
	LockedOut     Outcome = "locked_out"
)

// Result of CheckCode. RetryAfter is set for LockedOut, and for the
// Rejected attempt that started a lockout.
type Result struct {
	Outcome    Outcome       `json:"outcome"`
	SessionID  string        `json:"sessionId,omitempty"`
	RetryAfter time.Duration `json:"-"`
}

func (r Result) RemainingSeconds() int {
	return RemainingSeconds(r.RetryAfter)
}

// SessionReader is the part of the session store the gate reads
type SessionReader interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	LookupCode(ctx context.Context, code string) (string, error)
}

type Gate struct {
	sessions SessionReader
	throttle *Throttle
}

func New(sessions SessionReader, throttle *Throttle) *Gate {
	return &Gate{sessions: sessions, throttle: throttle}
}

// CheckCode validates submittedCode for the caller identified by callerKey.
// With a sessionID the code is compared against that session; without one
// it is resolved through the code registry. Lockout is checked before the
// code is looked at.
func (g *Gate) CheckCode(ctx context.Context, callerKey, submittedCode, sessionID string) (Result, error) {
	remaining, err := g.throttle.Check(ctx, callerKey)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check lockout: %w", err)
	}
	if remaining > 0 {
		return Result{Outcome: LockedOut, RetryAfter: remaining}, nil
	}

	code := NormalizeCode(submittedCode)
	if len(code) < MinCodeLength {
		return Result{Outcome: Rejected}, nil
	}

	session, err := g.resolve(ctx, code, sessionID)
	if err != nil {
		return Result{}, err
	}

	if session == nil {
		res, err := g.throttle.Fail(ctx, callerKey)
		if err != nil {
			return Result{}, fmt.Errorf("failed to record attempt: %w", err)
		}
		if res.Outcome == Rejected && res.RetryAfter > 0 {
			log.Printf("🔒 Caller %s locked out for %s", callerKey, res.RetryAfter)
		}
		return res, nil
	}

	// a lockout started by attempts in flight still applies to this one
	locked, err := g.throttle.Succeed(ctx, callerKey)
	if err != nil {
		log.Printf("⚠️ Failed to reset attempts for %s: %v", callerKey, err)
	}
	if locked > 0 {
		return Result{Outcome: LockedOut, RetryAfter: locked}, nil
	}

	if !session.IsActive {
		return Result{Outcome: SessionClosed, SessionID: session.ID}, nil
	}
	return Result{Outcome: Admitted, SessionID: session.ID}, nil
}

// resolve returns the matching session or nil when the code does not match
func (g *Gate) resolve(ctx context.Context, code, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		id, err := g.sessions.LookupCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up code: %w", err)
		}
		sessionID = id
	}

	session, err := g.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !strings.EqualFold(code, NormalizeCode(session.AccessCode)) {
		return nil, nil
	}
	return session, nil
}
