// Package submission accepts participant ideas for an active session.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shubh-37/idea-processor/internal/models"
)

const (
	MaxNameLength    = 50
	MinContentLength = 5
	MaxContentLength = 500
)

var ErrSessionClosed = errors.New("session is not active")

// ValidationError reports a field that failed a length rule
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field, e.Param)
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

// Request is one submission attempt. DeviceID keys the cooldown; empty
// disables it for this call.
type Request struct {
	SessionID string
	DeviceID  string
	Name      string
	Content   string
	Timestamp int64
}

type input struct {
	Name    string `validate:"required,min=1,max=50"`
	Content string `validate:"required,min=5,max=500"`
}

// SessionStore is the part of the session store the channel uses
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	AddIdea(ctx context.Context, sessionID string, idea models.Idea) (string, error)
}

type Channel struct {
	store    SessionStore
	cooldown Cooldown
	validate *validator.Validate
	now      func() time.Time
}

// New creates a channel. cooldown may be nil.
func New(store SessionStore, cooldown Cooldown) *Channel {
	return &Channel{
		store:    store,
		cooldown: cooldown,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit validates and appends an idea. The session's active flag is read
// fresh on every call so a session stopped after the form opened rejects
// the write.
func (c *Channel) Submit(ctx context.Context, req Request) (string, error) {
	in := input{
		Name:    strings.TrimSpace(req.Name),
		Content: strings.TrimSpace(req.Content),
	}
	if err := c.validate.Struct(&in); err != nil {
		return "", toValidationError(err)
	}

	session, err := c.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if !session.IsActive {
		return "", ErrSessionClosed
	}

	cooldownKey := req.SessionID + ":" + req.DeviceID
	claimed := false
	if c.cooldown != nil && req.DeviceID != "" {
		remaining, err := c.cooldown.Claim(ctx, cooldownKey)
		if err != nil {
			// cooldown backend down: accept rather than block the event
			log.Printf("⚠️ Cooldown check failed for %s: %v", req.DeviceID, err)
		} else if remaining > 0 {
			return "", &CooldownError{Remaining: remaining}
		} else {
			claimed = true
		}
	}

	ts := req.Timestamp
	if ts == 0 {
		ts = c.now().UnixMilli()
	}

	id, err := c.store.AddIdea(ctx, req.SessionID, models.Idea{
		Name:      in.Name,
		Content:   in.Content,
		Timestamp: ts,
	})
	if err != nil {
		if claimed {
			// nothing was stored, so the device may retry right away
			if rerr := c.cooldown.Release(ctx, cooldownKey); rerr != nil {
				log.Printf("⚠️ Failed to release cooldown for %s: %v", req.DeviceID, rerr)
			}
		}
		return "", fmt.Errorf("failed to save idea: %w", err)
	}

	log.Printf("💡 Idea %s accepted for session %s", id, req.SessionID)
	return id, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field: strings.ToLower(fe.Field()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		}
	}
	return err
}
