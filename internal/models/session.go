package models

import "time"

// Phase is the admin-local lifecycle state of a session controller
type Phase string

const (
	PhaseMenu     Phase = "MENU"
	PhaseSetup    Phase = "SETUP"
	PhaseLive     Phase = "LIVE"
	PhaseClosing  Phase = "CLOSING"
	PhaseAnalysis Phase = "ANALYSIS"
	PhaseDetail   Phase = "DETAIL"
)

// Session is the persisted root document for one event
type Session struct {
	ID                   string    `json:"id"`
	IsActive             bool      `json:"isActive"`
	AccessCode           string    `json:"accessCode,omitempty"`
	Context              string    `json:"context"`
	DefaultContext       string    `json:"defaultContext,omitempty"`
	SelectedManualIdeaID string    `json:"selectedManualIdeaId,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewSession creates an inactive session document
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		UpdatedAt: time.Now(),
	}
}

// SessionPatch is a merge write: nil fields are left untouched.
// An empty SelectedManualIdeaID clears the selection.
type SessionPatch struct {
	IsActive             *bool   `json:"isActive,omitempty"`
	Context              *string `json:"context,omitempty"`
	DefaultContext       *string `json:"defaultContext,omitempty"`
	SelectedManualIdeaID *string `json:"selectedManualIdeaId,omitempty"`
}

// Apply merges the patch into s and bumps UpdatedAt
func (p SessionPatch) Apply(s *Session, now time.Time) {
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.Context != nil {
		s.Context = *p.Context
	}
	if p.DefaultContext != nil {
		s.DefaultContext = *p.DefaultContext
	}
	if p.SelectedManualIdeaID != nil {
		s.SelectedManualIdeaID = *p.SelectedManualIdeaID
	}
	s.UpdatedAt = now
}

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
